//go:build linux

package topology

import (
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// newChangeNotifier subscribes to the session bus MonitorsChanged
// signal from the display server so topology changes are picked up
// immediately instead of on the next poll. The returned close function
// tears down the subscription.
func newChangeNotifier(logger *zap.Logger) (<-chan struct{}, func(), error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, nil, err
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.gnome.Mutter.DisplayConfig"),
		dbus.WithMatchMember("MonitorsChanged"),
	); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	signals := make(chan *dbus.Signal, 10)
	conn.Signal(signals)

	nudge := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(nudge)
		for {
			select {
			case <-done:
				return
			case sig := <-signals:
				if sig == nil {
					continue
				}
				logger.Debug("Display change signal received",
					zap.String("signal", sig.Name))
				select {
				case nudge <- struct{}{}:
				default:
					// A re-check is already pending
				}
			}
		}
	}()

	closeFn := func() {
		close(done)
		_ = conn.Close()
	}

	logger.Info("Display change notifications enabled")
	return nudge, closeFn, nil
}
