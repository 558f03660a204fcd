//go:build !linux

package topology

import (
	"fmt"

	"go.uber.org/zap"
)

// newChangeNotifier has no OS change-notification source on this
// platform; the observer falls back to poll-only operation.
func newChangeNotifier(logger *zap.Logger) (<-chan struct{}, func(), error) {
	return nil, nil, fmt.Errorf("display change notifications not supported on this platform")
}
