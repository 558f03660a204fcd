//go:build !windows

package surface

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// ipcClient speaks mpv's JSON IPC protocol over a unix socket.
// Commands are serialized; mpv answers each request line with a JSON
// object carrying an "error" field ("success" on success).
type ipcClient struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

type ipcRequest struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Error string `json:"error"`
	Event string `json:"event"`
}

// dialIPC connects to the mpv socket, retrying until the player has
// created it or the context expires.
func dialIPC(ctx context.Context, socketPath string) (*ipcClient, error) {
	var lastErr error
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			return &ipcClient{conn: conn, reader: bufio.NewReader(conn)}, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mpv socket not ready: %w", lastErr)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// command sends one request and waits for its (non-event) reply.
func (c *ipcClient) command(ctx context.Context, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	} else {
		_ = c.conn.SetDeadline(time.Now().Add(5 * time.Second))
	}

	payload, err := json.Marshal(ipcRequest{Command: args})
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("ipc write failed: %w", err)
	}

	// mpv interleaves asynchronous events with replies on the same
	// stream; skip events until the reply arrives
	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return fmt.Errorf("ipc read failed: %w", err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" {
			continue
		}
		if resp.Error != "success" {
			return fmt.Errorf("mpv refused command: %s", resp.Error)
		}
		return nil
	}
}

func (c *ipcClient) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
