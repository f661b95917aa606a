package ws

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/glasspane/dashboard/internal/bridge"
	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
	"github.com/glasspane/dashboard/internal/platform"
)

// Message is the wire envelope for both directions. ID correlates the
// single request/reply exchange; Payload is the type-specific body.
type Message struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// hostConn binds one WebSocket connection to the bridge adapter
// contract. Writes are serialized; gorilla connections do not allow
// concurrent writers.
type hostConn struct {
	conn     *websocket.Conn
	platform platform.Platform
	replies  *bridge.ReplyTracker
	metrics  *monitoring.Metrics

	writeMu sync.Mutex
}

func newHostConn(conn *websocket.Conn, p platform.Platform, metrics *monitoring.Metrics) *hostConn {
	return &hostConn{
		conn:     conn,
		platform: p,
		replies:  bridge.NewReplyTracker(),
		metrics:  metrics,
	}
}

// Platform implements bridge.Adapter.
func (c *hostConn) Platform() platform.Platform {
	return c.platform
}

// SendIntent implements intent.Outbound.
func (c *hostConn) SendIntent(ctx context.Context, it intent.Intent) error {
	err := c.write(Message{Type: "intent", Payload: it})
	if c.metrics != nil {
		c.metrics.RecordIntent(string(it.Kind), err)
	}
	return err
}

// RequestToggleReportOptions implements intent.Outbound. The wait is
// bounded only by ctx; the host contract guarantees at most one reply,
// not that a reply arrives.
func (c *hostConn) RequestToggleReportOptions(ctx context.Context) (*intent.ToggleReportOptions, error) {
	id, ch := c.replies.Register()
	if err := c.write(Message{Type: "getToggleReportOptions", ID: id}); err != nil {
		c.replies.Cancel(id)
		return nil, err
	}

	select {
	case opts := <-ch:
		return opts, nil
	case <-ctx.Done():
		c.replies.Cancel(id)
		return nil, ctx.Err()
	}
}

func (c *hostConn) write(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", msg.Type)
	}
	return c.conn.WriteJSON(msg)
}
