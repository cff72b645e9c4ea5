package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned for calls issued after the connection closed.
var ErrConnClosed = errors.New("wsbridge: connection closed")

// CallError is a failure reported by the remote side of the bridge for a
// single call.
type CallError struct {
	Method  string
	Message string
}

// Error implements error.
func (e *CallError) Error() string {
	return fmt.Sprintf("wsbridge: %s: %s", e.Method, e.Message)
}

// call is the wire form of an outgoing bridge invocation.
type call struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// reply is the wire form of an incoming response.
type reply struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Conn multiplexes request/response bridge calls over one WebSocket
// connection. It is safe for concurrent use.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan reply
	nextID  uint64
	err     error

	closed    chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithConnLogger sets the connection logger.
func WithConnLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWriteTimeout bounds each frame write. Default 10s.
func WithWriteTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// Dial connects to a bridge endpoint and starts the read loop.
func Dial(ctx context.Context, url string, opts ...ConnOption) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsbridge: dial %s: %w", url, err)
	}
	return NewConn(ws, opts...), nil
}

// NewConn wraps an established WebSocket connection and starts the read
// loop. The Conn takes ownership of ws.
func NewConn(ws *websocket.Conn, opts ...ConnOption) *Conn {
	c := &Conn{
		ws:           ws,
		logger:       slog.Default(),
		pending:      make(map[uint64]chan reply),
		closed:       make(chan struct{}),
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

// Invoke performs one bridge call. result may be nil for calls without a
// return value; params are marshaled in order. Invoke returns when the
// response arrives, ctx is done, or the connection fails.
func (c *Conn) Invoke(ctx context.Context, method string, result any, params ...any) error {
	raw := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("wsbridge: %s: encode param %d: %w", method, i, err)
		}
		raw = append(raw, data)
	}

	ch := make(chan reply, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(call{ID: id, Method: method, Params: raw}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		if err == nil {
			err = ErrConnClosed
		}
		return err
	case resp := <-ch:
		if resp.Error != "" {
			return &CallError{Method: method, Message: resp.Error}
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("wsbridge: %s: decode result: %w", method, err)
		}
		return nil
	}
}

// Close closes the connection. Pending calls fail with ErrConnClosed.
func (c *Conn) Close() error {
	c.fail(ErrConnClosed)
	return c.ws.Close()
}

func (c *Conn) write(msg call) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("wsbridge: encode call: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.fail(fmt.Errorf("wsbridge: write: %w", err))
		return err
	}
	return nil
}

func (c *Conn) readLoop() {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("bridge read error", "error", err)
			}
			c.fail(fmt.Errorf("wsbridge: read: %w", err))
			return
		}

		var resp reply
		if err := json.Unmarshal(msg, &resp); err != nil {
			c.logger.Error("bridge frame decode error", "error", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		c.mu.Unlock()
		if !ok {
			c.logger.Warn("bridge response for unknown call", "id", resp.ID)
			continue
		}
		ch <- resp
	}
}

// fail records the terminal error and releases every waiter.
func (c *Conn) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}
