// Package websocket wraps a gorilla connection behind a single-writer
// goroutine so every other part of the server can send frames concurrently
// without holding the socket.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Options tunes a connection wrapper. Zero values fall back to the defaults
// below.
type Options struct {
	WriteTimeout time.Duration
	BufferSize   int
}

const (
	defaultWriteTimeout = 10 * time.Second
	defaultBufferSize   = 100
)

// Connection serializes all writes to one websocket through a buffered
// channel and a single writer goroutine. Two send paths exist: Send blocks
// (bounded by the write timeout) and is used for direct replies, TrySend
// never blocks and is used for room broadcasts.
type Connection struct {
	conn         *websocket.Conn
	writeCh      chan []byte
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// NewConnection wraps conn and starts its writer goroutine.
func NewConnection(conn *websocket.Conn, opts Options) *Connection {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		writeCh:      make(chan []byte, opts.BufferSize),
		writeTimeout: opts.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()
	return c
}

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.teardown()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Str("module", "websocket").Err(err).Msg("write failed, closing connection")
				c.teardown()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// teardown cancels from inside the writer so readers unblock too.
func (c *Connection) teardown() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

// Send marshals v and queues it for writing, blocking up to the write
// timeout when the buffer is full.
func (c *Connection) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	timer := time.NewTimer(c.writeTimeout)
	defer timer.Stop()

	select {
	case c.writeCh <- data:
		return nil
	case <-timer.C:
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// TrySend queues v without blocking. It reports false when the buffer is
// full or the connection is closed; the frame is dropped in either case.
func (c *Connection) TrySend(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}

	select {
	case c.writeCh <- data:
		return true
	case <-c.ctx.Done():
		return false
	default:
		return false
	}
}

// ReadMessage blocks for the next text frame from the client.
func (c *Connection) ReadMessage() ([]byte, error) {
	select {
	case <-c.ctx.Done():
		return nil, ErrConnectionClosed
	default:
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetReadDeadline forwards to the underlying socket. The session's ping
// loop pushes the deadline on every pong.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetPongHandler forwards to the underlying socket.
func (c *Connection) SetPongHandler(h func(string) error) {
	c.conn.SetPongHandler(h)
}

// Ping queues a ping control frame directly; control frames bypass the
// writer channel but gorilla serializes them against data writes.
func (c *Connection) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// Done is closed when the connection is shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close shuts the connection down. Safe to call more than once.
func (c *Connection) Close() error {
	c.teardown()
	return nil
}
