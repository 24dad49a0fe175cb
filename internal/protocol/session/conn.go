package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/danmuck/mcwire/internal/logs"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/schema"
	"github.com/danmuck/mcwire/internal/protocol/varint"
)

// ErrClosed is returned by every operation after Shutdown.
var ErrClosed = fmt.Errorf("session: connection shut down: %w", net.ErrClosed)

// Observer receives per-frame accounting from a Conn. Implementations must
// be safe for use by many connections at once.
type Observer interface {
	FrameSent(id int32, compressed bool, frameLen int)
	FrameReceived(id int32, innerLen int)
	FrameFailed(err error)
}

// Conn is one duplex packet stream.
type Conn struct {
	Host string

	cfg       Config
	conn      net.Conn
	r         *bufio.Reader
	w         *bufio.Writer
	threshold atomic.Int32
	closed    atomic.Bool
	scratch   []byte
}

// Connect opens a TCP connection to addr with no connect timeout.
func Connect(addr string) (*Conn, error) {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = 0
	return Dial(context.Background(), addr, cfg)
}

// ConnectTimeout is Connect bounded by timeout.
func ConnectTimeout(addr string, timeout time.Duration) (*Conn, error) {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = timeout
	return Dial(context.Background(), addr, cfg)
}

// Dial opens a TCP connection to addr using cfg.
func Dial(ctx context.Context, addr string, cfg Config) (*Conn, error) {
	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: connect %s: %w", addr, err)
	}
	c := NewConn(nc, cfg)
	c.Host = addr
	logs.Debugf("session.Dial connected host=%s local=%s", addr, nc.LocalAddr())
	return c, nil
}

// NewConn wraps an established stream. Compression starts disabled.
func NewConn(nc net.Conn, cfg Config) *Conn {
	cfg = cfg.normalized()
	c := &Conn{
		cfg:  cfg,
		conn: nc,
		r:    bufio.NewReaderSize(nc, cfg.ReadBufferSize),
		w:    bufio.NewWriterSize(nc, cfg.WriteBufferSize),
	}
	if addr := nc.RemoteAddr(); addr != nil {
		c.Host = addr.String()
	}
	c.threshold.Store(frame.Disabled)
	return c
}

// Threshold returns the current compression threshold; negative means
// compression is off.
func (c *Conn) Threshold() int32 { return c.threshold.Load() }

// SetThreshold changes the threshold used by the next pack and unpack.
func (c *Conn) SetThreshold(threshold int32) {
	prev := c.threshold.Swap(threshold)
	logs.Debugf("session.SetThreshold host=%s %d -> %d", c.Host, prev, threshold)
}

// LocalAddr reports the local end of the stream.
func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// SendPacket encodes p and writes it as one flushed frame.
func (c *Conn) SendPacket(p schema.Packet) error {
	if c.closed.Load() {
		return ErrClosed
	}
	m, err := p.Encode()
	if err != nil {
		c.failed(err)
		return err
	}
	return c.WriteMessage(m)
}

// WriteMessage frames m under the current threshold and flushes it.
func (c *Conn) WriteMessage(m frame.Message) error {
	if c.closed.Load() {
		return ErrClosed
	}
	threshold := c.threshold.Load()
	b, err := m.Append(c.scratch[:0], threshold)
	if err != nil {
		c.failed(err)
		return err
	}
	c.scratch = b[:0]
	if c.cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return c.ioErr(err)
		}
	}
	if _, err := c.w.Write(b); err != nil {
		return c.ioErr(err)
	}
	if err := c.w.Flush(); err != nil {
		return c.ioErr(err)
	}
	compressed := m.Compressed(threshold)
	logs.Debugf("session.WriteMessage host=%s id=0x%02x frame=%d compressed=%t", c.Host, m.ID, len(b), compressed)
	if c.cfg.Observer != nil {
		c.cfg.Observer.FrameSent(m.ID, compressed, len(b))
	}
	return nil
}

// ReadMessage blocks for the next frame and unpacks it under the current
// threshold.
func (c *Conn) ReadMessage() (frame.Message, error) {
	if c.closed.Load() {
		return frame.Message{}, ErrClosed
	}
	if c.cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return frame.Message{}, c.ioErr(err)
		}
	}
	m, err := frame.ReadMessage(c.r, c.threshold.Load())
	if err != nil {
		if err != io.EOF {
			c.failed(err)
		}
		return frame.Message{}, c.ioErr(err)
	}
	logs.Debugf("session.ReadMessage host=%s id=0x%02x payload=%d", c.Host, m.ID, len(m.Payload))
	if c.cfg.Observer != nil {
		c.cfg.Observer.FrameReceived(m.ID, varint.Len(m.ID)+len(m.Payload))
	}
	return m, nil
}

// ReadPacket reads the next frame and decodes it with cat.
func (c *Conn) ReadPacket(cat *schema.Catalog) (schema.Packet, error) {
	m, err := c.ReadMessage()
	if err != nil {
		return nil, err
	}
	p, err := cat.Decode(m)
	if err != nil {
		c.failed(err)
		return nil, err
	}
	return p, nil
}

// Shutdown closes both directions. Every later call returns ErrClosed.
func (c *Conn) Shutdown() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	logs.Debugf("session.Shutdown host=%s", c.Host)
	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// ioErr reports a failure caused by a concurrent Shutdown as ErrClosed.
func (c *Conn) ioErr(err error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return err
}

func (c *Conn) failed(err error) {
	if c.cfg.Observer != nil && !c.closed.Load() {
		c.cfg.Observer.FrameFailed(err)
	}
}
