package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	charmLog "github.com/charmbracelet/log"
)

// Conn frames envelopes as newline-delimited JSON over a stream transport.
// Sends are serialized; frames are delivered to the listener in arrival
// order. Malformed frames are logged and skipped, never fatal.
type Conn struct {
	mu      sync.Mutex
	enc     *json.Encoder
	scanner *bufio.Scanner
	closer  io.Closer
	logger  *charmLog.Logger
}

// maxFrameSize bounds one frame; large tables arrive in appendRows pages
// but a whole-document saveCsv payload can still be sizeable.
const maxFrameSize = 16 << 20

// NewConn constructs a new value for this package. When rw also implements
// io.Closer, Close tears the transport down.
func NewConn(rw io.ReadWriter, logger *charmLog.Logger) *Conn {
	if logger == nil {
		logger = charmLog.Default()
	}
	scanner := bufio.NewScanner(rw)
	scanner.Buffer(make([]byte, 64<<10), maxFrameSize)
	closer, _ := rw.(io.Closer)
	return &Conn{
		enc:     json.NewEncoder(rw),
		scanner: scanner,
		closer:  closer,
		logger:  logger,
	}
}

// Send writes one envelope frame.
func (c *Conn) Send(env Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enc.Encode(env); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// Listen reads frames until EOF or context cancellation, handing each
// valid envelope to handle in arrival order. It returns nil on a clean
// EOF.
func (c *Conn) Listen(ctx context.Context, handle func(Envelope)) error {
	for c.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			c.logger.Warn("skipping malformed frame", "err", err)
			continue
		}
		if err := env.Validate(); err != nil {
			c.logger.Warn("skipping invalid frame", "command", env.Command, "err", err)
			continue
		}
		handle(env)
	}
	if err := c.scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("read frames: %w", err)
	}
	return nil
}

// Close tears down the underlying transport when it supports closing.
func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Client is the controller-side sender for the outbound half of the
// protocol.
type Client struct {
	conn *Conn
}

// NewClient constructs a new value for this package.
func NewClient(conn *Conn) *Client {
	return &Client{conn: conn}
}

// Ready announces the view is wired up and ready for table content.
func (c *Client) Ready() error {
	return c.conn.Send(NewEnvelope(CommandWebviewReady))
}

// RequestSave asks the host to persist serialized grid content.
func (c *Client) RequestSave(csvText string) error {
	env := NewEnvelope(CommandSaveCSV)
	env.Text = csvText
	return c.conn.Send(env)
}

// RequestToggleView asks the host to switch between table and raw views.
func (c *Client) RequestToggleView(isTableView bool) error {
	env := NewEnvelope(CommandToggleView)
	env.IsTableView = isTableView
	return c.conn.Send(env)
}
