// Package ipcsdk talks to a locally running host client over its IPC socket.
// Commands are JSON frames correlated with their responses by nonce; the
// host announces readiness with a READY dispatch after the handshake.
package ipcsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/activity-session/sdk"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	rpcVersion = 1

	CmdAuthorize    = "AUTHORIZE"
	CmdAuthenticate = "AUTHENTICATE"
	CmdDispatch     = "DISPATCH"

	EvtReady = "READY"
	EvtError = "ERROR"
)

var ErrClosed = errors.New("ipc connection closed")

// CommandError is returned when the host answers a command with an ERROR event.
type CommandError struct {
	Cmd     string
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Cmd, e.Code, e.Message)
}

// CloseError is returned when the host closes the connection with a reason.
type CloseError struct {
	Code    int
	Message string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("host closed connection (%d): %s", e.Code, e.Message)
}

type Client struct {
	conn     io.ReadWriteCloser
	clientID string
	logger   zerolog.Logger

	writeLock sync.Mutex

	handshakeOnce sync.Once
	handshakeErr  error

	readyOnce sync.Once
	ready     chan struct{}

	lock    sync.Mutex
	pending map[string]chan Message
	done    chan struct{}
	doneErr error
}

var _ sdk.Client = (*Client)(nil)

// Option defines a function type to modify the Client instance.
type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New starts reading from conn. The handshake is sent on the first Ready call.
func New(conn io.ReadWriteCloser, clientID string, options ...Option) *Client {
	c := &Client{
		conn:     conn,
		clientID: clientID,
		logger:   log.Logger,
		ready:    make(chan struct{}),
		pending:  make(map[string]chan Message),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	go c.readLoop()
	return c
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Ready(ctx context.Context) error {
	c.handshakeOnce.Do(func() {
		c.handshakeErr = c.write(OpHandshake, handshake{Version: rpcVersion, ClientID: c.clientID})
	})
	if c.handshakeErr != nil {
		return errors.Wrap(c.handshakeErr, "Ready handshake")
	}

	select {
	case <-c.ready:
		return nil
	case <-c.done:
		return c.doneErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Authorize(ctx context.Context, req sdk.AuthorizeRequest) (sdk.AuthorizeResponse, error) {
	var resp sdk.AuthorizeResponse
	if err := c.command(ctx, CmdAuthorize, req, &resp); err != nil {
		return sdk.AuthorizeResponse{}, err
	}
	return resp, nil
}

// Authenticate returns a nil Session when the host responds with null data.
func (c *Client) Authenticate(ctx context.Context, req sdk.AuthenticateRequest) (*sdk.Session, error) {
	var session *sdk.Session
	if err := c.command(ctx, CmdAuthenticate, req, &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Client) command(ctx context.Context, cmd string, args any, out any) error {
	nonce := uuid.NewString()
	respCh := make(chan Message, 1)

	c.lock.Lock()
	select {
	case <-c.done:
		c.lock.Unlock()
		return c.doneErr
	default:
	}
	c.pending[nonce] = respCh
	c.lock.Unlock()

	defer func() {
		c.lock.Lock()
		delete(c.pending, nonce)
		c.lock.Unlock()
	}()

	if err := c.write(OpFrame, Message{Cmd: cmd, Nonce: nonce, Args: args}); err != nil {
		return errors.Wrapf(err, "%s write", cmd)
	}

	select {
	case msg := <-respCh:
		if msg.Evt == EvtError {
			var payload closePayload
			_ = json.Unmarshal(msg.Data, &payload)
			return &CommandError{Cmd: cmd, Code: payload.Code, Message: payload.Message}
		}
		if len(msg.Data) == 0 {
			return nil
		}
		return errors.Wrapf(json.Unmarshal(msg.Data, out), "%s decode", cmd)
	case <-c.done:
		return c.doneErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) write(op Opcode, payload any) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return WriteFrame(c.conn, op, payload)
}

func (c *Client) readLoop() {
	for {
		op, payload, err := ReadFrame(c.conn)
		if err != nil {
			c.shutdown(errors.Wrap(ErrClosed, err.Error()))
			return
		}

		switch op {
		case OpFrame:
			c.dispatch(payload)
		case OpPing:
			var echo json.RawMessage
			if len(payload) > 0 {
				echo = payload
			}
			if err := c.write(OpPong, echo); err != nil {
				c.logger.Warn().Err(err).Msg("ipc pong failed")
			}
		case OpClose:
			var reason closePayload
			_ = json.Unmarshal(payload, &reason)
			c.shutdown(&CloseError{Code: reason.Code, Message: reason.Message})
			return
		default:
			c.logger.Debug().Uint32("op", uint32(op)).Msg("ignoring ipc frame")
		}
	}
}

func (c *Client) dispatch(payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("ipc frame is not valid json")
		return
	}

	if msg.Cmd == CmdDispatch && msg.Evt == EvtReady {
		c.readyOnce.Do(func() { close(c.ready) })
		return
	}

	if msg.Nonce == "" {
		c.logger.Debug().Str("cmd", msg.Cmd).Str("evt", msg.Evt).Msg("unsolicited ipc event")
		return
	}

	c.lock.Lock()
	respCh, ok := c.pending[msg.Nonce]
	c.lock.Unlock()
	if !ok {
		c.logger.Debug().Str("cmd", msg.Cmd).Msg("ipc response for unknown nonce")
		return
	}
	select {
	case respCh <- msg:
	default:
		c.logger.Debug().Str("cmd", msg.Cmd).Msg("duplicate ipc response dropped")
	}
}

func (c *Client) shutdown(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	c.doneErr = err
	close(c.done)
}
