// Package session owns the session setup state machine: wait for the host
// SDK, optionally run the credential exchange, and publish the outcome to
// observers. A Controller runs its setup at most once.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/activity-session/exchange"
	"github.com/jrsteele09/activity-session/internal/errors"
	"github.com/jrsteele09/activity-session/internal/metrics"
	"github.com/jrsteele09/activity-session/sdk"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// errSetupPanicked stands in for a panic value that is not an error.
var errSetupPanicked = stderrors.New("session setup panicked")

type Controller struct {
	client    sdk.Client
	exchanger *exchange.Exchanger
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	nowTime   func() time.Time

	// activated is set before the first suspend point and never reset.
	activated atomic.Bool

	lock        sync.RWMutex
	status      Status
	accessToken string
	session     *sdk.Session
	errMessage  string

	listenersLock sync.Mutex
	listeners     []registeredListener
	nextListener  int
}

type registeredListener struct {
	id int
	fn Listener
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// NewController returns a controller in the pending state. client is the
// host backend chosen by the embedding application; tokens performs the
// code-for-token exchange.
func NewController(client sdk.Client, tokens exchange.TokenExchanger, clientID string, options ...ControllerOption) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("[NewController] sdk client is required")
	}

	// The exchange waits for readiness again; share the controller's wait.
	client = sdk.ReadyOnce(client)
	exchanger, err := exchange.New(client, tokens, clientID)
	if err != nil {
		return nil, errors.Wrapf(err, "[NewController] exchange")
	}

	c := &Controller{
		client:    client,
		exchanger: exchanger,
		logger:    log.Logger,
		nowTime:   time.Now,
		status:    StatusPending,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Activate runs the setup sequence and returns the resulting snapshot. Only
// the first call on a controller does any work; later calls, concurrent or
// not, return the current snapshot immediately. Activate never fails: every
// error ends in StatusError with a message.
func (c *Controller) Activate(ctx context.Context, options Options) Snapshot {
	if !c.activated.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("session setup already activated")
		return c.Snapshot()
	}

	started := c.nowTime()
	if err := c.setup(ctx, options); err != nil {
		message := errors.Message(err, UnknownErrorMessage)
		if errors.Is(err, errSetupPanicked) {
			message = UnknownErrorMessage
		}
		c.logger.Error().Err(err).Bool("authenticate", options.Authenticate).Msg("session setup failed")
		c.update(func() {
			c.errMessage = message
			c.status = StatusError
		})
	}

	snapshot := c.Snapshot()
	c.metrics.RecordActivation(options.Authenticate, string(snapshot.Status), c.nowTime().Sub(started))
	return snapshot
}

func (c *Controller) setup(ctx context.Context, options Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("session setup panicked")
			if perr, ok := r.(error); ok {
				err = perr
				return
			}
			err = errSetupPanicked
		}
	}()

	c.setStatus(StatusLoading)
	if err := c.client.Ready(ctx); err != nil {
		return err
	}

	if !options.Authenticate {
		c.setStatus(StatusReady)
		return nil
	}

	c.setStatus(StatusAuthenticating)
	result, err := c.exchanger.Run(ctx, options.Scope)
	if err != nil {
		return err
	}

	c.update(func() {
		c.accessToken = result.AccessToken
		c.session = result.Session.Clone()
		c.status = StatusReady
	})
	c.logger.Info().Str("user_id", result.Session.User.ID).Msg("session authenticated")
	return nil
}

func (c *Controller) setStatus(status Status) {
	c.update(func() { c.status = status })
}

// update applies fn under the state lock, then publishes the new snapshot
// to listeners outside it.
func (c *Controller) update(fn func()) {
	c.lock.Lock()
	fn()
	snapshot := c.snapshotLocked()
	c.lock.Unlock()

	c.logger.Debug().Str("status", string(snapshot.Status)).Msg("session status changed")
	c.publish(snapshot)
}

// Snapshot returns a copy of the current state. It has no side effects.
func (c *Controller) Snapshot() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		AccessToken:   c.accessToken,
		Authenticated: c.accessToken != "",
		Session:       c.session.Clone(),
		Error:         c.errMessage,
		Status:        c.status,
	}
}

// Subscribe registers fn to receive a snapshot after every status change,
// in registration order. The returned function removes it.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	c.listenersLock.Lock()
	defer c.listenersLock.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, registeredListener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersLock.Lock()
			defer c.listenersLock.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) publish(snapshot Snapshot) {
	c.listenersLock.Lock()
	listeners := make([]Listener, len(c.listeners))
	for i, l := range c.listeners {
		listeners[i] = l.fn
	}
	c.listenersLock.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
