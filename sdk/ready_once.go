package sdk

import (
	"context"
	"errors"
	"sync"
)

// ErrReadyAborted is shared with waiting callers when the forwarded Ready
// call panics.
var ErrReadyAborted = errors.New("sdk readiness wait aborted")

// ReadyOnce wraps c so that Ready is forwarded to it at most once. The first
// caller makes the call with its own context; later callers wait for it and
// observe the same result, or return early when their own context ends.
func ReadyOnce(c Client) Client {
	if r, ok := c.(*readyOnceClient); ok {
		return r
	}
	return &readyOnceClient{Client: c, done: make(chan struct{})}
}

type readyOnceClient struct {
	Client

	lock    sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

func (r *readyOnceClient) Ready(ctx context.Context) error {
	r.lock.Lock()
	if r.started {
		r.lock.Unlock()
		select {
		case <-r.done:
			return r.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.started = true
	r.lock.Unlock()

	r.err = ErrReadyAborted
	defer close(r.done)
	r.err = r.Client.Ready(ctx)
	return r.err
}
