package sdkfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/activity-session/sdk"
)

var _ sdk.Client = (*FakeSDK)(nil)

// FakeSDK records every command it receives and answers with the configured
// results. Zero values answer successfully with empty data.
type FakeSDK struct {
	lock sync.Mutex

	ReadyErr        error
	ReadyBlock      chan struct{}
	AuthorizeResp   sdk.AuthorizeResponse
	AuthorizeErr    error
	Session         *sdk.Session
	AuthenticateErr error

	ReadyCalls        int
	AuthorizeCalls    []sdk.AuthorizeRequest
	AuthenticateCalls []sdk.AuthenticateRequest
}

func NewFakeSDK() *FakeSDK {
	return &FakeSDK{
		AuthorizeResp: sdk.AuthorizeResponse{Code: "fake-code"},
	}
}

func (f *FakeSDK) Ready(ctx context.Context) error {
	f.lock.Lock()
	f.ReadyCalls++
	block := f.ReadyBlock
	err := f.ReadyErr
	f.lock.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *FakeSDK) Authorize(_ context.Context, req sdk.AuthorizeRequest) (sdk.AuthorizeResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.AuthorizeCalls = append(f.AuthorizeCalls, req)
	if f.AuthorizeErr != nil {
		return sdk.AuthorizeResponse{}, f.AuthorizeErr
	}
	return f.AuthorizeResp, nil
}

func (f *FakeSDK) Authenticate(_ context.Context, req sdk.AuthenticateRequest) (*sdk.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.AuthenticateCalls = append(f.AuthenticateCalls, req)
	if f.AuthenticateErr != nil {
		return nil, f.AuthenticateErr
	}
	return f.Session, nil
}

// Counts returns the number of ready, authorize and authenticate calls.
func (f *FakeSDK) Counts() (ready, authorize, authenticate int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.ReadyCalls, len(f.AuthorizeCalls), len(f.AuthenticateCalls)
}
