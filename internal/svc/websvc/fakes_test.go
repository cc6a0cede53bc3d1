package websvc_test

import (
	"context"
	"sync"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/svc/websvc"
)

type setCookieCall struct {
	Value string
	Opts  websvc.CookieOptions
}

type fakeCookies struct {
	mu         sync.Mutex
	set        map[string]setCookieCall
	destroyed  []string
	setErr     error
	destroyErr error
}

func newFakeCookies() *fakeCookies {
	return &fakeCookies{set: make(map[string]setCookieCall)}
}

func (c *fakeCookies) SetCookie(name, value string, opts websvc.CookieOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.setErr != nil {
		return c.setErr
	}

	c.set[name] = setCookieCall{Value: value, Opts: opts}

	return nil
}

func (c *fakeCookies) DestroyCookie(name string, _ websvc.CookieOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyErr != nil {
		return c.destroyErr
	}

	c.destroyed = append(c.destroyed, name)
	delete(c.set, name)

	return nil
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (n *fakeNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}

	n.paths = append(n.paths, path)

	return nil
}

func (n *fakeNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.paths...)
}

type fakeAuthClient struct {
	mu    sync.Mutex
	resp  domain.LoginResponse
	err   error
	calls []domain.Credentials
}

func (a *fakeAuthClient) Login(_ context.Context, creds domain.Credentials) (domain.LoginResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, creds)

	if a.err != nil {
		return domain.LoginResponse{}, a.err
	}

	return a.resp, nil
}

func (a *fakeAuthClient) Profile(context.Context) (domain.User, error) {
	return domain.User{}, domain.ErrUserNotFound
}
