package authmock

import (
	"context"
	"sync"

	"github.com/dinver/appcore/internal/auth"
)

type ClientOption func(*Client)

// Client is an in-memory auth client. Unless an error is injected, Login and
// ExchangeFederatedToken return the configured session.
type Client struct {
	mu      sync.Mutex
	session auth.Session

	loginErr    error
	registerErr error
	exchangeErr error

	loginCalls    int
	registerCalls int
	exchangeCalls int
}

func WithSession(sess auth.Session) ClientOption {
	return func(c *Client) { c.session = sess }
}

func WithLoginError(err error) ClientOption {
	return func(c *Client) { c.loginErr = err }
}

func WithRegisterError(err error) ClientOption {
	return func(c *Client) { c.registerErr = err }
}

func WithExchangeError(err error) ClientOption {
	return func(c *Client) { c.exchangeErr = err }
}

var _ = auth.Client(&Client{})

func NewClient(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Login(_ context.Context, _ auth.Credentials) (auth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loginCalls++
	if c.loginErr != nil {
		return auth.Session{}, c.loginErr
	}
	return c.session, nil
}

func (c *Client) Register(_ context.Context, _ auth.Registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registerCalls++
	return c.registerErr
}

func (c *Client) ExchangeFederatedToken(_ context.Context, _ string) (auth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchangeCalls++
	if c.exchangeErr != nil {
		return auth.Session{}, c.exchangeErr
	}
	return c.session, nil
}

func (c *Client) LoginCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCalls
}

func (c *Client) RegisterCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerCalls
}

func (c *Client) ExchangeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchangeCalls
}
