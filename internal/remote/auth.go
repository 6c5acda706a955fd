package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinver/appcore/internal/auth"
	"github.com/dinver/appcore/internal/config"
	"github.com/dinver/appcore/internal/serviceerr"
)

// AuthClient talks to the backend auth endpoints.
type AuthClient struct {
	base       *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
}

var _ = auth.Client(&AuthClient{})

func NewAuthClient(api config.API, httpClient *http.Client) (*AuthClient, error) {
	base, err := url.Parse(api.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: api.Timeout}
	}

	return &AuthClient{
		base:       base,
		httpClient: httpClient,
		tracer:     otel.Tracer("appcore/remote"),
	}, nil
}

// sessionResponse is the shape both the login and federated exchange
// endpoints return.
type sessionResponse struct {
	User  auth.Identity `json:"user"`
	Token string        `json:"token"`
}

func (r sessionResponse) session() auth.Session {
	return auth.Session{Identity: r.User, Token: r.Token}
}

func (c *AuthClient) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	resp, err := c.post(ctx, "auth.Login", "login", creds)
	if err != nil {
		return auth.Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Session{}, fmt.Errorf("logging in: %w", statusErr(resp.StatusCode))
	}

	var payload sessionResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return auth.Session{}, err
	}

	return payload.session(), nil
}

func (c *AuthClient) Register(ctx context.Context, reg auth.Registration) error {
	resp, err := c.post(ctx, "auth.Register", "register", reg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("registering: %w", statusErr(resp.StatusCode))
	}

	return nil
}

func (c *AuthClient) ExchangeFederatedToken(ctx context.Context, idToken string) (auth.Session, error) {
	body := struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken}

	resp, err := c.post(ctx, "auth.ExchangeFederatedToken", "google", body)
	if err != nil {
		return auth.Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Session{}, fmt.Errorf("exchanging federated token: %w", statusErr(resp.StatusCode))
	}

	var payload sessionResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return auth.Session{}, err
	}

	return payload.session(), nil
}

func (c *AuthClient) post(ctx context.Context, spanName, endpoint string, body any) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, spanName)
	defer span.End()

	u := c.base.JoinPath("auth", endpoint)
	req, err := newRequest(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(serviceerr.ErrNetwork, err)
	}

	return resp, nil
}
