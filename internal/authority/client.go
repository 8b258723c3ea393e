// internal/authority/client.go
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jason-s-yu/blackjack/internal/middleware"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/sirupsen/logrus"
)

// Endpoint paths served by the authority.
const (
	PathNewGame   = "/api/game/new"
	PathHit       = "/api/game/hit"
	PathStand     = "/api/game/stand"
	PathSurrender = "/api/game/surrender"
	PathAdvise    = "/api/strategy/advise"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

var (
	// ErrConfigurationMissing is returned before any network attempt when no base URL is set.
	ErrConfigurationMissing = errors.New("authority base url is not configured")

	// ErrConnectivity covers every failed exchange: transport errors, non-2xx
	// statuses and bodies that cannot be decoded or fail validation.
	ErrConnectivity = errors.New("no response from the authority")
)

// Client talks to the remote blackjack authority over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger logs every request made by the client through logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.http.Transport = middleware.LogTransport(logger, c.http.Transport)
		}
	}
}

// NewClient builds a client for baseURL. An empty baseURL is allowed; every
// call then fails with ErrConfigurationMissing.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Configured returns ErrConfigurationMissing if the client has no base URL.
func (c *Client) Configured() error {
	if c.baseURL == "" {
		return ErrConfigurationMissing
	}
	return nil
}

// NewGame asks the authority to deal a new round for bet.
func (c *Client) NewGame(ctx context.Context, bet int) (*models.Round, error) {
	var round models.Round
	if err := c.post(ctx, PathNewGame, models.NewGameRequest{Bet: bet}, &round); err != nil {
		return nil, err
	}
	return validRound(PathNewGame, &round)
}

// Hit draws one more card for the player.
func (c *Client) Hit(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return c.roundAction(ctx, PathHit, req)
}

// Stand ends the player's turn; the authority plays the dealer out.
func (c *Client) Stand(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return c.roundAction(ctx, PathStand, req)
}

// Surrender forfeits the round for half the bet.
func (c *Client) Surrender(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return c.roundAction(ctx, PathSurrender, req)
}

// Advise returns the expected payout of each action for the round in req.
func (c *Client) Advise(ctx context.Context, req models.ActionRequest) (*models.Advice, error) {
	var advice models.Advice
	if err := c.post(ctx, PathAdvise, req, &advice); err != nil {
		return nil, err
	}
	return &advice, nil
}

func (c *Client) roundAction(ctx context.Context, path string, req models.ActionRequest) (*models.Round, error) {
	var round models.Round
	if err := c.post(ctx, path, req, &round); err != nil {
		return nil, err
	}
	return validRound(path, &round)
}

func validRound(path string, r *models.Round) (*models.Round, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s returned a malformed round: %v", ErrConnectivity, path, err)
	}
	return r, nil
}

// post sends body as JSON to path and decodes a 2xx response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.Configured(); err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", ErrConnectivity, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned http %d: %s", ErrConnectivity, path, resp.StatusCode, truncate(string(data), 200))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrConnectivity, path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
