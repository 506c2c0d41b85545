// Package gateway delivers completed rental requests to the remote rental
// requests API.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-rentalform/pkg/model"
)

const (
	// DefaultBaseURL is the hosted rental requests API.
	DefaultBaseURL = "https://samedayramps-016e8e090b17.herokuapp.com"
	// DefaultTimeout bounds a single submission.
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "go-rentalform"
	maxResponseBytes = 1 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithPath overrides the endpoint path.
func WithPath(path string) Option {
	return func(c *Client) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.path = path
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each submission. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(agent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithContract validates outgoing bodies against contract before sending.
// Passing nil selects the embedded contract.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		c.validate = true
		c.contract = contract
	}
}

// Client posts rental requests to the API.
type Client struct {
	baseURL   string
	path      string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	validate  bool
	contract  *Contract
}

// New builds a Client. It fails only when contract validation was requested
// and the embedded contract cannot be loaded.
func New(options ...Option) (*Client, error) {
	c := &Client{
		baseURL:   DefaultBaseURL,
		path:      DefaultPath,
		http:      http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.validate && c.contract == nil {
		contract, err := DefaultContract()
		if err != nil {
			return nil, err
		}
		c.contract = contract
	}
	return c, nil
}

// Endpoint is the full URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.baseURL + c.path
}

// Submit posts state and returns the confirmation. Errors are one of
// *NetworkError, *TimeoutError, *ServerError or *ContractError.
func (c *Client) Submit(ctx context.Context, state model.FormState) (model.Confirmation, error) {
	body, err := json.Marshal(NewRentalRequest(state))
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("gateway: encode request: %w", err)
	}
	if c.validate {
		if err := c.contract.ValidateRequest(body); err != nil {
			return model.Confirmation{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Confirmation{}, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Confirmation{}, c.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody ErrorBody
		if len(bytes.TrimSpace(payload)) > 0 {
			_ = json.Unmarshal(payload, &errBody)
		}
		return model.Confirmation{}, newServerError(resp.StatusCode, errBody)
	}

	return decodeConfirmation(resp.StatusCode, payload)
}

func decodeConfirmation(status int, payload []byte) (model.Confirmation, error) {
	var created Created
	if err := json.Unmarshal(payload, &created); err != nil {
		return model.Confirmation{}, &ServerError{Status: status, Err: fmt.Errorf("%w: %v", ErrInvalidConfirmation, err)}
	}
	id := strings.TrimSpace(created.ID)
	if id == "" || strings.TrimSpace(created.CreatedAt) == "" {
		return model.Confirmation{}, &ServerError{Status: status, Err: ErrInvalidConfirmation}
	}
	createdAt, err := time.Parse(time.RFC3339, created.CreatedAt)
	if err != nil {
		return model.Confirmation{}, &ServerError{Status: status, Err: fmt.Errorf("%w: createdAt: %v", ErrInvalidConfirmation, err)}
	}
	return model.Confirmation{
		ID:         id,
		CreatedAt:  createdAt,
		Message:    created.Message,
		CustomerID: created.CustomerID,
		JobID:      created.JobID,
	}, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{After: c.timeout, Err: err}
	}
	return &NetworkError{Err: err}
}
