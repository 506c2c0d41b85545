package address

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultPlacesBaseURL is the Places web service root.
	DefaultPlacesBaseURL = "https://maps.googleapis.com/maps/api"
	autocompletePath     = "/place/autocomplete/json"
	defaultPlacesTimeout = 5 * time.Second
)

// PlacesOption configures a PlacesResolver.
type PlacesOption func(*PlacesResolver)

// WithPlacesBaseURL overrides the API root, mainly for tests.
func WithPlacesBaseURL(base string) PlacesOption {
	return func(r *PlacesResolver) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			r.baseURL = trimmed
		}
	}
}

// WithPlacesHTTPClient sets the HTTP client.
func WithPlacesHTTPClient(client *http.Client) PlacesOption {
	return func(r *PlacesResolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithPlacesTimeout bounds each lookup.
func WithPlacesTimeout(timeout time.Duration) PlacesOption {
	return func(r *PlacesResolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithDefaultCountry sets the restriction used when a query has none.
func WithDefaultCountry(country string) PlacesOption {
	return func(r *PlacesResolver) {
		r.country = strings.ToLower(strings.TrimSpace(country))
	}
}

// PlacesResolver resolves addresses through the Places autocomplete web
// service. The API key is checked once, on first use.
type PlacesResolver struct {
	apiKey  string
	baseURL string
	country string
	client  *http.Client
	timeout time.Duration

	once    sync.Once
	loadErr error
}

var _ Resolver = (*PlacesResolver)(nil)

// NewPlacesResolver builds a resolver for apiKey.
func NewPlacesResolver(apiKey string, options ...PlacesOption) *PlacesResolver {
	r := &PlacesResolver{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultPlacesBaseURL,
		country: DefaultCountry,
		client:  http.DefaultClient,
		timeout: defaultPlacesTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// PlacesError is a non-OK status answered by the service.
type PlacesError struct {
	Status  string
	Message string
}

func (e *PlacesError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("address: places status %s", e.Status)
	}
	return fmt.Sprintf("address: places status %s: %s", e.Status, e.Message)
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

// Resolve returns the top prediction for the query.
func (r *PlacesResolver) Resolve(ctx context.Context, query Query) (string, error) {
	suggestions, err := r.Suggest(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(suggestions) == 0 {
		return "", ErrNoMatch
	}
	return suggestions[0].Value, nil
}

// Suggest returns up to limit predictions for the query.
func (r *PlacesResolver) Suggest(ctx context.Context, query Query, limit int) ([]Suggestion, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	query = query.Normalize()
	if query.Text == "" {
		return []Suggestion{}, nil
	}
	if query.Country == "" {
		query.Country = r.country
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("input", query.Text)
	params.Set("types", "address")
	params.Set("key", r.apiKey)
	if query.Country != "" {
		params.Set("components", "country:"+query.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+autocompletePath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("address: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("address: places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("address: read places response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &PlacesError{Status: resp.Status, Message: strings.TrimSpace(string(body))}
	}

	var payload autocompleteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("address: decode places response: %w", err)
	}
	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []Suggestion{}, nil
	default:
		return nil, &PlacesError{Status: payload.Status, Message: payload.ErrorMessage}
	}

	out := make([]Suggestion, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		desc := strings.TrimSpace(p.Description)
		if desc == "" {
			continue
		}
		out = append(out, Suggestion{Value: desc, Label: desc})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *PlacesResolver) ready() error {
	r.once.Do(func() {
		if r.apiKey == "" {
			r.loadErr = errors.New("address: places API key is empty")
		}
	})
	if r.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrNotConfigured, r.loadErr)
	}
	return nil
}
