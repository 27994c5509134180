package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

const (
	defaultAuthorityTimeout       = 10 * time.Second
	defaultBreakerFailures uint32 = 3
	defaultBreakerOpen            = time.Minute
	responseReadLimit      int64  = 1024
)

var (
	// ErrNetwork means the authority could not be reached.
	ErrNetwork = errors.New("rate authority unreachable")
	// ErrUpstream means the authority answered with something unusable.
	ErrUpstream = errors.New("rate authority returned an invalid response")
)

// HTTPAuthority reads {"rate": <number>} from a JSON endpoint behind a
// circuit breaker.
type HTTPAuthority struct {
	httpClient *http.Client
	url        string
	breaker    *gobreaker.CircuitBreaker[decimal.Decimal]
}

type AuthorityOption func(*authorityOptions)

type authorityOptions struct {
	httpClient  *http.Client
	maxFailures uint32
	openTimeout time.Duration
	onState     func(from, to gobreaker.State)
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) AuthorityOption {
	return func(o *authorityOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) AuthorityOption {
	return func(o *authorityOptions) {
		if maxFailures > 0 {
			o.maxFailures = maxFailures
		}
		if openTimeout > 0 {
			o.openTimeout = openTimeout
		}
	}
}

// WithStateChange is called whenever the breaker changes state.
func WithStateChange(fn func(from, to gobreaker.State)) AuthorityOption {
	return func(o *authorityOptions) {
		o.onState = fn
	}
}

func NewHTTPAuthority(url string, opts ...AuthorityOption) (*HTTPAuthority, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("rate authority url is required")
	}
	options := authorityOptions{
		httpClient:  &http.Client{Timeout: defaultAuthorityTimeout},
		maxFailures: defaultBreakerFailures,
		openTimeout: defaultBreakerOpen,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	maxFailures := options.maxFailures
	settings := gobreaker.Settings{
		Name:        "rate-authority",
		MaxRequests: 1,
		Timeout:     options.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	if options.onState != nil {
		onState := options.onState
		settings.OnStateChange = func(_ string, from, to gobreaker.State) { onState(from, to) }
	}

	return &HTTPAuthority{
		httpClient: options.httpClient,
		url:        url,
		breaker:    gobreaker.NewCircuitBreaker[decimal.Decimal](settings),
	}, nil
}

// Fetch returns the authority's current rate.
func (a *HTTPAuthority) Fetch(ctx context.Context) (decimal.Decimal, error) {
	rate, err := a.breaker.Execute(func() (decimal.Decimal, error) {
		return a.fetch(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return decimal.Zero, networkError(err, "rate authority circuit open")
	}
	return rate, err
}

func (a *HTTPAuthority) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return decimal.Zero, networkError(err, "build rate request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, networkError(err, "execute rate request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return decimal.Zero, upstreamError(nil, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var body struct {
		Rate json.Number `json:"rate"`
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, responseReadLimit))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return decimal.Zero, upstreamError(err, "decode rate response")
	}
	if body.Rate == "" {
		return decimal.Zero, upstreamError(nil, "rate missing from response")
	}
	rate, err := decimal.NewFromString(body.Rate.String())
	if err != nil {
		return decimal.Zero, upstreamError(err, "parse rate %q", body.Rate)
	}
	if !rate.IsPositive() {
		return decimal.Zero, upstreamError(nil, "non-positive rate %s", rate)
	}
	return rate, nil
}

func networkError(cause error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("%w: %w", ErrNetwork, cause), msg)
}

func upstreamError(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, ErrUpstream, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, fmt.Errorf("%w: %w", ErrUpstream, cause), msg)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "network"
	}
}
