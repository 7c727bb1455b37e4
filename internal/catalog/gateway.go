package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound           = errors.NewSentinel("not found in catalog")
	ErrInvalidEndpoint    = errors.NewSentinel("invalid catalog endpoint")
	ErrMissingCredentials = errors.NewSentinel("catalog credentials not configured")
	ErrUpstream           = errors.NewSentinel("catalog responded with an error")
)

// Fetcher retrieves a raw catalog envelope for endpoint and params.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

const maxResponseBytes = 8 << 20

var endpointPattern = regexp.MustCompile(`^/[A-Za-z0-9_\-/]+$`)

// ValidateEndpoint accepts catalog paths such as /characters/1009610/comics and rejects anything that could steer the
// signed request elsewhere.
func ValidateEndpoint(endpoint string) error {
	if !endpointPattern.MatchString(endpoint) || strings.Contains(endpoint, "//") {
		return errors.Wrap(ErrInvalidEndpoint, "validate endpoint", slog.String("endpoint", endpoint))
	}
	return nil
}

type GatewayConfig struct {
	BaseURL       string
	PublicKey     string
	PrivateKey    string
	RatePerSecond float64
	Timeout       time.Duration
}

// Gateway signs requests with the server-held credentials and forwards them to the catalog. The credentials never
// leave the server.
type Gateway struct {
	baseURL string
	signer  Signer
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

func NewGateway(cfg GatewayConfig, logger *slog.Logger) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("invalid catalog base URL", slog.String("base_url", cfg.BaseURL))
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second //nolint:mnd // sensible default
	}
	return &Gateway{
		baseURL: strings.TrimSuffix(base.String(), "/"),
		signer:  Signer{PublicKey: cfg.PublicKey, PrivateKey: cfg.PrivateKey},
		client:  &http.Client{Timeout: timeout}, //nolint:exhaustruct // defaults are fine
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrDiscard(logger).With(slog.String("source", "catalog_gateway")),
		now:     time.Now,
	}, nil
}

// Do performs a signed GET and returns the upstream status and body verbatim.
func (g *Gateway) Do(ctx context.Context, endpoint string, params url.Values) (int, []byte, error) {
	if err := ValidateEndpoint(endpoint); err != nil {
		return 0, nil, err
	}
	query, err := g.signer.Sign(g.now())
	if err != nil {
		return 0, nil, errors.Wrap(err, "sign request")
	}
	for key, values := range params {
		switch key {
		case "ts", "apikey", "hash":
			continue
		}
		for _, v := range values {
			query.Add(key, v)
		}
	}

	if err = g.limiter.Wait(ctx); err != nil {
		return 0, nil, errors.Wrap(err, "wait for rate limiter")
	}

	start := time.Now()
	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint+"?"+query.Encode(), nil); err != nil {
		return 0, nil, errors.Wrap(err, "new request", slog.String("endpoint", endpoint))
	}
	req.Header.Set("Accept", "application/json")

	var resp *http.Response
	if resp, err = g.client.Do(req); err != nil {
		return 0, nil, errors.Wrap(err, "do request", slog.String("endpoint", endpoint))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "could not close response body",
				errors.SlogError(errors.Wrap(closeErr, "close body")))
		}
	}()

	var body []byte
	if body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return 0, nil, errors.Wrap(err, "read body", slog.String("endpoint", endpoint))
	}
	g.logger.LogAttrs(ctx, slog.LevelDebug, "catalog request",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))
	return resp.StatusCode, body, nil
}

// Fetch implements Fetcher. Non-200 responses are errors.
func (g *Gateway) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	status, body, err := g.Do(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Wrap(ErrUpstream, "unexpected status",
			slog.String("endpoint", endpoint), slog.Int("status", status))
	}
	return body, nil
}
