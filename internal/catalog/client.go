package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals // metrics registry
	Namespace: "degrees",
	Name:      "catalog_requests_total",
	Help:      "Catalog requests issued by the game server.",
}, []string{"kind", "outcome"})

// Client answers the game's questions about characters and comics. Catalog failures never escape: lookups degrade
// to not-found, placeholders, or empty results and the cause is logged.
type Client struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewClient(fetcher Fetcher, logger *slog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger).With(slog.String("source", "catalog")),
	}
}

// endpointKind groups endpoints for metrics so that character ids don't blow up label cardinality.
func endpointKind(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) == 2: //nolint:mnd // /resource/{id}
		return parts[0] + "_by_id"
	default:
		return parts[0] + "_" + parts[len(parts)-1]
	}
}

func fetchEnvelope[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (Envelope[T], error) {
	var envelope Envelope[T]
	kind := endpointKind(endpoint)
	body, err := c.fetcher.Fetch(ctx, endpoint, params)
	if err != nil {
		requestsTotal.WithLabelValues(kind, "error").Inc()
		return envelope, errors.Wrap(err, "fetch", slog.String("endpoint", endpoint))
	}
	if err = json.Unmarshal(body, &envelope); err != nil {
		requestsTotal.WithLabelValues(kind, "malformed").Inc()
		return envelope, errors.Wrap(err, "decode envelope", slog.String("endpoint", endpoint))
	}
	requestsTotal.WithLabelValues(kind, "ok").Inc()
	return envelope, nil
}

func (c *Client) searchCharacters(ctx context.Context, params url.Values) ([]characterRecord, error) {
	envelope, err := fetchEnvelope[characterRecord](ctx, c, "/characters", params)
	if err != nil {
		return nil, err
	}
	return envelope.Data.Results, nil
}

// GetCharacterByID fetches one character. It returns ErrNotFound when the catalog has no such character or cannot be
// reached.
func (c *Client) GetCharacterByID(ctx context.Context, id int) (models.Character, error) {
	if id <= 0 || id == PlaceholderCharacterID {
		return models.Character{}, errors.Wrap(ErrNotFound, "invalid character id", slog.Int("id", id))
	}
	envelope, err := fetchEnvelope[characterRecord](ctx, c, "/characters/"+strconv.Itoa(id), nil)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "character lookup failed", slog.Int("id", id), errors.SlogError(err))
		return models.Character{}, errors.Wrap(ErrNotFound, "fetch character", slog.Int("id", id))
	}
	if len(envelope.Data.Results) == 0 {
		return models.Character{}, errors.Wrap(ErrNotFound, "no such character", slog.Int("id", id))
	}
	return envelope.Data.Results[0].toCharacter(), nil
}

// GetComicDetails fetches a comic with its full cast.
func (c *Client) GetComicDetails(ctx context.Context, id int) (models.Comic, error) {
	if id <= 0 {
		return models.Comic{}, errors.Wrap(ErrNotFound, "invalid comic id", slog.Int("id", id))
	}
	envelope, err := fetchEnvelope[comicRecord](ctx, c, "/comics/"+strconv.Itoa(id), nil)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "comic lookup failed", slog.Int("id", id), errors.SlogError(err))
		return models.Comic{}, errors.Wrap(ErrNotFound, "fetch comic", slog.Int("id", id))
	}
	if len(envelope.Data.Results) == 0 {
		return models.Comic{}, errors.Wrap(ErrNotFound, "no such comic", slog.Int("id", id))
	}
	record := envelope.Data.Results[0]
	return record.toComic(sizeComicDetail, record.castIDs()), nil
}
