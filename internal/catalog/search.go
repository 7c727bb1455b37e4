package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
)

// MinSearchLength is the shortest query sent to the catalog.
const MinSearchLength = 3

// SearchCharactersByPrefix lists up to 20 characters whose name starts with query, ordered by name. Queries shorter
// than MinSearchLength return no results without contacting the catalog.
func (c *Client) SearchCharactersByPrefix(ctx context.Context, query string) []models.Character {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return []models.Character{}
	}
	results, err := c.searchCharacters(ctx, url.Values{
		"nameStartsWith": {query},
		"limit":          {prefixLookupLimit},
		"orderBy":        {"name"},
	})
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "character search failed",
			slog.String("query", query), errors.SlogError(err))
		return []models.Character{}
	}
	characters := make([]models.Character, 0, len(results))
	for _, r := range results {
		characters = append(characters, r.toCharacter())
	}
	return characters
}
