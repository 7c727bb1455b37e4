package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
)

// PlaceholderCharacterID marks a synthesized character that has no catalog record.
const PlaceholderCharacterID = 999999

const (
	prefixLookupLimit   = "20"
	identityLookupLimit = "10"
	aliasLookupLimit    = "50"
)

// strategy is one attempt at mapping a challenge name to a catalog character.
type strategy struct {
	name string
	find func(ctx context.Context, name string) (models.Character, error)
}

// strategiesFor returns the ordered lookup attempts for name. Names with an identity rule are resolved exclusively
// through the rule.
func (c *Client) strategiesFor(name string) []strategy {
	if rule, ok := identityRules[strings.ToLower(name)]; ok {
		return []strategy{{name: "secret_identity", find: func(ctx context.Context, _ string) (models.Character, error) {
			return c.findBySecretIdentity(ctx, rule)
		}}}
	}
	return []strategy{
		{name: "known_id", find: c.findByKnownID},
		{name: "exact_name", find: c.findByExactName},
		{name: "alias", find: c.findByAlias},
		{name: "prefix", find: c.findByPrefix},
	}
}

// LookupCharacterByName runs the lookup strategies in order and returns the first hit or ErrNotFound.
func (c *Client) LookupCharacterByName(ctx context.Context, name string) (models.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Character{}, errors.Wrap(ErrNotFound, "empty name")
	}
	for _, s := range c.strategiesFor(name) {
		character, err := s.find(ctx, name)
		if err == nil {
			c.logger.LogAttrs(ctx, slog.LevelDebug, "resolved character",
				slog.String("name", name),
				slog.String("strategy", s.name),
				slog.Int("id", character.ID),
				slog.String("resolved_name", character.Name))
			return character, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "lookup strategy failed",
				slog.String("name", name),
				slog.String("strategy", s.name),
				errors.SlogError(err))
		}
	}
	return models.Character{}, errors.Wrap(ErrNotFound, "no strategy matched", slog.String("name", name))
}

// ResolveCharacterByName is LookupCharacterByName that never fails: when nothing matches it synthesizes a
// placeholder character so that the game can still start.
func (c *Client) ResolveCharacterByName(ctx context.Context, name string) models.Character {
	character, err := c.LookupCharacterByName(ctx, name)
	if err == nil {
		return character
	}
	c.logger.LogAttrs(ctx, slog.LevelWarn, "using placeholder character", slog.String("name", name))
	return PlaceholderCharacter(strings.TrimSpace(name))
}

// PlaceholderCharacter synthesizes the stand-in used when the catalog has no usable record for name.
func PlaceholderCharacter(name string) models.Character {
	if rule, ok := identityRules[strings.ToLower(name)]; ok {
		return models.Character{
			ID:          PlaceholderCharacterID,
			Name:        rule.alias + " (" + rule.secretIdentity + ")",
			Description: rule.placeholder,
			ImageURL:    placeholderImage(100, 100, rule.alias), //nolint:mnd // placeholder dimensions
		}
	}
	return models.Character{
		ID:          PlaceholderCharacterID,
		Name:        name,
		Description: noDescription,
		ImageURL:    placeholderImage(100, 100, name), //nolint:mnd // placeholder dimensions
	}
}

// FallbackCharacters returns the Spider-Man and Iron Man pair that is played when a challenge's endpoints can't be
// told apart, for example when both became placeholders while the catalog was unreachable. The records are built
// locally so that the pair is available without the catalog.
func (c *Client) FallbackCharacters() (models.Character, models.Character) {
	fallback := func(name string) models.Character {
		return models.Character{
			ID:          knownCharacterIDs[name],
			Name:        name,
			Description: noDescription,
			ImageURL:    placeholderImage(100, 100, name), //nolint:mnd // placeholder dimensions
		}
	}
	return fallback("Spider-Man"), fallback("Iron Man")
}

func (c *Client) findByKnownID(ctx context.Context, name string) (models.Character, error) {
	id, ok := knownCharacterIDs[canonicalName(name)]
	if !ok {
		return models.Character{}, ErrNotFound
	}
	return c.GetCharacterByID(ctx, id)
}

func (c *Client) findByExactName(ctx context.Context, name string) (models.Character, error) {
	results, err := c.searchCharacters(ctx, url.Values{"name": {name}, "limit": {"1"}})
	if err != nil {
		return models.Character{}, err
	}
	if len(results) == 0 {
		return models.Character{}, ErrNotFound
	}
	return results[0].toCharacter(), nil
}

func (c *Client) findByAlias(ctx context.Context, name string) (models.Character, error) {
	var errs []error
	for _, alias := range nameAliases[canonicalName(name)] {
		if strings.EqualFold(alias, name) {
			continue
		}
		character, err := c.findByExactName(ctx, alias)
		if err == nil {
			return character, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return models.Character{}, errors.Join(errs...)
	}
	return models.Character{}, ErrNotFound
}

func (c *Client) findByPrefix(ctx context.Context, name string) (models.Character, error) {
	results, err := c.searchCharacters(ctx, url.Values{
		"nameStartsWith": {name},
		"limit":          {prefixLookupLimit},
		"orderBy":        {"name"},
	})
	if err != nil {
		return models.Character{}, err
	}
	if len(results) == 0 {
		return models.Character{}, ErrNotFound
	}
	return results[0].toCharacter(), nil
}
