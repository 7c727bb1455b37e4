package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
)

const (
	scoreSecretIdentity = 50
	scoreExactAlias     = 40
	scoreAliasInName    = 20
	penaltyVariant      = 10
)

// score rates how likely candidate is the classic incarnation the rule is after. Disqualified candidates report
// ok == false.
func (rule identityRule) score(candidate characterRecord) (int, bool) {
	name := strings.ToLower(candidate.Name)
	description := strings.ToLower(candidate.Description)

	for _, token := range rule.excludeAnywhere {
		if strings.Contains(name, token) || strings.Contains(description, token) {
			return 0, false
		}
	}
	for _, token := range rule.excludeInName {
		if strings.Contains(name, token) {
			return 0, false
		}
	}

	score := 0
	secret := strings.ToLower(rule.secretIdentity)
	if strings.Contains(name, secret) || strings.Contains(description, secret) {
		score += scoreSecretIdentity
	}
	for keyword, bonus := range rule.bonusKeywords {
		if strings.Contains(description, keyword) {
			score += bonus
		}
	}
	// spider-man and spiderman both match the same mention once.
	if strings.Contains(description, "spider-man") && strings.Contains(description, "spiderman") {
		score -= rule.bonusKeywords["spiderman"]
	}

	alias := strings.ToLower(rule.alias)
	switch {
	case name == alias:
		score += scoreExactAlias
	case strings.Contains(name, alias) && !strings.Contains(name, "("):
		score += scoreAliasInName
	}

	for _, token := range rule.variantTokens {
		if strings.Contains(name, token) {
			score -= penaltyVariant
			break
		}
	}
	return score, true
}

// findBySecretIdentity searches both the secret identity and the alias and picks the best scoring candidate.
// Candidates found through the secret identity come first so that they win ties.
func (c *Client) findBySecretIdentity(ctx context.Context, rule identityRule) (models.Character, error) {
	var (
		candidates []characterRecord
		errs       []error
	)
	searches := []url.Values{
		{"nameStartsWith": {rule.secretIdentity}, "limit": {identityLookupLimit}, "orderBy": {"name"}},
		{"nameStartsWith": {rule.alias}, "limit": {aliasLookupLimit}, "orderBy": {"name"}},
	}
	for _, params := range searches {
		results, err := c.searchCharacters(ctx, params)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, results...)
	}

	var (
		best      characterRecord
		bestScore int
		found     bool
	)
	for _, candidate := range candidates {
		score, ok := rule.score(candidate)
		if !ok {
			c.logger.LogAttrs(ctx, slog.LevelDebug, "excluded identity candidate",
				slog.String("alias", rule.alias), slog.String("candidate", candidate.Name))
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	if found {
		return best.toCharacter(), nil
	}
	if len(errs) > 0 {
		return models.Character{}, errors.Join(errs...)
	}
	return models.Character{}, errors.Wrap(ErrNotFound, "no identity candidate", slog.String("alias", rule.alias))
}
