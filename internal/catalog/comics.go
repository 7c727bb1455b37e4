package catalog

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxConnectingComics caps the comics offered for a single link.
	MaxConnectingComics = 10
	comicsPerCharacter  = "100"
	syntheticIssue      = 300
)

// FindConnectingComics returns up to MaxConnectingComics comics in which both characters appear, most recent first.
// The result does not depend on argument order. Catalog failures yield an empty result.
func (c *Client) FindConnectingComics(ctx context.Context, a, b int) []models.Comic {
	if a == PlaceholderCharacterID || b == PlaceholderCharacterID {
		return []models.Comic{syntheticComic(a, b)}
	}

	var comicsA, comicsB []comicRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comicsA, err = c.characterComics(gctx, a)
		return err
	})
	g.Go(func() error {
		var err error
		comicsB, err = c.characterComics(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "connecting comics lookup failed",
			slog.Int("a", a), slog.Int("b", b), errors.SlogError(err))
		return []models.Comic{}
	}

	inB := make(map[int]struct{}, len(comicsB))
	for _, comic := range comicsB {
		inB[comic.ID] = struct{}{}
	}
	shared := make([]models.Comic, 0, len(comicsA))
	seen := make(map[int]struct{}, len(comicsA))
	for _, record := range comicsA {
		if _, ok := inB[record.ID]; !ok {
			continue
		}
		if _, dup := seen[record.ID]; dup {
			continue
		}
		seen[record.ID] = struct{}{}
		shared = append(shared, record.toComic(sizeComic, []int{a, b}))
	}
	slices.SortFunc(shared, func(x, y models.Comic) int {
		if byDate := y.OnSaleDate.Compare(x.OnSaleDate); byDate != 0 {
			return byDate
		}
		return cmp.Compare(y.ID, x.ID)
	})
	if len(shared) > MaxConnectingComics {
		shared = shared[:MaxConnectingComics]
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "connecting comics",
		slog.Int("a", a), slog.Int("b", b), slog.Int("count", len(shared)))
	return shared
}

func (c *Client) characterComics(ctx context.Context, id int) ([]comicRecord, error) {
	envelope, err := fetchEnvelope[comicRecord](ctx, c, "/characters/"+strconv.Itoa(id)+"/comics", url.Values{
		"limit":   {comicsPerCharacter},
		"orderBy": {"-onsaleDate"},
	})
	if err != nil {
		return nil, err
	}
	return envelope.Data.Results, nil
}

// syntheticComic links a placeholder character to anything so that a game started with a placeholder stays playable.
func syntheticComic(a, b int) models.Comic {
	issue := syntheticIssue
	return models.Comic{
		ID:            PlaceholderCharacterID,
		Title:         "Amazing Spider-Man",
		IssueNumber:   &issue,
		Description:   "The first appearance of Venom!",
		CoverImageURL: placeholderImage(120, 180, "ASM 300"), //nolint:mnd // placeholder dimensions
		CharacterIDs:  []int{a, b},
	}
}
