// Package leaderboard prints daily rankings.
package leaderboard

import (
	"context"
	"fmt"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/spf13/cobra"
	"log/slog"
	"text/tabwriter"
)

var Group = &cobra.Group{ //nolint:gochecknoglobals // cobra group
	ID:    "leaderboard",
	Title: "Leaderboard",
}

func NewCommand(open func(ctx context.Context) (*sqlite.Database, error)) *cobra.Command {
	var (
		day   int
		level string
		limit int
	)
	cmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:     "leaderboard",
		GroupID: Group.ID,
		Short:   "Show the ranking of a challenge day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			difficulty := models.Difficulty(level)
			if difficulty != "" && !difficulty.Valid() {
				return errors.New("unknown difficulty", slog.String("difficulty", level))
			}
			if day < 1 {
				return errors.New("day must be positive", slog.Int("day", day))
			}
			ctx := cmd.Context()
			var dbs *sqlite.Database
			if dbs, err = open(ctx); err != nil {
				return err
			}
			defer func() {
				if closeErr := dbs.Close(); closeErr != nil {
					err = errors.Join(err, errors.Wrap(closeErr, "close database"))
				}
			}()
			entries, err := repositories.NewLeaderboardRepository(dbs, logging.Discard()).
				Ranking(ctx, day, difficulty, limit)
			if err != nil {
				return errors.Wrap(err, "rank", slog.Int("day", day))
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No results for day %d\n", day)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
			_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tDIFFICULTY\tSTEPS\tSECONDS")
			for i, e := range entries {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n",
					i+1, e.DisplayName, e.Difficulty, e.StepsTaken, e.TimeTakenSeconds)
			}
			if err = tw.Flush(); err != nil {
				return errors.Wrap(err, "flush table")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&day, "day", 1, "challenge day number")
	cmd.Flags().StringVar(&level, "difficulty", "", "only rank results of this difficulty")
	cmd.Flags().IntVar(&limit, "limit", repositories.DefaultLeaderboardLimit, "maximum number of rows")
	return cmd
}
