// Package challenges administers the stored daily challenges.
package challenges

import (
	"context"
	"fmt"
	"github.com/myrjola/616degrees/internal/challenge"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"text/tabwriter"
)

var Group = &cobra.Group{ //nolint:gochecknoglobals // cobra group
	ID:    "challenges",
	Title: "Challenges",
}

// OpenDatabase opens the database the commands operate on.
type OpenDatabase func(ctx context.Context) (*sqlite.Database, error)

// Describer drafts a description for a new challenge.
type Describer interface {
	Describe(ctx context.Context, start, end string, difficulty models.Difficulty) (string, error)
}

// NewCommand returns the challenges command with its list, add and seed subcommands.
func NewCommand(open OpenDatabase, newDescriber func() (Describer, error)) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:     "challenges",
		GroupID: Group.ID,
		Short:   "Manage daily challenges",
	}
	cmd.AddCommand(listCommand(open), addCommand(open, newDescriber), seedCommand(open))
	return cmd
}

// withRepository opens the database for the duration of fn.
func withRepository(
	ctx context.Context,
	open OpenDatabase,
	fn func(repo *repositories.ChallengeRepository) error,
) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var dbs *sqlite.Database
	if dbs, err = open(ctx); err != nil {
		return err
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close database"))
		}
	}()
	return fn(repositories.NewChallengeRepository(dbs, logging.Discard()))
}

func printChallenges(w io.Writer, records []models.ChallengeRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	_, _ = fmt.Fprintln(tw, "DAY\tSTART\tEND\tDIFFICULTY\tWEEK\tDESCRIPTION")
	for _, r := range records {
		week := "pool"
		if r.IsInitialWeek {
			week = "initial"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.DayNumber, r.StartCharacter, r.EndCharacter, r.Difficulty, week, r.Description)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush table")
	}
	return nil
}

func listCommand(open OpenDatabase) *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:   "list",
		Short: "List stored challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), open, func(repo *repositories.ChallengeRepository) error {
				var (
					records []models.ChallengeRecord
					err     error
				)
				if difficulty == "" {
					records, err = repo.All(cmd.Context())
				} else {
					d := models.Difficulty(difficulty)
					if !d.Valid() {
						return errors.New("unknown difficulty", slog.String("difficulty", difficulty))
					}
					records, err = repo.ByDifficulty(cmd.Context(), d)
				}
				if err != nil {
					return errors.Wrap(err, "list challenges")
				}
				return printChallenges(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "only list challenges of this difficulty")
	return cmd
}

func addCommand(open OpenDatabase, newDescriber func() (Describer, error)) *cobra.Command {
	var (
		record   models.ChallengeRecord
		level    string
		describe bool
	)
	cmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:   "add",
		Short: "Add or replace a challenge",
		Long: `Adds a challenge. A challenge with the same start and end characters is replaced.
With --describe the description is drafted by a language model when none is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			record.Difficulty = models.Difficulty(level)
			if record.Description == "" && describe {
				describer, err := newDescriber()
				if err != nil {
					return err
				}
				if record.Description, err = describer.Describe(ctx, record.StartCharacter, record.EndCharacter,
					record.Difficulty); err != nil {
					return errors.Wrap(err, "describe challenge")
				}
			}
			if err := challenge.Validate(record); err != nil {
				return err
			}
			return withRepository(ctx, open, func(repo *repositories.ChallengeRepository) error {
				if err := repo.Add(ctx, record); err != nil {
					return errors.Wrap(err, "add challenge")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved day %d: %s -> %s (%s) %q\n", record.DayNumber,
					record.StartCharacter, record.EndCharacter, record.Difficulty, record.Description)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&record.DayNumber, "day", 0, "day number of the challenge")
	flags.StringVar(&record.StartCharacter, "start", "", "name of the start character")
	flags.StringVar(&record.EndCharacter, "end", "", "name of the end character")
	flags.StringVar(&level, "difficulty", string(models.DifficultyMedium), "difficulty")
	flags.StringVar(&record.Description, "description", "", "description shown to players")
	flags.BoolVar(&record.IsInitialWeek, "initial-week", false, "serve on days 1-7 instead of the rotating pool")
	flags.BoolVar(&describe, "describe", false, "draft the description with a language model")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func seedCommand(open OpenDatabase) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:   "seed",
		Short: "Store the curated challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := challenge.Seed()
			if err != nil {
				return errors.Wrap(err, "load seed")
			}
			return withRepository(cmd.Context(), open, func(repo *repositories.ChallengeRepository) error {
				if err = repo.UpsertAll(cmd.Context(), records); err != nil {
					return errors.Wrap(err, "seed challenges")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d challenges\n", len(records))
				return nil
			})
		},
	}
}
