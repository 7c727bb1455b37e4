package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/616degrees/cmd/cli/challenges"
	"github.com/myrjola/616degrees/cmd/cli/leaderboard"
	"github.com/myrjola/616degrees/internal/ai"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/spf13/cobra"
	"io/fs"
	"log/slog"
	"os"
)

const defaultSqliteURL = "./degrees.sqlite"

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	sqliteURL, ok := lookupEnv("DEGREES_SQLITE_URL")
	if !ok {
		sqliteURL = defaultSqliteURL
	}

	rootCmd := &cobra.Command{ //nolint:exhaustruct // defaults are fine
		Use:           "degrees-cli",
		Long:          `Command line utilities for administering 616 Degrees of Separation`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&sqliteURL, "sqlite-url", sqliteURL,
		"SQLite URL, defaults to $DEGREES_SQLITE_URL")

	openDatabase := func(ctx context.Context) (*sqlite.Database, error) {
		logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelWarn,
			ReplaceAttr: nil,
		})))
		dbs, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			return nil, errors.Wrap(err, "open database", slog.String("url", sqliteURL))
		}
		return dbs, nil
	}
	newDescriber := func() (challenges.Describer, error) {
		apiKey, found := lookupEnv("OPENAI_API_KEY")
		if !found || apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for --describe")
		}
		baseURL, _ := lookupEnv("OPENAI_BASE_URL")
		return ai.NewDescriptionWriter(apiKey, baseURL), nil
	}

	rootCmd.AddGroup(challenges.Group)
	rootCmd.AddCommand(challenges.NewCommand(openDatabase, newDescriber))
	rootCmd.AddGroup(leaderboard.Group)
	rootCmd.AddCommand(leaderboard.NewCommand(openDatabase))
	return rootCmd
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
