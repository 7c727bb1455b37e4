package main

import (
	"context"
	"encoding/json"
	"github.com/myrjola/616degrees/internal/e2etest"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func TestAuth(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	if _, err = client.Register(ctx); err != nil {
		return errors.Wrap(err, "register user")
	}
	if _, err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout user")
	}
	if _, err = client.Login(ctx); err != nil {
		return errors.Wrap(err, "login user")
	}
	return nil
}

// TestGame starts today's game and checks that both endpoints came back from the catalog.
func TestGame(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // catalog lookups are slow
	defer cancel()
	var game struct {
		Status string `json:"status"`
		Path   []json.RawMessage `json:"path"`
	}
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/game", nil, &game)
	if err != nil {
		return errors.Wrap(err, "start game")
	}
	if status != http.StatusCreated {
		return errors.New("unexpected start status", slog.Int("status", status))
	}
	if game.Status != "in_progress" || len(game.Path) != 1 {
		return errors.New("game not ready", slog.String("status", game.Status), slog.Int("path", len(game.Path)))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		start    = time.Now()
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url, hostname, url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestAuth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestGame(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
