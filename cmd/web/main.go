package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/616degrees/internal/catalog"
	"github.com/myrjola/616degrees/internal/challenge"
	"github.com/myrjola/616degrees/internal/envstruct"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/pprofserver"
	"github.com/myrjola/616degrees/internal/progress"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/myrjola/616degrees/internal/webauthnhandler"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

type application struct {
	logger          *slog.Logger
	webAuthnHandler *webauthnhandler.WebAuthnHandler
	sessionManager  *scs.SessionManager
	gateway         *catalog.Gateway
	catalog         *catalog.Client
	challenges      *challenge.Source
	engine          *game.Engine
	games           *game.Registry
	progress        *progress.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"DEGREES_ADDR" envDefault:"localhost:4000"`
	// FQDN is the fully qualified domain name of the server used for WebAuthn Relying Party configuration.
	FQDN string `env:"DEGREES_FQDN" envDefault:"localhost"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"DEGREES_SQLITE_URL" envDefault:"./degrees.sqlite"`
	// PprofAddr is the address for the pprof server. Empty disables it.
	PprofAddr string `env:"DEGREES_PPROF_ADDR" envDefault:""`
	// CatalogBaseURL points at the public comic catalog API.
	CatalogBaseURL string `env:"DEGREES_CATALOG_BASE_URL" envDefault:"https://gateway.marvel.com/v1/public"`
	// CatalogPublicKey and CatalogPrivateKey sign catalog requests. They never leave the server.
	CatalogPublicKey     string        `env:"DEGREES_CATALOG_PUBLIC_KEY" envDefault:""`
	CatalogPrivateKey    string        `env:"DEGREES_CATALOG_PRIVATE_KEY" envDefault:""`
	CatalogRatePerSecond float64       `env:"DEGREES_CATALOG_RATE_PER_SECOND" envDefault:"5"`
	CatalogTimeout       time.Duration `env:"DEGREES_CATALOG_TIMEOUT" envDefault:"10s"`
	// ChallengeEpoch is the first day of the curated initial week in YYYY-MM-DD format.
	ChallengeEpoch string `env:"DEGREES_CHALLENGE_EPOCH" envDefault:"2025-01-15"`
	// GameIdleTimeout evicts in-memory games nobody has touched for this long.
	GameIdleTimeout time.Duration `env:"DEGREES_GAME_IDLE_TIMEOUT" envDefault:"2h"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var epoch time.Time
	if epoch, err = time.Parse(time.DateOnly, cfg.ChallengeEpoch); err != nil {
		return errors.Wrap(err, "parse challenge epoch", slog.String("epoch", cfg.ChallengeEpoch))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	var dbs *sqlite.Database
	if dbs, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	challengeRepository := repositories.NewChallengeRepository(dbs, logger)
	if err = seedChallenges(ctx, challengeRepository); err != nil {
		return errors.Wrap(err, "seed challenges")
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	sessionManager.Lifetime = 12 * time.Hour                                                    //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true

	var webAuthnHandler *webauthnhandler.WebAuthnHandler
	rpOrigins := []string{"http://" + cfg.Addr, "https://" + cfg.FQDN}
	if webAuthnHandler, err = webauthnhandler.New(cfg.FQDN, rpOrigins, logger, sessionManager, dbs); err != nil {
		return errors.Wrap(err, "new webauthn handler")
	}

	var gateway *catalog.Gateway
	if gateway, err = catalog.NewGateway(catalog.GatewayConfig{
		BaseURL:       cfg.CatalogBaseURL,
		PublicKey:     cfg.CatalogPublicKey,
		PrivateKey:    cfg.CatalogPrivateKey,
		RatePerSecond: cfg.CatalogRatePerSecond,
		Timeout:       cfg.CatalogTimeout,
	}, logger); err != nil {
		return errors.Wrap(err, "new catalog gateway")
	}
	catalogClient := catalog.NewClient(gateway, logger)
	recorder := progress.NewRecorder(dbs, nil, logger)
	engine := game.NewEngine(catalogClient, recorder, game.Config{StepBudget: game.DefaultStepBudget, Clock: nil},
		logger)
	defer engine.Wait()

	games := game.NewRegistry(cfg.GameIdleTimeout, nil)
	go games.Run(ctx)

	app := application{
		logger:          logger,
		webAuthnHandler: webAuthnHandler,
		sessionManager:  sessionManager,
		gateway:         gateway,
		catalog:         catalogClient,
		challenges:      challenge.NewSource(challengeRepository, epoch, nil, logger),
		engine:          engine,
		games:           games,
		progress:        recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}

	return nil
}

// seedChallenges stores the curated challenges. Seeding is an upsert so that edits to the seed file reach existing
// databases.
func seedChallenges(ctx context.Context, store *repositories.ChallengeRepository) error {
	records, err := challenge.Seed()
	if err != nil {
		return errors.Wrap(err, "load seed")
	}
	if err = store.UpsertAll(ctx, records); err != nil {
		return errors.Wrap(err, "upsert seed")
	}
	return nil
}

// loadDotEnv loads a .env file when there is one in the working directory.
func loadDotEnv(logger *slog.Logger) error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load .env")
	}
	logger.Info("loaded .env")
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := loadDotEnv(logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading environment", errors.SlogError(err))
		os.Exit(1)
	}
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

