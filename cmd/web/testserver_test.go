package main

import (
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/myrjola/616degrees/internal/catalog/catalogtest"
	"github.com/myrjola/616degrees/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// testServer bundles the application under test with the fake catalog it talks to.
type testServer struct {
	*e2etest.Server
	catalog *catalogtest.Server
}

// startTestServer runs the application against an in-memory database and the fixture catalog. Today is day 1 of the
// curated week, Venom to Deadpool.
func startTestServer(t *testing.T, overrides map[string]string) testServer {
	t.Helper()
	characters, comics := catalogtest.Fixture()
	catalogServer := catalogtest.NewServer(t, characters, comics)

	env := map[string]string{
		"DEGREES_ADDR":                    "localhost:0",
		"DEGREES_SQLITE_URL":              ":memory:",
		"DEGREES_CATALOG_BASE_URL":        catalogServer.URL,
		"DEGREES_CATALOG_PUBLIC_KEY":      "public",
		"DEGREES_CATALOG_PRIVATE_KEY":     "private",
		"DEGREES_CATALOG_RATE_PER_SECOND": strconv.Itoa(0),
		"DEGREES_CHALLENGE_EPOCH":         time.Now().UTC().Format(time.DateOnly),
	}
	for key, value := range overrides {
		env[key] = value
	}
	lookupEnv := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	server, err := e2etest.StartServer(t.Context(), io.Discard, lookupEnv, run)
	require.NoError(t, err)
	return testServer{Server: server, catalog: catalogServer}
}
