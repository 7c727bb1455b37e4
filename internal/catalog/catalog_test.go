package catalog_test

import (
	"context"
	"crypto/md5" //nolint:gosec // mirrors the catalog signature
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/myrjola/616degrees/internal/catalog"
	"github.com/myrjola/616degrees/internal/catalog/catalogtest"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*catalog.Client, *catalogtest.Server) {
	t.Helper()
	characters, comics := catalogtest.Fixture()
	server := catalogtest.NewServer(t, characters, comics)
	logger := testhelpers.NewLogger(io.Discard)
	gateway, err := catalog.NewGateway(catalog.GatewayConfig{
		BaseURL:       server.URL,
		PublicKey:     "public",
		PrivateKey:    "private",
		RatePerSecond: 0,
		Timeout:       time.Second,
	}, logger)
	require.NoError(t, err)
	return catalog.NewClient(gateway, logger), server
}

func TestSigner_Sign(t *testing.T) {
	t.Parallel()
	signer := catalog.Signer{PublicKey: "public", PrivateKey: "private"}
	params, err := signer.Sign(time.UnixMilli(1700000000000))
	require.NoError(t, err)

	sum := md5.Sum([]byte("1700000000000privatepublic")) //nolint:gosec // see import
	require.Equal(t, "1700000000000", params.Get("ts"))
	require.Equal(t, "public", params.Get("apikey"))
	require.Equal(t, hex.EncodeToString(sum[:]), params.Get("hash"))

	_, err = catalog.Signer{PublicKey: "public", PrivateKey: ""}.Sign(time.Now())
	require.ErrorIs(t, err, catalog.ErrMissingCredentials)
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		endpoint string
		valid    bool
	}{
		{endpoint: "/characters", valid: true},
		{endpoint: "/characters/1009610/comics", valid: true},
		{endpoint: "/comics/1", valid: true},
		{endpoint: "characters", valid: false},
		{endpoint: "/characters/../admin", valid: false},
		{endpoint: "//evil.example.com/characters", valid: false},
		{endpoint: "/characters?apikey=x", valid: false},
		{endpoint: "https://evil.example.com", valid: false},
		{endpoint: "", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			t.Parallel()
			err := catalog.ValidateEndpoint(tt.endpoint)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, catalog.ErrInvalidEndpoint)
			}
		})
	}
}

func TestGateway_Do(t *testing.T) {
	t.Parallel()
	requests := make(chan url.Values, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.URL.Query()
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":409,"status":"You must pass a valid hash"}`))
	}))
	t.Cleanup(server.Close)

	gateway, err := catalog.NewGateway(catalog.GatewayConfig{
		BaseURL:       server.URL,
		PublicKey:     "public",
		PrivateKey:    "private",
		RatePerSecond: 100,
		Timeout:       time.Second,
	}, nil)
	require.NoError(t, err)

	status, body, err := gateway.Do(context.Background(), "/characters", url.Values{
		"nameStartsWith": {"Spi"},
		"hash":           {"forged"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, status)
	require.JSONEq(t, `{"code":409,"status":"You must pass a valid hash"}`, string(body))
	received := <-requests
	require.Equal(t, "Spi", received.Get("nameStartsWith"))
	require.Equal(t, "public", received.Get("apikey"))
	require.Len(t, received["hash"], 1)
	require.NotEqual(t, "forged", received.Get("hash"))

	_, err = gateway.Fetch(context.Background(), "/characters", nil)
	require.ErrorIs(t, err, catalog.ErrUpstream)

	_, _, err = gateway.Do(context.Background(), "/../secrets", nil)
	require.ErrorIs(t, err, catalog.ErrInvalidEndpoint)
}

func TestGateway_missingCredentials(t *testing.T) {
	t.Parallel()
	gateway, err := catalog.NewGateway(catalog.GatewayConfig{
		BaseURL:       "https://gateway.marvel.com/v1/public",
		PublicKey:     "",
		PrivateKey:    "",
		RatePerSecond: 0,
		Timeout:       0,
	}, nil)
	require.NoError(t, err)
	_, err = gateway.Fetch(context.Background(), "/characters", nil)
	require.ErrorIs(t, err, catalog.ErrMissingCredentials)
}

func TestClient_ResolveCharacterByName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		request  string
		wantID   int
		wantName string
	}{
		{name: "known id", request: "Spider-Man", wantID: catalogtest.SpiderMan, wantName: "Spider-Man"},
		{name: "known id ignores case", request: "iron man", wantID: catalogtest.IronMan, wantName: "Iron Man"},
		{name: "alias", request: "Carnage", wantID: catalogtest.Carnage, wantName: "Carnage (Cletus Kasady)"},
		{name: "prefix", request: "Wolv", wantID: catalogtest.Wolverine, wantName: "Wolverine"},
		{name: "secret identity", request: "Venom", wantID: catalogtest.Venom, wantName: "Venom"},
		{name: "placeholder", request: "Squirrel Girl", wantID: catalog.PlaceholderCharacterID, wantName: "Squirrel Girl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newClient(t)
			character := client.ResolveCharacterByName(context.Background(), tt.request)
			require.Equal(t, tt.wantID, character.ID)
			require.Equal(t, tt.wantName, character.Name)
			require.NotEmpty(t, character.ImageURL)
		})
	}
}

func TestClient_ResolveCharacterByName_descriptionAndImage(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t)
	deadpool := client.ResolveCharacterByName(context.Background(), "Deadpool")
	require.Equal(t, "No description available", deadpool.Description)
	require.Equal(t, "http://i.annihil.us/u/prod/marvel/i/mg/1009268/standard_medium.jpg", deadpool.ImageURL)
}

func TestClient_LookupCharacterByName_notFound(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t)
	_, err := client.LookupCharacterByName(context.Background(), "Squirrel Girl")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = client.LookupCharacterByName(context.Background(), "  ")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_ResolveVenom_neverPicksImpostors(t *testing.T) {
	t.Parallel()
	characters := []catalogtest.Character{
		{ID: catalogtest.AgentVenom, Name: "Venom (Flash Thompson)", Description: "Agent Venom."},
		{ID: catalogtest.ScorpionVenom, Name: "Venom (Mac Gargan)", Description: "Formerly the Scorpion."},
		{ID: 3, Name: "Agent Venom", Description: "Flash Thompson with the symbiote."},
	}
	server := catalogtest.NewServer(t, characters, nil)
	gateway, err := catalog.NewGateway(catalog.GatewayConfig{
		BaseURL: server.URL, PublicKey: "public", PrivateKey: "private", RatePerSecond: 0, Timeout: time.Second,
	}, nil)
	require.NoError(t, err)
	client := catalog.NewClient(gateway, nil)

	venom := client.ResolveCharacterByName(context.Background(), "venom")
	require.Equal(t, catalog.PlaceholderCharacterID, venom.ID)
	require.Equal(t, "Venom (Eddie Brock)", venom.Name)
	require.Contains(t, venom.Description, "Eddie Brock")
}

func TestClient_ResolveCharacterByName_catalogDown(t *testing.T) {
	t.Parallel()
	client, server := newClient(t)
	server.SetFailing(true)

	start := client.ResolveCharacterByName(context.Background(), "Spider-Man")
	require.Equal(t, catalog.PlaceholderCharacterID, start.ID)
	require.Equal(t, "Spider-Man", start.Name)

	venom := client.ResolveCharacterByName(context.Background(), "Venom")
	require.Equal(t, "Venom (Eddie Brock)", venom.Name)
}

func TestClient_FallbackCharacters(t *testing.T) {
	t.Parallel()
	client, server := newClient(t)
	server.SetFailing(true)

	start, end := client.FallbackCharacters()
	require.Equal(t, catalogtest.SpiderMan, start.ID)
	require.Equal(t, catalogtest.IronMan, end.ID)
	require.Equal(t, "Spider-Man", start.Name)
	require.Equal(t, "Iron Man", end.Name)
	require.NotEmpty(t, start.ImageURL)
	require.Empty(t, server.Requests())
}

func TestClient_SearchCharactersByPrefix(t *testing.T) {
	t.Parallel()
	client, server := newClient(t)

	require.Empty(t, client.SearchCharactersByPrefix(context.Background(), "Sp"))
	require.Empty(t, client.SearchCharactersByPrefix(context.Background(), "  Sp  "))
	require.Empty(t, server.Requests(), "short queries must not reach the catalog")

	results := client.SearchCharactersByPrefix(context.Background(), "ven")
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"Venom", "Venom (Flash Thompson)", "Venom (Mac Gargan)"}, names)
	require.Equal(t, []string{"/characters?limit=20&nameStartsWith=ven&orderBy=name"}, server.Requests())

	server.SetFailing(true)
	require.Empty(t, client.SearchCharactersByPrefix(context.Background(), "ven"))
}

func TestClient_FindConnectingComics(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t)
	ctx := context.Background()

	comics := client.FindConnectingComics(ctx, catalogtest.SpiderMan, catalogtest.IronMan)
	require.Len(t, comics, 2)
	require.Equal(t, catalogtest.ComicCivilWar, comics[0].ID, "most recent first")
	require.Equal(t, catalogtest.ComicAvengers, comics[1].ID)
	require.Equal(t, []int{catalogtest.SpiderMan, catalogtest.IronMan}, comics[0].CharacterIDs)
	require.Equal(t, "http://i.annihil.us/u/prod/marvel/i/mg/comics/4/portrait_medium.jpg", comics[0].CoverImageURL)

	reversed := client.FindConnectingComics(ctx, catalogtest.IronMan, catalogtest.SpiderMan)
	require.Len(t, reversed, 2)
	for i := range comics {
		require.Equal(t, comics[i].ID, reversed[i].ID)
	}

	require.Empty(t, client.FindConnectingComics(ctx, catalogtest.Hulk, catalogtest.Deadpool))
}

func TestClient_FindConnectingComics_capped(t *testing.T) {
	t.Parallel()
	var comics []catalogtest.Comic
	for i := 1; i <= 15; i++ {
		comics = append(comics, catalogtest.Comic{
			ID:     i,
			Title:  "Team-Up",
			Issue:  i,
			OnSale: time.Date(2000+i, time.January, 1, 0, 0, 0, 0, time.UTC),
			Cast:   []int{1, 2},
		})
	}
	server := catalogtest.NewServer(t, nil, comics)
	gateway, err := catalog.NewGateway(catalog.GatewayConfig{
		BaseURL: server.URL, PublicKey: "public", PrivateKey: "private", RatePerSecond: 0, Timeout: time.Second,
	}, nil)
	require.NoError(t, err)

	shared := catalog.NewClient(gateway, nil).FindConnectingComics(context.Background(), 1, 2)
	require.Len(t, shared, catalog.MaxConnectingComics)
	require.Equal(t, 15, shared[0].ID)
}

func TestClient_FindConnectingComics_placeholder(t *testing.T) {
	t.Parallel()
	client, server := newClient(t)

	comics := client.FindConnectingComics(context.Background(), catalog.PlaceholderCharacterID, catalogtest.Deadpool)
	require.Len(t, comics, 1)
	require.Equal(t, "Amazing Spider-Man", comics[0].Title)
	require.NotNil(t, comics[0].IssueNumber)
	require.Equal(t, 300, *comics[0].IssueNumber)
	require.Equal(t, []int{catalog.PlaceholderCharacterID, catalogtest.Deadpool}, comics[0].CharacterIDs)
	require.Empty(t, server.Requests())
}

func TestClient_FindConnectingComics_failure(t *testing.T) {
	t.Parallel()
	client, server := newClient(t)
	server.SetFailing(true)
	require.Empty(t, client.FindConnectingComics(context.Background(), catalogtest.SpiderMan, catalogtest.IronMan))
}

func TestClient_GetComicDetails(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t)
	comic, err := client.GetComicDetails(context.Background(), catalogtest.ComicCivilWar)
	require.NoError(t, err)
	require.Equal(t, "Civil War (2006) #1", comic.Title)
	require.ElementsMatch(t, []int{catalogtest.IronMan, catalogtest.SpiderMan, catalogtest.Wolverine}, comic.CharacterIDs)
	require.Contains(t, comic.CoverImageURL, "portrait_xlarge")

	_, err = client.GetComicDetails(context.Background(), 424242)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}
