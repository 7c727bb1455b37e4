package game_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

var (
	venom     = models.Character{ID: 1, Name: "Venom", Description: "", ImageURL: ""}
	spiderMan = models.Character{ID: 2, Name: "Spider-Man", Description: "", ImageURL: ""}
	deadpool  = models.Character{ID: 3, Name: "Deadpool", Description: "", ImageURL: ""}
	ironMan   = models.Character{ID: 4, Name: "Iron Man", Description: "", ImageURL: ""}
	hulk      = models.Character{ID: 5, Name: "Hulk", Description: "", ImageURL: ""}

	todaysChallenge = models.DailyChallenge{
		Day:            1,
		StartCharacter: "Venom",
		EndCharacter:   "Deadpool",
		Description:    "Connect the symbiote anti-hero to the merc with a mouth",
		Difficulty:     models.DifficultyEasy,
	}
)

func issue(n int) *int { return &n }

func comic(id int, title string) models.Comic {
	return models.Comic{ID: id, Title: title, IssueNumber: issue(id), Description: "", CoverImageURL: "",
		OnSaleDate: time.Time{}, CharacterIDs: nil}
}

type fakeCatalog struct {
	characters map[string]models.Character
	links      map[[2]int][]models.Comic

	// When block is set, FindConnectingComics signals entered and waits for block to close.
	block   chan struct{}
	entered chan struct{}
}

func newFakeCatalog() *fakeCatalog {
	f := &fakeCatalog{
		characters: map[string]models.Character{},
		links:      map[[2]int][]models.Comic{},
		block:      nil,
		entered:    nil,
	}
	for _, c := range []models.Character{venom, spiderMan, deadpool, ironMan, hulk} {
		f.characters[c.Name] = c
	}
	f.link(venom, spiderMan, comic(300, "Amazing Spider-Man (1963) #300"))
	f.link(spiderMan, deadpool, comic(1, "Spider-Man/Deadpool (2016)"))
	f.link(spiderMan, ironMan, comic(10, "Civil War (2006)"), comic(11, "Avengers (1998)"))
	return f
}

func (f *fakeCatalog) link(a, b models.Character, comics ...models.Comic) {
	f.links[[2]int{a.ID, b.ID}] = comics
	f.links[[2]int{b.ID, a.ID}] = comics
}

func (f *fakeCatalog) ResolveCharacterByName(_ context.Context, name string) models.Character {
	if c, ok := f.characters[name]; ok {
		return c
	}
	return models.Character{ID: 999999, Name: name, Description: "", ImageURL: ""}
}

func (f *fakeCatalog) FallbackCharacters() (models.Character, models.Character) {
	return spiderMan, ironMan
}

func (f *fakeCatalog) FindConnectingComics(_ context.Context, a, b int) []models.Comic {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	return f.links[[2]int{a, b}]
}

type fakeRecorder struct {
	mu       sync.Mutex
	opened   int
	openErr  error
	finished []game.Result
}

func (r *fakeRecorder) OpenSession(
	_ context.Context, _ []byte, _ models.DailyChallenge, _, _ models.Character) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
	if r.openErr != nil {
		return "", r.openErr
	}
	return "persisted-session", nil
}

func (r *fakeRecorder) Finish(_ context.Context, result game.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, result)
}

func (r *fakeRecorder) results() []game.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.Result(nil), r.finished...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newEngine(catalog game.Catalog, recorder game.Recorder, clock *fakeClock) *game.Engine {
	cfg := game.Config{StepBudget: 0, Clock: nil}
	if clock != nil {
		cfg.Clock = clock.Now
	}
	return game.NewEngine(catalog, recorder, cfg, testhelpers.NewLogger(io.Discard))
}

func pathNames(s game.Snapshot) []string {
	names := make([]string, 0, len(s.Path))
	for _, segment := range s.Path {
		names = append(names, segment.Character.Name)
	}
	return names
}

func TestEngine_Start(t *testing.T) {
	t.Parallel()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(context.Background(), todaysChallenge, nil)

	snapshot := s.Snapshot()
	require.Equal(t, game.StatusInProgress, snapshot.Status)
	require.Equal(t, []string{"Venom"}, pathNames(snapshot))
	require.Nil(t, snapshot.Path[0].ComicConnectingToPrevious)
	require.Equal(t, deadpool, snapshot.End)
	require.Equal(t, 0, snapshot.Steps)
	require.Equal(t, game.DefaultStepBudget, snapshot.StepsRemaining)
	require.Equal(t, "Today's Easy challenge: Connect Venom to Deadpool!", snapshot.Message)
}

func TestEngine_Start_endpointsSharingAnIDPlayTheFallbackPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	unknown := models.DailyChallenge{
		Day:            3,
		StartCharacter: "Squirrel Girl",
		EndCharacter:   "Howard the Duck",
		Description:    "",
		Difficulty:     models.DifficultyHard,
	}

	s := engine.Start(ctx, unknown, nil)
	snapshot := s.Snapshot()
	require.Equal(t, spiderMan, snapshot.Start)
	require.Equal(t, ironMan, snapshot.End)
	require.Equal(t, []string{"Spider-Man"}, pathNames(snapshot))
	require.Equal(t, "Today's Hard challenge: Connect Spider-Man to Iron Man!", snapshot.Message)

	// Spider-Man and Iron Man share two covers, so reaching the end still takes a move and a choice.
	outcome, err := engine.Select(ctx, s, ironMan)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeChooseComic, outcome)
	require.Equal(t, game.StatusInProgress, s.Snapshot().Status)
}

func TestEngine_Select_noConnection(t *testing.T) {
	t.Parallel()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(context.Background(), todaysChallenge, nil)

	outcome, err := engine.Select(context.Background(), s, hulk)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeNoConnection, outcome)

	snapshot := s.Snapshot()
	require.Equal(t, []string{"Venom"}, pathNames(snapshot))
	require.Equal(t, game.StatusInProgress, snapshot.Status)
	require.Equal(t, "Sorry, Hulk doesn't seem to share a cover with Venom.", snapshot.Message)
	require.False(t, snapshot.Busy)
}

func TestEngine_Select_singleComicIsApplied(t *testing.T) {
	t.Parallel()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(context.Background(), todaysChallenge, nil)

	outcome, err := engine.Select(context.Background(), s, spiderMan)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeAdded, outcome)

	snapshot := s.Snapshot()
	require.Equal(t, []string{"Venom", "Spider-Man"}, pathNames(snapshot))
	require.Equal(t, 300, snapshot.Path[1].ComicConnectingToPrevious.ID)
	require.Equal(t, "Spider-Man added to path!", snapshot.Message)
	require.Equal(t, 1, snapshot.Steps)
}

func TestEngine_Select_multipleComicsAwaitChoice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)

	outcome, err := engine.Select(ctx, s, ironMan)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeChooseComic, outcome)
	snapshot := s.Snapshot()
	require.Equal(t, []string{"Venom", "Spider-Man"}, pathNames(snapshot))
	require.Len(t, snapshot.PendingComics, 2)
	require.Equal(t, ironMan, *snapshot.PendingCandidate)

	_, err = engine.ChooseComic(ctx, s, 12345)
	require.ErrorIs(t, err, game.ErrUnknownComic)

	outcome, err = engine.ChooseComic(ctx, s, 11)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeAdded, outcome)
	snapshot = s.Snapshot()
	require.Equal(t, []string{"Venom", "Spider-Man", "Iron Man"}, pathNames(snapshot))
	require.Equal(t, 11, snapshot.Path[2].ComicConnectingToPrevious.ID)
	require.Nil(t, snapshot.PendingComics)

	_, err = engine.ChooseComic(ctx, s, 11)
	require.ErrorIs(t, err, game.ErrNoPendingChoice)
}

func TestEngine_CancelChoice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := newFakeCatalog()
	catalog.link(venom, ironMan, comic(20, "Venom (2018)"), comic(21, "Iron Man (2020)"))
	engine := newEngine(catalog, nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)

	outcome, err := engine.Select(ctx, s, ironMan)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeChooseComic, outcome)
	engine.CancelChoice(s)
	_, err = engine.ChooseComic(ctx, s, 20)
	require.ErrorIs(t, err, game.ErrNoPendingChoice)
	require.Equal(t, []string{"Venom"}, pathNames(s.Snapshot()))
}

func TestEngine_win(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{mu: sync.Mutex{}, now: time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)}
	engine := newEngine(newFakeCatalog(), nil, clock)
	s := engine.Start(ctx, todaysChallenge, nil)

	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	outcome, err := engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeWon, outcome)

	snapshot := s.Snapshot()
	require.Equal(t, game.StatusWon, snapshot.Status)
	require.Equal(t, 2, snapshot.Steps)
	require.Equal(t, 90, snapshot.ElapsedSeconds)
	require.Equal(t, "🎉 Victory! Connected in 2 steps!", snapshot.Message)

	// Won is terminal.
	_, err = engine.Select(ctx, s, ironMan)
	require.ErrorIs(t, err, game.ErrFinished)
	require.Equal(t, game.StatusWon, s.Snapshot().Status)
}

func TestEngine_winInOneStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := newFakeCatalog()
	catalog.link(venom, deadpool, comic(7, "Venom vs. Deadpool"))
	engine := newEngine(catalog, nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)

	outcome, err := engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeWon, outcome)
	require.Equal(t, "🎉 Victory! Connected in 1 step!", s.Snapshot().Message)
}

// chainCatalog links character i to i+1 for ids 1..n with one comic each.
func chainCatalog(n int) (*fakeCatalog, []models.Character) {
	catalog := newFakeCatalog()
	catalog.characters = map[string]models.Character{}
	catalog.links = map[[2]int][]models.Comic{}
	characters := make([]models.Character, 0, n)
	for i := 1; i <= n; i++ {
		c := models.Character{ID: 100 + i, Name: "Hero " + string(rune('A'+i-1)), Description: "", ImageURL: ""}
		characters = append(characters, c)
		catalog.characters[c.Name] = c
		if i > 1 {
			catalog.link(characters[i-2], c, comic(1000+i, "Team-Up"))
		}
	}
	return catalog, characters
}

func TestEngine_loseAfterStepBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog, chain := chainCatalog(9)
	engine := newEngine(catalog, nil, nil)
	challenge := models.DailyChallenge{Day: 4, StartCharacter: chain[0].Name, EndCharacter: chain[8].Name,
		Description: "", Difficulty: models.DifficultyHard}
	s := engine.Start(ctx, challenge, nil)

	for i := 1; i <= 5; i++ {
		outcome, err := engine.Select(ctx, s, chain[i])
		require.NoError(t, err)
		require.Equal(t, game.OutcomeAdded, outcome)
	}
	outcome, err := engine.Select(ctx, s, chain[6])
	require.NoError(t, err)
	require.Equal(t, game.OutcomeLost, outcome)

	snapshot := s.Snapshot()
	require.Equal(t, game.StatusLost, snapshot.Status)
	require.Equal(t, 6, snapshot.Steps)
	require.Equal(t, 0, snapshot.StepsRemaining)
	require.Equal(t, "Game Over! Maximum steps reached.", snapshot.Message)

	_, err = engine.Select(ctx, s, chain[7])
	require.ErrorIs(t, err, game.ErrFinished)
}

func TestEngine_winOnLastStepBeatsBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog, chain := chainCatalog(7)
	engine := newEngine(catalog, nil, nil)
	challenge := models.DailyChallenge{Day: 4, StartCharacter: chain[0].Name, EndCharacter: chain[6].Name,
		Description: "", Difficulty: models.DifficultyHard}
	s := engine.Start(ctx, challenge, nil)

	var outcome game.Outcome
	for i := 1; i <= 6; i++ {
		var err error
		outcome, err = engine.Select(ctx, s, chain[i])
		require.NoError(t, err)
	}
	require.Equal(t, game.OutcomeWon, outcome)
	require.Equal(t, game.StatusWon, s.Snapshot().Status)
}

func TestEngine_Select_rejectsCharactersInPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)

	_, err = engine.Select(ctx, s, venom)
	require.ErrorIs(t, err, game.ErrAlreadyInPath)
	_, err = engine.Select(ctx, s, spiderMan)
	require.ErrorIs(t, err, game.ErrAlreadyInPath)
	require.Equal(t, []string{"Venom", "Spider-Man"}, pathNames(s.Snapshot()))
}

func TestEngine_Select_busy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := newFakeCatalog()
	engine := newEngine(catalog, nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)

	catalog.block = make(chan struct{})
	catalog.entered = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		_, err := engine.Select(ctx, s, spiderMan)
		done <- err
	}()
	<-catalog.entered

	require.True(t, s.Snapshot().Busy)
	_, err := engine.Select(ctx, s, ironMan)
	require.ErrorIs(t, err, game.ErrBusy)
	_, err = engine.ChooseComic(ctx, s, 1)
	require.ErrorIs(t, err, game.ErrBusy)

	close(catalog.block)
	require.NoError(t, <-done)
	require.Equal(t, []string{"Venom", "Spider-Man"}, pathNames(s.Snapshot()))
}

func TestEngine_Restart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	_, err = engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, s.Snapshot().Status)

	engine.Restart(ctx, s)
	snapshot := s.Snapshot()
	require.Equal(t, game.StatusInProgress, snapshot.Status)
	require.Equal(t, []string{"Venom"}, pathNames(snapshot))
	require.Equal(t, todaysChallenge, snapshot.Challenge)
}

func TestEngine_Restart_closesUnfinishedPersistedGame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := &fakeRecorder{mu: sync.Mutex{}, opened: 0, openErr: nil, finished: nil}
	engine := newEngine(newFakeCatalog(), recorder, nil)

	s := engine.Start(ctx, todaysChallenge, []byte("user"))
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	engine.Restart(ctx, s)
	engine.Wait()

	results := recorder.results()
	require.Len(t, results, 1)
	require.Equal(t, "persisted-session", results[0].SessionID)
	require.False(t, results[0].Won)
	require.Equal(t, 1, results[0].Steps)
	require.Equal(t, 2, recorder.opened)
	require.True(t, s.Snapshot().Persisted)

	// A finished game was already reported, restarting it adds nothing.
	_, err = engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	_, err = engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	engine.Restart(ctx, s)
	engine.Wait()
	results = recorder.results()
	require.Len(t, results, 2)
	require.True(t, results[1].Won)
}

func TestEngine_Restart_discardsMoveInFlight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := newFakeCatalog()
	engine := newEngine(catalog, nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)

	catalog.block = make(chan struct{})
	catalog.entered = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		_, err := engine.Select(ctx, s, spiderMan)
		done <- err
	}()
	<-catalog.entered
	engine.Restart(ctx, s)
	close(catalog.block)

	require.ErrorIs(t, <-done, game.ErrRestarted)
	snapshot := s.Snapshot()
	require.Equal(t, []string{"Venom"}, pathNames(snapshot))
	require.False(t, snapshot.Busy)
}

func TestEngine_recordsAuthenticatedGames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := &fakeRecorder{mu: sync.Mutex{}, opened: 0, openErr: nil, finished: nil}
	engine := newEngine(newFakeCatalog(), recorder, nil)

	s := engine.Start(ctx, todaysChallenge, []byte("user"))
	require.True(t, s.Snapshot().Persisted)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	_, err = engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	engine.Wait()

	results := recorder.results()
	require.Len(t, results, 1)
	require.Equal(t, "persisted-session", results[0].SessionID)
	require.True(t, results[0].Won)
	require.Equal(t, 2, results[0].Steps)
	require.Len(t, results[0].Path, 3)
	require.Equal(t, []byte("user"), results[0].UserID)
}

func TestEngine_anonymousGamesAreNotRecorded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := &fakeRecorder{mu: sync.Mutex{}, opened: 0, openErr: nil, finished: nil}
	engine := newEngine(newFakeCatalog(), recorder, nil)

	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	_, err = engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	engine.Wait()

	require.Equal(t, 0, recorder.opened)
	require.Empty(t, recorder.results())
}

func TestEngine_failedOpenKeepsPlaying(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := &fakeRecorder{mu: sync.Mutex{}, opened: 0, openErr: errors.NewSentinel("disk full"), finished: nil}
	engine := newEngine(newFakeCatalog(), recorder, nil)

	s := engine.Start(ctx, todaysChallenge, []byte("user"))
	require.False(t, s.Snapshot().Persisted)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	outcome, err := engine.Select(ctx, s, deadpool)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeWon, outcome)
	engine.Wait()
	require.Empty(t, recorder.results())
}

func TestSession_FilterCandidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)

	filtered := s.FilterCandidates([]models.Character{venom, spiderMan, ironMan, deadpool})
	require.Equal(t, []models.Character{ironMan, deadpool}, filtered)

	c, ok := s.Playable(deadpool.ID)
	require.True(t, ok)
	require.Equal(t, deadpool, c)
	_, ok = s.Playable(hulk.ID)
	require.False(t, ok)
}
