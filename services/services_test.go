package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories/memory"
	"github.com/leonelm2/PotreroMobile/storage"
)

var (
	admin     = models.Actor{UserID: 1, Role: models.RoleAdmin}
	coach     = models.Actor{UserID: 2, Role: models.RoleCoach}
	anonymous = models.Actor{}
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (p *recordingPublisher) BroadcastToRoom(roomID string, message interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		p.messages = append(p.messages, msg)
	}
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Type)
	}
	return out
}

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (u *memoryUploader) Upload(ctx context.Context, key, contentType string, file io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}

type fixture struct {
	store         *memory.Store
	publisher     *recordingPublisher
	disciplines   DisciplineService
	teams         TeamService
	players       PlayerService
	championships ChampionshipService
	matches       MatchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	return &fixture{
		store:       store,
		publisher:   pub,
		disciplines: NewDisciplineService(store.Disciplines(), nil),
		teams:       NewTeamService(store.Teams(), store.Players(), store.Disciplines(), nil, nil),
		players:     NewPlayerService(store.Players(), store.Teams(), nil),
		championships: NewChampionshipService(
			store.Championships(), store.Teams(), store.Players(), store.Disciplines(), nil, pub, nil,
		),
		matches: NewMatchService(store.Matches(), store.Championships(), store.Teams(), nil, pub, nil),
	}
}

// seed creates a discipline with n teams named "Team 01", "Team 02", ...
func (f *fixture) seed(t *testing.T, n int) (*models.Discipline, []int) {
	t.Helper()
	ctx := context.Background()
	d, err := f.disciplines.Create(ctx, admin, DisciplineInput{Name: "Fútbol 5"})
	require.NoError(t, err)

	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		team, err := f.teams.Create(ctx, coach, CreateTeamInput{Name: fmt.Sprintf("Team %02d", i), DisciplineID: d.ID})
		require.NoError(t, err)
		ids = append(ids, team.ID)
	}
	return d, ids
}

func (f *fixture) championship(t *testing.T, teams, groups, qualifiers int) (*ChampionshipView, []int) {
	t.Helper()
	d, ids := f.seed(t, teams)
	c, err := f.championships.Create(context.Background(), admin, CreateChampionshipInput{
		Name:               "Apertura",
		DisciplineID:       d.ID,
		TeamIDs:            ids,
		GroupCount:         groups,
		QualifiersPerGroup: qualifiers,
	})
	require.NoError(t, err)
	return c, ids
}

// playPending scores every pending match of the phase so that the team
// created first always wins.
func (f *fixture) playPending(t *testing.T, championshipID int, phase models.MatchPhase) {
	t.Helper()
	ctx := context.Background()
	pending := models.MatchPending
	matches, err := f.matches.List(ctx, MatchListFilter{ChampionshipID: &championshipID, Phase: &phase, Status: &pending})
	require.NoError(t, err)
	for _, m := range matches {
		home, away := 1, 0
		if *m.AwayTeamID < *m.HomeTeamID {
			home, away = 0, 1
		}
		_, err := f.matches.SubmitResult(ctx, admin, m.ID, home, away)
		require.NoError(t, err)
	}
}
