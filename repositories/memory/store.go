// Package memory keeps every repository in process memory. It honours the
// same constraints as the postgres schema (unique names, foreign keys,
// cascades) so services behave identically on both backends.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

type Store struct {
	mu sync.RWMutex

	disciplines   map[int]models.Discipline
	teams         map[int]models.Team
	players       map[int]models.Player
	championships map[int]*models.Championship
	users         map[int]models.User

	lastDisciplineID   int
	lastTeamID         int
	lastPlayerID       int
	lastChampionshipID int
	lastMatchID        int
	lastUserID         int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		disciplines:   make(map[int]models.Discipline),
		teams:         make(map[int]models.Team),
		players:       make(map[int]models.Player),
		championships: make(map[int]*models.Championship),
		users:         make(map[int]models.User),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Disciplines() repositories.DisciplineRepository { return &disciplineRepository{s: s} }

func (s *Store) Teams() repositories.TeamRepository { return &teamRepository{s: s} }

func (s *Store) Players() repositories.PlayerRepository { return &playerRepository{s: s} }

func (s *Store) Championships() repositories.ChampionshipRepository {
	return &championshipRepository{s: s}
}

func (s *Store) Matches() repositories.MatchRepository { return &matchRepository{s: s} }

func (s *Store) Users() repositories.UserRepository { return &userRepository{s: s} }

// sortMatches orders matches like the postgres repository: group stage
// first, then knockout rounds from the earliest to the final.
func sortMatches(matches []models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.ChampionshipID != b.ChampionshipID {
			return a.ChampionshipID < b.ChampionshipID
		}
		if a.Phase != b.Phase {
			return a.Phase == models.PhaseGroup
		}
		if ra, rb := roundRank(a), roundRank(b); ra != rb {
			return ra < rb
		}
		if ga, gb := groupName(a), groupName(b); ga != gb {
			return ga < gb
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}

func roundRank(m models.Match) int {
	if m.Round == nil {
		return 0
	}
	return m.Round.Rank()
}

func groupName(m models.Match) string {
	if m.GroupName == nil {
		return ""
	}
	return *m.GroupName
}
