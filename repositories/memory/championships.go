package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

type championshipRepository struct {
	s *Store
}

func (r *championshipRepository) Create(_ context.Context, c *models.Championship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkChampionship(c); err != nil {
		return err
	}
	r.s.lastChampionshipID++
	c.ID = r.s.lastChampionshipID
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	if c.TeamIDs == nil {
		c.TeamIDs = []int{}
	}
	if c.Groups == nil {
		c.Groups = []models.Group{}
	}
	r.s.assignMatchIDs(c)
	r.s.championships[c.ID] = c.Clone()
	return nil
}

func (r *championshipRepository) GetByID(_ context.Context, id int) (*models.Championship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.championships[id]
	if !ok {
		return nil, repositories.ErrChampionshipNotFound
	}
	return c.Clone(), nil
}

func (r *championshipRepository) GetAll(_ context.Context) ([]models.Championship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Championship, 0, len(r.s.championships))
	for _, c := range r.s.championships {
		cp := c.Clone()
		cp.Matches = nil
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *championshipRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.championships[id]; !ok {
		return repositories.ErrChampionshipNotFound
	}
	delete(r.s.championships, id)
	return nil
}

// Mutate works on a deep copy; the stored aggregate is only replaced when
// fn and the reference checks succeed.
func (r *championshipRepository) Mutate(ctx context.Context, id int, fn repositories.MutateFunc) (*models.Championship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, ok := r.s.championships[id]
	if !ok {
		return nil, repositories.ErrChampionshipNotFound
	}

	c := stored.Clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	c.ID = id
	if err := r.s.checkChampionship(c); err != nil {
		return nil, err
	}
	r.s.assignMatchIDs(c)
	sortMatches(c.Matches)
	c.UpdatedAt = r.s.now()

	r.s.championships[id] = c
	return c.Clone(), nil
}

// checkChampionship enforces the foreign keys the postgres schema declares.
func (s *Store) checkChampionship(c *models.Championship) error {
	if _, ok := s.disciplines[c.DisciplineID]; !ok {
		return repositories.ErrDisciplineNotFound
	}
	for _, id := range c.TeamIDs {
		if _, ok := s.teams[id]; !ok {
			return repositories.ErrChampionshipTeamInvalid
		}
	}
	if c.ChampionID != nil {
		if _, ok := s.teams[*c.ChampionID]; !ok {
			return repositories.ErrChampionshipTeamInvalid
		}
	}
	return nil
}

func (s *Store) assignMatchIDs(c *models.Championship) {
	for i := range c.Matches {
		m := &c.Matches[i]
		m.ChampionshipID = c.ID
		if m.ID == 0 {
			s.lastMatchID++
			m.ID = s.lastMatchID
		}
	}
}

type matchRepository struct {
	s *Store
}

func (r *matchRepository) List(_ context.Context, filter repositories.MatchFilter) ([]models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Match, 0)
	for _, c := range r.s.championships {
		if filter.ChampionshipID != nil && c.ID != *filter.ChampionshipID {
			continue
		}
		cp := c.Clone()
		for _, m := range cp.Matches {
			if filter.Phase != nil && m.Phase != *filter.Phase {
				continue
			}
			if filter.Status != nil && m.Status != *filter.Status {
				continue
			}
			out = append(out, m)
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *matchRepository) ChampionshipIDOf(_ context.Context, matchID int) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.championships {
		if c.MatchByID(matchID) != nil {
			return c.ID, nil
		}
	}
	return 0, repositories.ErrMatchNotFound
}

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.users {
		if strings.EqualFold(other.Username, u.Username) {
			return repositories.ErrUserUsernameConflict
		}
		if strings.EqualFold(other.Email, u.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	r.s.lastUserID++
	u.ID = r.s.lastUserID
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(_ context.Context, usernameOrEmail string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, usernameOrEmail) || strings.EqualFold(u.Email, usernameOrEmail) {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
