package memory

import (
	"context"
	"sort"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

type disciplineRepository struct {
	s *Store
}

func (r *disciplineRepository) Create(_ context.Context, d *models.Discipline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.disciplineNameTaken(d.Name, 0) {
		return repositories.ErrDisciplineNameConflict
	}
	r.s.lastDisciplineID++
	d.ID = r.s.lastDisciplineID
	d.CreatedAt = r.s.now()
	r.s.disciplines[d.ID] = *d
	return nil
}

func (r *disciplineRepository) GetByID(_ context.Context, id int) (*models.Discipline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.disciplines[id]
	if !ok {
		return nil, repositories.ErrDisciplineNotFound
	}
	return &d, nil
}

func (r *disciplineRepository) GetAll(_ context.Context) ([]models.Discipline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Discipline, 0, len(r.s.disciplines))
	for _, d := range r.s.disciplines {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *disciplineRepository) Update(_ context.Context, d *models.Discipline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.disciplines[d.ID]
	if !ok {
		return repositories.ErrDisciplineNotFound
	}
	if r.s.disciplineNameTaken(d.Name, d.ID) {
		return repositories.ErrDisciplineNameConflict
	}
	d.CreatedAt = current.CreatedAt
	r.s.disciplines[d.ID] = *d
	return nil
}

func (r *disciplineRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.disciplines[id]; !ok {
		return repositories.ErrDisciplineNotFound
	}
	if r.s.disciplineReferenced(id) {
		return repositories.ErrDisciplineInUse
	}
	delete(r.s.disciplines, id)
	return nil
}

func (r *disciplineRepository) IsReferenced(_ context.Context, id int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.disciplineReferenced(id), nil
}

func (s *Store) disciplineNameTaken(name string, exceptID int) bool {
	for _, d := range s.disciplines {
		if d.Name == name && d.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) disciplineReferenced(id int) bool {
	for _, t := range s.teams {
		if t.DisciplineID == id {
			return true
		}
	}
	for _, c := range s.championships {
		if c.DisciplineID == id {
			return true
		}
	}
	return false
}

type teamRepository struct {
	s *Store
}

func (r *teamRepository) Create(_ context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.disciplines[t.DisciplineID]; !ok {
		return repositories.ErrTeamDisciplineInvalid
	}
	r.s.lastTeamID++
	t.ID = r.s.lastTeamID
	t.CreatedAt = r.s.now()
	r.s.teams[t.ID] = stripTeam(*t)
	return nil
}

func (r *teamRepository) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &t, nil
}

func (r *teamRepository) List(_ context.Context, filter repositories.TeamFilter) ([]models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var wanted map[int]bool
	if filter.IDs != nil {
		wanted = make(map[int]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = true
		}
	}

	out := make([]models.Team, 0)
	for _, t := range r.s.teams {
		if filter.DisciplineID != nil && t.DisciplineID != *filter.DisciplineID {
			continue
		}
		if wanted != nil && !wanted[t.ID] {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *teamRepository) Update(_ context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.teams[t.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if _, ok := r.s.disciplines[t.DisciplineID]; !ok {
		return repositories.ErrTeamDisciplineInvalid
	}
	t.CreatedAt = current.CreatedAt
	r.s.teams[t.ID] = stripTeam(*t)
	return nil
}

func (r *teamRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	if r.s.teamInActiveChampionship(id) {
		return repositories.ErrTeamInUse
	}

	for pid, p := range r.s.players {
		if p.TeamID == id {
			delete(r.s.players, pid)
		}
	}
	for _, c := range r.s.championships {
		if c.HasTeam(id) {
			c.TeamIDs = removeID(c.TeamIDs, id)
		}
		for i := range c.Groups {
			c.Groups[i].TeamIDs = removeID(c.Groups[i].TeamIDs, id)
		}
		for i := range c.Matches {
			m := &c.Matches[i]
			if m.HomeTeamID != nil && *m.HomeTeamID == id {
				m.HomeTeamID = nil
			}
			if m.AwayTeamID != nil && *m.AwayTeamID == id {
				m.AwayTeamID = nil
			}
		}
		if c.ChampionID != nil && *c.ChampionID == id {
			c.ChampionID = nil
		}
	}
	delete(r.s.teams, id)
	return nil
}

func (r *teamRepository) InActiveChampionship(_ context.Context, id int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.teamInActiveChampionship(id), nil
}

func (s *Store) teamInActiveChampionship(id int) bool {
	for _, c := range s.championships {
		if c.Status != models.StatusCompleted && c.HasTeam(id) {
			return true
		}
	}
	return false
}

// stripTeam drops the expanded relations, which are never stored.
func stripTeam(t models.Team) models.Team {
	t.Discipline = nil
	t.Players = nil
	return t
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type playerRepository struct {
	s *Store
}

func (r *playerRepository) Create(_ context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkPlayer(*p); err != nil {
		return err
	}
	r.s.lastPlayerID++
	p.ID = r.s.lastPlayerID
	p.CreatedAt = r.s.now()
	r.s.players[p.ID] = *p
	return nil
}

func (r *playerRepository) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *playerRepository) List(_ context.Context, filter repositories.PlayerFilter) ([]models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var wanted map[int]bool
	if filter.TeamIDs != nil {
		wanted = make(map[int]bool, len(filter.TeamIDs))
		for _, id := range filter.TeamIDs {
			wanted[id] = true
		}
	}

	out := make([]models.Player, 0)
	for _, p := range r.s.players {
		if wanted != nil && !wanted[p.TeamID] {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *playerRepository) Update(_ context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.players[p.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if err := r.s.checkPlayer(*p); err != nil {
		return err
	}
	p.CreatedAt = current.CreatedAt
	r.s.players[p.ID] = *p
	return nil
}

func (r *playerRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.s.players, id)
	return nil
}

func (s *Store) checkPlayer(p models.Player) error {
	if _, ok := s.teams[p.TeamID]; !ok {
		return repositories.ErrPlayerTeamInvalid
	}
	for _, other := range s.players {
		if other.ID != p.ID && other.TeamID == p.TeamID && other.Number == p.Number {
			return repositories.ErrPlayerNumberConflict
		}
	}
	return nil
}
