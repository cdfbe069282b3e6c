package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/storage"
)

var (
	ErrChampionshipNameRequired = errors.New("championship name is required")
	ErrChampionshipLocked       = errors.New("teams, discipline, group count and qualifiers can only change while the championship is a draft")
	ErrManualStatus             = errors.New("only the completed status can be set manually")
)

type ChampionshipService interface {
	List(ctx context.Context) ([]models.Championship, error)
	Get(ctx context.Context, id int) (*ChampionshipView, error)
	Create(ctx context.Context, actor models.Actor, input CreateChampionshipInput) (*ChampionshipView, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateChampionshipInput) (*ChampionshipView, error)
	SetStatus(ctx context.Context, actor models.Actor, id int, status models.ChampionshipStatus) (*ChampionshipView, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	// Teams returns the registered teams with their players, in registration order.
	Teams(ctx context.Context, id int) ([]models.Team, error)

	GenerateGroups(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error)
	GenerateBracket(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error)
	AdvanceKnockout(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error)
	Standings(ctx context.Context, id int) ([]models.GroupStandings, error)
	// Bracket returns the knockout matches ordered by round and bracket position.
	Bracket(ctx context.Context, id int) ([]MatchView, error)
}

type CreateChampionshipInput struct {
	Name               string
	DisciplineID       int
	TeamIDs            []int
	GroupCount         int
	QualifiersPerGroup int
}

// UpdateChampionshipInput is partial. A nil TeamIDs keeps the current teams,
// a non-nil empty slice removes them all.
type UpdateChampionshipInput struct {
	Name               *string
	DisciplineID       *int
	TeamIDs            []int
	GroupCount         *int
	QualifiersPerGroup *int
	Status             *models.ChampionshipStatus
}

func (in UpdateChampionshipInput) structural() bool {
	return in.DisciplineID != nil || in.TeamIDs != nil || in.GroupCount != nil || in.QualifiersPerGroup != nil
}

type championshipService struct {
	championshipRepo repositories.ChampionshipRepository
	teamRepo         repositories.TeamRepository
	playerRepo       repositories.PlayerRepository
	disciplineRepo   repositories.DisciplineRepository
	uploader         storage.FileUploader
	publisher        EventPublisher
	logger           *slog.Logger
}

func NewChampionshipService(
	championshipRepo repositories.ChampionshipRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	disciplineRepo repositories.DisciplineRepository,
	uploader storage.FileUploader,
	publisher EventPublisher,
	logger *slog.Logger,
) ChampionshipService {
	return &championshipService{
		championshipRepo: championshipRepo,
		teamRepo:         teamRepo,
		playerRepo:       playerRepo,
		disciplineRepo:   disciplineRepo,
		uploader:         uploader,
		publisher:        publisher,
		logger:           loggerOrDiscard(logger),
	}
}

func (s *championshipService) List(ctx context.Context) ([]models.Championship, error) {
	championships, err := s.championshipRepo.GetAll(ctx)
	if err != nil {
		return nil, repositoryError("failed to list championships", err)
	}
	return championships, nil
}

func (s *championshipService) Get(ctx context.Context, id int) (*ChampionshipView, error) {
	c, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	return s.view(ctx, c)
}

func (s *championshipService) Create(ctx context.Context, actor models.Actor, input CreateChampionshipInput) (*ChampionshipView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("%s", ErrChampionshipNameRequired)
	}
	if err := checkStageSettings(input.GroupCount, input.QualifiersPerGroup); err != nil {
		return nil, err
	}
	if err := s.checkDiscipline(ctx, input.DisciplineID); err != nil {
		return nil, err
	}
	teamIDs := input.TeamIDs
	if teamIDs == nil {
		teamIDs = []int{}
	}
	if err := s.checkTeams(ctx, input.DisciplineID, teamIDs); err != nil {
		return nil, err
	}

	c := &models.Championship{
		Name:               name,
		DisciplineID:       input.DisciplineID,
		TeamIDs:            teamIDs,
		GroupCount:         input.GroupCount,
		QualifiersPerGroup: input.QualifiersPerGroup,
		Status:             models.StatusDraft,
	}
	if err := s.championshipRepo.Create(ctx, c); err != nil {
		return nil, repositoryError("failed to create championship", err)
	}
	s.logger.InfoContext(ctx, "championship created",
		slog.Int("championship_id", c.ID),
		slog.Int("teams", len(c.TeamIDs)),
		slog.Int("group_count", c.GroupCount),
	)
	return s.view(ctx, c)
}

func (s *championshipService) Update(ctx context.Context, actor models.Actor, id int, input UpdateChampionshipInput) (*ChampionshipView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}

	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("%s", ErrChampionshipNameRequired)
		}
	}
	if input.Status != nil {
		if err := checkManualStatus(*input.Status); err != nil {
			return nil, err
		}
	}

	disciplineID, teamIDs := current.DisciplineID, current.TeamIDs
	groupCount, qualifiers := current.GroupCount, current.QualifiersPerGroup
	if input.DisciplineID != nil {
		disciplineID = *input.DisciplineID
	}
	if input.TeamIDs != nil {
		teamIDs = input.TeamIDs
	}
	if input.GroupCount != nil {
		groupCount = *input.GroupCount
	}
	if input.QualifiersPerGroup != nil {
		qualifiers = *input.QualifiersPerGroup
	}

	if input.structural() {
		if current.Status != models.StatusDraft {
			return nil, invalidStateError("%s (status is %s)", ErrChampionshipLocked, current.Status)
		}
		if err := checkStageSettings(groupCount, qualifiers); err != nil {
			return nil, err
		}
		if disciplineID != current.DisciplineID {
			if err := s.checkDiscipline(ctx, disciplineID); err != nil {
				return nil, err
			}
		}
		if err := s.checkTeams(ctx, disciplineID, teamIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.championshipRepo.Mutate(ctx, id, func(c *models.Championship) error {
		if input.structural() {
			// Re-checked under the lock: a concurrent generation may have run.
			if c.Status != models.StatusDraft {
				return invalidStateError("%s (status is %s)", ErrChampionshipLocked, c.Status)
			}
			c.DisciplineID = disciplineID
			c.TeamIDs = append([]int{}, teamIDs...)
			c.GroupCount = groupCount
			c.QualifiersPerGroup = qualifiers
		}
		if input.Name != nil {
			c.Name = name
		}
		if input.Status != nil {
			brackets.Finalize(c)
		}
		return nil
	})
	if err != nil {
		return nil, repositoryError("failed to update championship", err)
	}

	s.logger.InfoContext(ctx, "championship updated", slog.Int("championship_id", id), slog.String("status", string(updated.Status)))
	return s.viewAndPublish(ctx, updated)
}

func (s *championshipService) SetStatus(ctx context.Context, actor models.Actor, id int, status models.ChampionshipStatus) (*ChampionshipView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := checkManualStatus(status); err != nil {
		return nil, err
	}
	updated, err := s.championshipRepo.Mutate(ctx, id, func(c *models.Championship) error {
		brackets.Finalize(c)
		return nil
	})
	if err != nil {
		return nil, repositoryError("failed to set championship status", err)
	}
	s.logger.InfoContext(ctx, "championship status set", slog.Int("championship_id", id), slog.String("status", string(updated.Status)))
	return s.viewAndPublish(ctx, updated)
}

func (s *championshipService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.championshipRepo.Delete(ctx, id); err != nil {
		return repositoryError("failed to delete championship", err)
	}
	s.logger.InfoContext(ctx, "championship deleted", slog.Int("championship_id", id))
	return nil
}

func (s *championshipService) Teams(ctx context.Context, id int) ([]models.Team, error) {
	c, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	if len(c.TeamIDs) == 0 {
		return []models.Team{}, nil
	}

	var (
		teams   []models.Team
		players []models.Player
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gCtx, repositories.TeamFilter{IDs: c.TeamIDs})
		if err != nil {
			return fmt.Errorf("failed to load championship teams: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gCtx, repositories.PlayerFilter{TeamIDs: c.TeamIDs})
		if err != nil {
			return fmt.Errorf("failed to load championship players: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Team, len(teams))
	for i := range teams {
		teams[i].Players = []models.Player{}
		populateTeamLogoURLFunc(&teams[i], s.uploader)
		byID[teams[i].ID] = &teams[i]
	}
	for _, p := range players {
		if t, ok := byID[p.TeamID]; ok {
			t.Players = append(t.Players, p)
		}
	}

	out := make([]models.Team, 0, len(c.TeamIDs))
	for _, teamID := range c.TeamIDs {
		if t, ok := byID[teamID]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *championshipService) GenerateGroups(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error) {
	return s.runStage(ctx, actor, id, "groups generated", func(c *models.Championship, _ map[int]string) error {
		return brackets.GenerateGroupStage(ctx, c)
	})
}

func (s *championshipService) GenerateBracket(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error) {
	return s.runStage(ctx, actor, id, "bracket generated", func(c *models.Championship, names map[int]string) error {
		return brackets.GenerateKnockout(ctx, c, names)
	})
}

func (s *championshipService) AdvanceKnockout(ctx context.Context, actor models.Actor, id int) (*ChampionshipView, error) {
	return s.runStage(ctx, actor, id, "knockout advanced", func(c *models.Championship, _ map[int]string) error {
		return brackets.AdvanceKnockout(ctx, c)
	})
}

// runStage applies an engine transition under the championship lock.
// Team names are resolved before locking: the tie-break on name needs them.
func (s *championshipService) runStage(ctx context.Context, actor models.Actor, id int, event string, stage func(c *models.Championship, names map[int]string) error) (*ChampionshipView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, current.TeamIDs)
	if err != nil {
		return nil, err
	}
	names := dir.names()

	updated, err := s.championshipRepo.Mutate(ctx, id, func(c *models.Championship) error {
		return engineError(stage(c, names))
	})
	if err != nil {
		return nil, repositoryError("failed to update championship", err)
	}

	round, _ := brackets.CurrentRound(updated)
	s.logger.InfoContext(ctx, event,
		slog.Int("championship_id", id),
		slog.String("status", string(updated.Status)),
		slog.String("round", string(round)),
		slog.Int("matches", len(updated.Matches)),
	)

	view := dir.championshipView(updated)
	publish(s.publisher, id, brackets.EventChampionshipUpdated, view)
	return view, nil
}

func (s *championshipService) Standings(ctx context.Context, id int) ([]models.GroupStandings, error) {
	c, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, c.TeamIDs)
	if err != nil {
		return nil, err
	}
	return brackets.ChampionshipStandings(c, dir.names()), nil
}

func (s *championshipService) Bracket(ctx context.Context, id int) ([]MatchView, error) {
	c, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	matches := c.MatchesInPhase(models.PhaseKnockout)
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := matches[i].Round.Rank(), matches[j].Round.Rank()
		if ri != rj {
			return ri < rj
		}
		return matches[i].Order < matches[j].Order
	})

	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, matchTeamIDs(matches))
	if err != nil {
		return nil, err
	}
	return dir.matchViews(matches), nil
}

func (s *championshipService) view(ctx context.Context, c *models.Championship) (*ChampionshipView, error) {
	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, append(append([]int{}, c.TeamIDs...), matchTeamIDs(c.Matches)...))
	if err != nil {
		return nil, err
	}
	return dir.championshipView(c), nil
}

func (s *championshipService) viewAndPublish(ctx context.Context, c *models.Championship) (*ChampionshipView, error) {
	view, err := s.view(ctx, c)
	if err != nil {
		return nil, err
	}
	publish(s.publisher, c.ID, brackets.EventChampionshipUpdated, view)
	return view, nil
}

func (s *championshipService) checkDiscipline(ctx context.Context, disciplineID int) error {
	if disciplineID <= 0 {
		return validationError("discipline is required")
	}
	if _, err := s.disciplineRepo.GetByID(ctx, disciplineID); err != nil {
		if errors.Is(err, repositories.ErrDisciplineNotFound) {
			return validationError("discipline %d does not exist", disciplineID)
		}
		return fmt.Errorf("failed to check discipline %d: %w", disciplineID, err)
	}
	return nil
}

// checkTeams requires unique, existing teams of the championship discipline.
func (s *championshipService) checkTeams(ctx context.Context, disciplineID int, ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return validationError("team %d is listed more than once", id)
		}
		seen[id] = true
	}
	if len(ids) == 0 {
		return nil
	}

	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{IDs: ids})
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	found := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		found[t.ID] = t
	}
	for _, id := range ids {
		t, ok := found[id]
		if !ok {
			return validationError("team %d does not exist", id)
		}
		if t.DisciplineID != disciplineID {
			return validationError("team %d does not belong to discipline %d", id, disciplineID)
		}
	}
	return nil
}

func checkStageSettings(groupCount, qualifiers int) error {
	if groupCount < 1 {
		return engineError(brackets.ErrInvalidGroupCount)
	}
	if qualifiers < 1 {
		return engineError(brackets.ErrInvalidQualifiers)
	}
	return nil
}

func checkManualStatus(status models.ChampionshipStatus) error {
	if !status.Valid() {
		return validationError("unknown championship status %q", status)
	}
	if status != models.StatusCompleted {
		return validationError("%s", ErrManualStatus)
	}
	return nil
}
