package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/storage"
)

var (
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrTeamDisciplineMissing = errors.New("team discipline does not exist")
	ErrTeamLocked            = errors.New("team discipline cannot change while the team plays an active championship")
	ErrLogoUploadDisabled    = errors.New("logo upload is not configured")
)

type TeamService interface {
	List(ctx context.Context, filter TeamListFilter) ([]models.Team, error)
	// Get returns the team with its discipline and players.
	Get(ctx context.Context, id int) (*models.Team, error)
	Create(ctx context.Context, actor models.Actor, input CreateTeamInput) (*models.Team, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Team, error)
}

type TeamListFilter struct {
	DisciplineID *int
}

type CreateTeamInput struct {
	Name         string
	DisciplineID int
	LogoURL      *string
}

// UpdateTeamInput is partial: nil fields keep their current value.
type UpdateTeamInput struct {
	Name         *string
	DisciplineID *int
	LogoURL      *string
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	disciplineRepo repositories.DisciplineRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

// NewTeamService accepts a nil uploader; logo upload is then disabled.
func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	disciplineRepo repositories.DisciplineRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		disciplineRepo: disciplineRepo,
		uploader:       uploader,
		logger:         loggerOrDiscard(logger),
		now:            time.Now,
	}
}

func (s *teamService) List(ctx context.Context, filter TeamListFilter) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{DisciplineID: filter.DisciplineID})
	if err != nil {
		return nil, repositoryError("failed to list teams", err)
	}
	for i := range teams {
		populateTeamLogoURLFunc(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) Get(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get team", err)
	}
	populateTeamLogoURLFunc(team, s.uploader)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		discipline, err := s.disciplineRepo.GetByID(gCtx, team.DisciplineID)
		if err != nil {
			if errors.Is(err, repositories.ErrDisciplineNotFound) {
				s.logger.WarnContext(gCtx, "team references a missing discipline", slog.Int("team_id", id), slog.Int("discipline_id", team.DisciplineID))
				return nil
			}
			return fmt.Errorf("failed to load discipline %d: %w", team.DisciplineID, err)
		}
		team.Discipline = discipline
		return nil
	})

	g.Go(func() error {
		players, err := s.playerRepo.List(gCtx, repositories.PlayerFilter{TeamIDs: []int{id}})
		if err != nil {
			return fmt.Errorf("failed to load players of team %d: %w", id, err)
		}
		team.Players = players
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) Create(ctx context.Context, actor models.Actor, input CreateTeamInput) (*models.Team, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("%s", ErrTeamNameRequired)
	}
	if err := s.checkDiscipline(ctx, input.DisciplineID); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:         name,
		DisciplineID: input.DisciplineID,
		LogoURL:      trimmedOrNil(input.LogoURL),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, repositoryError("failed to create team", err)
	}
	s.logger.InfoContext(ctx, "team created", slog.Int("team_id", team.ID), slog.Int("discipline_id", team.DisciplineID))
	return team, nil
}

func (s *teamService) Update(ctx context.Context, actor models.Actor, id int, input UpdateTeamInput) (*models.Team, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get team", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("%s", ErrTeamNameRequired)
		}
		team.Name = name
	}
	if input.DisciplineID != nil && *input.DisciplineID != team.DisciplineID {
		if err := s.checkDiscipline(ctx, *input.DisciplineID); err != nil {
			return nil, err
		}
		active, err := s.teamRepo.InActiveChampionship(ctx, id)
		if err != nil {
			return nil, repositoryError("failed to check team championships", err)
		}
		if active {
			return nil, conflictError("%s", ErrTeamLocked)
		}
		team.DisciplineID = *input.DisciplineID
	}
	if input.LogoURL != nil {
		// An explicit external link replaces any uploaded logo reference.
		team.LogoURL = trimmedOrNil(input.LogoURL)
		team.LogoKey = nil
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, repositoryError("failed to update team", err)
	}
	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return repositoryError("failed to get team", err)
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamInUse) {
			return conflictError("team %d is part of a championship that is not completed", id)
		}
		return repositoryError("failed to delete team", err)
	}
	if team.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete team logo", slog.Int("team_id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "team deleted", slog.Int("team_id", id))
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, actor models.Actor, id int, contentType string, file io.Reader) (*models.Team, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, invalidStateError("%s", ErrLogoUploadDisabled)
	}
	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, validationError("%s", err)
	}
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get team", err)
	}

	key := storage.TeamLogoKey(id, s.now().UnixNano(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", id, err)
	}

	previous := team.LogoKey
	team.LogoKey = &result.Key
	team.LogoURL = &result.Location
	if err := s.teamRepo.Update(ctx, team); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned logo", slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, repositoryError("failed to save team logo", err)
	}
	if previous != nil && *previous != result.Key {
		if err := s.uploader.Delete(ctx, *previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous logo", slog.String("key", *previous), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "team logo uploaded", slog.Int("team_id", id), slog.String("key", result.Key))
	return team, nil
}

func (s *teamService) checkDiscipline(ctx context.Context, disciplineID int) error {
	if disciplineID <= 0 {
		return validationError("discipline is required")
	}
	if _, err := s.disciplineRepo.GetByID(ctx, disciplineID); err != nil {
		if errors.Is(err, repositories.ErrDisciplineNotFound) {
			return validationError("%s: %d", ErrTeamDisciplineMissing, disciplineID)
		}
		return fmt.Errorf("failed to check discipline %d: %w", disciplineID, err)
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
