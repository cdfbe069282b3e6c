package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

var ErrPlayerNameRequired = errors.New("player name is required")

type PlayerService interface {
	List(ctx context.Context, filter PlayerListFilter) ([]models.Player, error)
	Get(ctx context.Context, id int) (*models.Player, error)
	Create(ctx context.Context, actor models.Actor, input CreatePlayerInput) (*models.Player, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdatePlayerInput) (*models.Player, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type PlayerListFilter struct {
	TeamID *int
}

type CreatePlayerInput struct {
	Name     string
	TeamID   int
	Number   int
	Position string
	Age      int
}

type UpdatePlayerInput struct {
	Name     *string
	TeamID   *int
	Number   *int
	Position *string
	Age      *int
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, teamRepo repositories.TeamRepository, logger *slog.Logger) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		logger:     loggerOrDiscard(logger),
	}
}

func (s *playerService) List(ctx context.Context, filter PlayerListFilter) ([]models.Player, error) {
	var repoFilter repositories.PlayerFilter
	if filter.TeamID != nil {
		repoFilter.TeamIDs = []int{*filter.TeamID}
	}
	players, err := s.playerRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, repositoryError("failed to list players", err)
	}
	return players, nil
}

func (s *playerService) Get(ctx context.Context, id int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get player", err)
	}
	return p, nil
}

func (s *playerService) Create(ctx context.Context, actor models.Actor, input CreatePlayerInput) (*models.Player, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	p := &models.Player{
		Name:     strings.TrimSpace(input.Name),
		TeamID:   input.TeamID,
		Number:   input.Number,
		Position: strings.TrimSpace(input.Position),
		Age:      input.Age,
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Create(ctx, p); err != nil {
		return nil, playerRepositoryError("failed to create player", p, err)
	}
	s.logger.InfoContext(ctx, "player created", slog.Int("player_id", p.ID), slog.Int("team_id", p.TeamID))
	return p, nil
}

func (s *playerService) Update(ctx context.Context, actor models.Actor, id int, input UpdatePlayerInput) (*models.Player, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get player", err)
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.TeamID != nil {
		p.TeamID = *input.TeamID
	}
	if input.Number != nil {
		p.Number = *input.Number
	}
	if input.Position != nil {
		p.Position = strings.TrimSpace(*input.Position)
	}
	if input.Age != nil {
		p.Age = *input.Age
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Update(ctx, p); err != nil {
		return nil, playerRepositoryError("failed to update player", p, err)
	}
	return p, nil
}

func (s *playerService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return repositoryError("failed to delete player", err)
	}
	return nil
}

func (s *playerService) validate(ctx context.Context, p *models.Player) error {
	if p.Name == "" {
		return validationError("%s", ErrPlayerNameRequired)
	}
	if p.Number < 0 {
		return validationError("jersey number must not be negative")
	}
	if p.Age < 0 {
		return validationError("age must not be negative")
	}
	if p.TeamID <= 0 {
		return validationError("team is required")
	}
	if _, err := s.teamRepo.GetByID(ctx, p.TeamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return validationError("team %d does not exist", p.TeamID)
		}
		return fmt.Errorf("failed to check team %d: %w", p.TeamID, err)
	}
	return nil
}

func playerRepositoryError(op string, p *models.Player, err error) error {
	if errors.Is(err, repositories.ErrPlayerNumberConflict) {
		return conflictError("jersey number %d is already taken in team %d", p.Number, p.TeamID)
	}
	return repositoryError(op, err)
}
