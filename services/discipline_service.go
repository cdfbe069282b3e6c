package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

var (
	ErrDisciplineNameRequired = errors.New("discipline name is required")
	ErrDisciplineImmutable    = errors.New("discipline cannot change once teams or championships reference it")
)

type DisciplineService interface {
	List(ctx context.Context) ([]models.Discipline, error)
	Get(ctx context.Context, id int) (*models.Discipline, error)
	Create(ctx context.Context, actor models.Actor, input DisciplineInput) (*models.Discipline, error)
	Update(ctx context.Context, actor models.Actor, id int, input DisciplineInput) (*models.Discipline, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type DisciplineInput struct {
	Name        string
	Description *string
}

type disciplineService struct {
	disciplineRepo repositories.DisciplineRepository
	logger         *slog.Logger
}

func NewDisciplineService(disciplineRepo repositories.DisciplineRepository, logger *slog.Logger) DisciplineService {
	return &disciplineService{
		disciplineRepo: disciplineRepo,
		logger:         loggerOrDiscard(logger),
	}
}

func (s *disciplineService) List(ctx context.Context) ([]models.Discipline, error) {
	disciplines, err := s.disciplineRepo.GetAll(ctx)
	if err != nil {
		return nil, repositoryError("failed to list disciplines", err)
	}
	if disciplines == nil {
		return []models.Discipline{}, nil
	}
	return disciplines, nil
}

func (s *disciplineService) Get(ctx context.Context, id int) (*models.Discipline, error) {
	d, err := s.disciplineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get discipline", err)
	}
	return d, nil
}

func (s *disciplineService) Create(ctx context.Context, actor models.Actor, input DisciplineInput) (*models.Discipline, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	d, err := normalizeDiscipline(input)
	if err != nil {
		return nil, err
	}

	if err := s.disciplineRepo.Create(ctx, d); err != nil {
		return nil, repositoryError("failed to create discipline", err)
	}
	s.logger.InfoContext(ctx, "discipline created", slog.Int("discipline_id", d.ID), slog.String("name", d.Name))
	return d, nil
}

func (s *disciplineService) Update(ctx context.Context, actor models.Actor, id int, input DisciplineInput) (*models.Discipline, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	d, err := normalizeDiscipline(input)
	if err != nil {
		return nil, err
	}
	d.ID = id

	current, err := s.disciplineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to get discipline", err)
	}
	if sameDiscipline(current, d) {
		return current, nil
	}

	referenced, err := s.disciplineRepo.IsReferenced(ctx, id)
	if err != nil {
		return nil, repositoryError("failed to check discipline references", err)
	}
	if referenced {
		return nil, conflictError("%s", ErrDisciplineImmutable)
	}

	if err := s.disciplineRepo.Update(ctx, d); err != nil {
		return nil, repositoryError("failed to update discipline", err)
	}
	return d, nil
}

func (s *disciplineService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.disciplineRepo.Delete(ctx, id); err != nil {
		return repositoryError("failed to delete discipline", err)
	}
	s.logger.InfoContext(ctx, "discipline deleted", slog.Int("discipline_id", id))
	return nil
}

func normalizeDiscipline(input DisciplineInput) (*models.Discipline, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("%s", ErrDisciplineNameRequired)
	}
	d := &models.Discipline{Name: name}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc != "" {
			d.Description = &desc
		}
	}
	return d, nil
}

func sameDiscipline(a, b *models.Discipline) bool {
	if a.Name != b.Name {
		return false
	}
	if a.Description == nil || b.Description == nil {
		return a.Description == nil && b.Description == nil
	}
	return *a.Description == *b.Description
}
