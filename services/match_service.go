package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/storage"
)

type MatchService interface {
	List(ctx context.Context, filter MatchListFilter) ([]MatchView, error)
	// SubmitResult records a score. Once a group match is played the standings
	// of its group change on the next read.
	SubmitResult(ctx context.Context, actor models.Actor, matchID, homeScore, awayScore int) (*MatchView, error)
}

type MatchListFilter struct {
	ChampionshipID *int
	Phase          *models.MatchPhase
	Status         *models.MatchStatus
}

type matchService struct {
	matchRepo        repositories.MatchRepository
	championshipRepo repositories.ChampionshipRepository
	teamRepo         repositories.TeamRepository
	uploader         storage.FileUploader
	publisher        EventPublisher
	logger           *slog.Logger
	now              func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	championshipRepo repositories.ChampionshipRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	publisher EventPublisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:        matchRepo,
		championshipRepo: championshipRepo,
		teamRepo:         teamRepo,
		uploader:         uploader,
		publisher:        publisher,
		logger:           loggerOrDiscard(logger),
		now:              time.Now,
	}
}

func (s *matchService) List(ctx context.Context, filter MatchListFilter) ([]MatchView, error) {
	if filter.Phase != nil && *filter.Phase != models.PhaseGroup && *filter.Phase != models.PhaseKnockout {
		return nil, validationError("unknown match phase %q", *filter.Phase)
	}
	if filter.Status != nil && *filter.Status != models.MatchPending && *filter.Status != models.MatchPlayed {
		return nil, validationError("unknown match status %q", *filter.Status)
	}

	matches, err := s.matchRepo.List(ctx, repositories.MatchFilter{
		ChampionshipID: filter.ChampionshipID,
		Phase:          filter.Phase,
		Status:         filter.Status,
	})
	if err != nil {
		return nil, repositoryError("failed to list matches", err)
	}
	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, matchTeamIDs(matches))
	if err != nil {
		return nil, err
	}
	return dir.matchViews(matches), nil
}

func (s *matchService) SubmitResult(ctx context.Context, actor models.Actor, matchID, homeScore, awayScore int) (*MatchView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if homeScore < 0 || awayScore < 0 {
		return nil, engineError(brackets.ErrNegativeScore)
	}

	championshipID, err := s.matchRepo.ChampionshipIDOf(ctx, matchID)
	if err != nil {
		return nil, repositoryError("failed to find match", err)
	}
	current, err := s.championshipRepo.GetByID(ctx, championshipID)
	if err != nil {
		return nil, repositoryError("failed to get championship", err)
	}
	dir, err := loadTeamDirectory(ctx, s.teamRepo, s.uploader, append(append([]int{}, current.TeamIDs...), matchTeamIDs(current.Matches)...))
	if err != nil {
		return nil, err
	}

	updated, err := s.championshipRepo.Mutate(ctx, championshipID, func(c *models.Championship) error {
		_, err := brackets.RecordResult(c, matchID, homeScore, awayScore, s.now())
		return engineError(err)
	})
	if err != nil {
		return nil, repositoryError("failed to record result", err)
	}

	m := updated.MatchByID(matchID)
	if m == nil {
		return nil, engineError(brackets.ErrMatchNotFound)
	}
	view := dir.matchView(*m)

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("championship_id", championshipID),
		slog.Int("match_id", matchID),
		slog.Int("home_score", homeScore),
		slog.Int("away_score", awayScore),
	)

	publish(s.publisher, championshipID, brackets.EventMatchUpdated, view)
	publish(s.publisher, championshipID, brackets.EventChampionshipUpdated, dir.championshipView(updated))
	return &view, nil
}
