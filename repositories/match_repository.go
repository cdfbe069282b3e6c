package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leonelm2/PotreroMobile/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchFilter struct {
	ChampionshipID *int
	Phase          *models.MatchPhase
	Status         *models.MatchStatus
}

// MatchRepository is the read side of matches. Writes go through
// ChampionshipRepository.Mutate since a championship owns its matches.
type MatchRepository interface {
	List(ctx context.Context, filter MatchFilter) ([]models.Match, error)
	// ChampionshipIDOf returns the championship that owns the match.
	ChampionshipIDOf(ctx context.Context, matchID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	return listMatches(ctx, r.db, filter)
}

func (r *postgresMatchRepository) ChampionshipIDOf(ctx context.Context, matchID int) (int, error) {
	var championshipID int
	err := r.db.QueryRowContext(ctx, `SELECT championship_id FROM matches WHERE id = $1`, matchID).Scan(&championshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMatchNotFound
		}
		return 0, err
	}
	return championshipID, nil
}

const matchColumns = `id, championship_id, phase, group_name, round, match_order,
	home_team_id, away_team_id, home_score, away_score, status, played_at`

func listMatches(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]models.Match, error) {
	var conditions []string
	var args []interface{}

	if filter.ChampionshipID != nil {
		args = append(args, *filter.ChampionshipID)
		conditions = append(conditions, fmt.Sprintf("championship_id = $%d", len(args)))
	}
	if filter.Phase != nil {
		args = append(args, *filter.Phase)
		conditions = append(conditions, fmt.Sprintf("phase = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// Group matches first, then knockout rounds from quarterfinal to final.
	query += `
		ORDER BY championship_id,
		         CASE phase WHEN 'group' THEN 0 ELSE 1 END,
		         CASE round WHEN 'quarterfinal' THEN 1 WHEN 'semifinal' THEN 2 WHEN 'final' THEN 3 ELSE 0 END,
		         group_name NULLS LAST, match_order, id`

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func scanMatch(row interface{ Scan(...interface{}) error }) (models.Match, error) {
	var m models.Match
	var groupName, round sql.NullString
	var home, away, homeScore, awayScore sql.NullInt64
	var playedAt sql.NullTime

	err := row.Scan(&m.ID, &m.ChampionshipID, &m.Phase, &groupName, &round, &m.Order,
		&home, &away, &homeScore, &awayScore, &m.Status, &playedAt)
	if err != nil {
		return m, err
	}

	m.GroupName = stringPtr(groupName)
	if round.Valid {
		r := models.KnockoutRound(round.String)
		m.Round = &r
	}
	m.HomeTeamID = intPtr(home)
	m.AwayTeamID = intPtr(away)
	m.HomeScore = intPtr(homeScore)
	m.AwayScore = intPtr(awayScore)
	if playedAt.Valid {
		t := playedAt.Time
		m.PlayedAt = &t
	}
	return m, nil
}

func insertMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (championship_id, phase, group_name, round, match_order,
		                     home_team_id, away_team_id, home_score, away_score, status, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := exec.QueryRowContext(ctx, query, matchArgs(m)...).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func updateMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET championship_id = $1, phase = $2, group_name = $3, round = $4, match_order = $5,
		    home_team_id = $6, away_team_id = $7, home_score = $8, away_score = $9, status = $10, played_at = $11
		WHERE id = $12`
	result, err := exec.ExecContext(ctx, query, append(matchArgs(m), m.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func matchArgs(m *models.Match) []interface{} {
	var round sql.NullString
	if m.Round != nil {
		round = sql.NullString{String: string(*m.Round), Valid: true}
	}
	var playedAt sql.NullTime
	if m.PlayedAt != nil {
		playedAt = sql.NullTime{Time: m.PlayedAt.UTC().Truncate(time.Microsecond), Valid: true}
	}
	return []interface{}{
		m.ChampionshipID, m.Phase, nullableString(m.GroupName), round, m.Order,
		nullableInt(m.HomeTeamID), nullableInt(m.AwayTeamID),
		nullableInt(m.HomeScore), nullableInt(m.AwayScore),
		m.Status, playedAt,
	}
}
