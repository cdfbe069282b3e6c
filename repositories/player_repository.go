package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerNumberConflict = errors.New("jersey number already taken in this team")
	ErrPlayerTeamInvalid    = errors.New("player team does not exist")
)

type PlayerFilter struct {
	TeamIDs []int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, filter PlayerFilter) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (name, team_id, number, position, age)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.Name, p.TeamID, p.Number, p.Position, p.Age).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return r.mapError(err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, name, team_id, number, position, age, created_at FROM players WHERE id = $1`

	var p models.Player
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.TeamID, &p.Number, &p.Position, &p.Age, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter PlayerFilter) ([]models.Player, error) {
	query := `SELECT id, name, team_id, number, position, age, created_at FROM players`
	var args []interface{}
	var conditions []string
	if filter.TeamIDs != nil {
		args = append(args, pq.Array(toInt64s(filter.TeamIDs)))
		conditions = append(conditions, fmt.Sprintf("team_id = ANY($%d)", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY team_id ASC, number ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.TeamID, &p.Number, &p.Position, &p.Age, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `UPDATE players SET name = $1, team_id = $2, number = $3, position = $4, age = $5 WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, p.Name, p.TeamID, p.Number, p.Position, p.Age, p.ID)
	if err != nil {
		return r.mapError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) mapError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok {
		switch {
		case code == pgUniqueViolation && constraint == "players_team_number_key":
			return ErrPlayerNumberConflict
		case code == pgForeignKeyViolation && constraint == "players_team_id_fkey":
			return ErrPlayerTeamInvalid
		}
	}
	return err
}
