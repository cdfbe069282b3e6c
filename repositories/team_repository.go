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
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamDisciplineInvalid = errors.New("team discipline does not exist")
	ErrTeamInUse             = errors.New("team is referenced by an active championship")
)

type TeamFilter struct {
	DisciplineID *int
	IDs          []int
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	// Delete removes the team with its players and strips it from completed
	// championships. It fails with ErrTeamInUse while an active championship lists it.
	Delete(ctx context.Context, id int) error
	// InActiveChampionship reports whether a non-completed championship lists the team.
	InActiveChampionship(ctx context.Context, id int) (bool, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, discipline_id, logo_key, logo_url, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (models.Team, error) {
	var t models.Team
	var logoKey, logoURL sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.DisciplineID, &logoKey, &logoURL, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.LogoKey = stringPtr(logoKey)
	t.LogoURL = stringPtr(logoURL)
	return t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (name, discipline_id, logo_key, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.DisciplineID, nullableString(t.LogoKey), nullableString(t.LogoURL)).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return r.mapError(err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, filter TeamFilter) ([]models.Team, error) {
	var conditions []string
	var args []interface{}

	if filter.DisciplineID != nil {
		args = append(args, *filter.DisciplineID)
		conditions = append(conditions, fmt.Sprintf("discipline_id = $%d", len(args)))
	}
	if filter.IDs != nil {
		args = append(args, pq.Array(toInt64s(filter.IDs)))
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	query := `SELECT ` + teamColumns + ` FROM teams`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	query := `UPDATE teams SET name = $1, discipline_id = $2, logo_key = $3, logo_url = $4 WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, t.Name, t.DisciplineID, nullableString(t.LogoKey), nullableString(t.LogoURL), t.ID)
	if err != nil {
		return r.mapError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// The row lock conflicts with the KEY SHARE lock a championship_teams
		// insert takes on the team, so no championship can enlist it until commit.
		var locked int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM teams WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock team %d: %w", id, err)
		}

		active, err := teamInActiveChampionship(ctx, tx, id)
		if err != nil {
			return err
		}
		if active {
			return ErrTeamInUse
		}
		// Group membership is stored as an array and has no foreign key to cascade.
		if _, err := tx.ExecContext(ctx, `UPDATE championship_groups SET team_ids = array_remove(team_ids, $1) WHERE $1 = ANY(team_ids)`, id); err != nil {
			return fmt.Errorf("failed to detach team %d from groups: %w", id, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrTeamNotFound)
	})
}

func (r *postgresTeamRepository) InActiveChampionship(ctx context.Context, id int) (bool, error) {
	return teamInActiveChampionship(ctx, r.db, id)
}

func teamInActiveChampionship(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM championship_teams ct
			JOIN championships c ON c.id = ct.championship_id
			WHERE ct.team_id = $1 AND c.status <> $2
		)`
	var active bool
	if err := exec.QueryRowContext(ctx, query, id, models.StatusCompleted).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

func (r *postgresTeamRepository) mapError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok && code == pgForeignKeyViolation && constraint == "teams_discipline_id_fkey" {
		return ErrTeamDisciplineInvalid
	}
	return err
}
