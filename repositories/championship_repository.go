package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/lib/pq"
)

var (
	ErrChampionshipNotFound    = errors.New("championship not found")
	ErrChampionshipTeamInvalid = errors.New("championship references a team that does not exist")
)

// MutateFunc changes a championship aggregate in place. Returning an error
// discards every change.
type MutateFunc func(c *models.Championship) error

type ChampionshipRepository interface {
	Create(ctx context.Context, c *models.Championship) error
	// GetByID loads the full aggregate: teams, groups and matches.
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	// GetAll loads championships with teams and groups but without matches.
	GetAll(ctx context.Context) ([]models.Championship, error)
	Delete(ctx context.Context, id int) error
	// Mutate locks the championship, applies fn and persists the result
	// atomically. Concurrent mutations of the same championship are serialized.
	Mutate(ctx context.Context, id int, fn MutateFunc) (*models.Championship, error)
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

func (r *postgresChampionshipRepository) Create(ctx context.Context, c *models.Championship) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO championships (name, discipline_id, group_count, qualifiers_per_group, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, c.Name, c.DisciplineID, c.GroupCount, c.QualifiersPerGroup, c.Status).
			Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return r.mapError(err)
		}
		return r.replaceTeams(ctx, tx, c.ID, c.TeamIDs)
	})
}

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	return r.load(ctx, r.db, id, false)
}

func (r *postgresChampionshipRepository) GetAll(ctx context.Context) ([]models.Championship, error) {
	query := `
		SELECT id, name, discipline_id, group_count, qualifiers_per_group, status, champion_id, created_at, updated_at
		FROM championships
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	championships := make([]models.Championship, 0)
	index := make(map[int]int)
	for rows.Next() {
		c, err := scanChampionship(rows)
		if err != nil {
			return nil, err
		}
		c.TeamIDs = []int{}
		c.Groups = []models.Group{}
		index[c.ID] = len(championships)
		championships = append(championships, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(championships) == 0 {
		return championships, nil
	}

	teamRows, err := r.db.QueryContext(ctx, `SELECT championship_id, team_id FROM championship_teams ORDER BY championship_id, position`)
	if err != nil {
		return nil, err
	}
	defer teamRows.Close()
	for teamRows.Next() {
		var championshipID, teamID int
		if err := teamRows.Scan(&championshipID, &teamID); err != nil {
			return nil, err
		}
		if i, ok := index[championshipID]; ok {
			championships[i].TeamIDs = append(championships[i].TeamIDs, teamID)
		}
	}
	if err = teamRows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := r.db.QueryContext(ctx, `SELECT championship_id, name, team_ids FROM championship_groups ORDER BY championship_id, position`)
	if err != nil {
		return nil, err
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var championshipID int
		var g models.Group
		var ids pq.Int64Array
		if err := groupRows.Scan(&championshipID, &g.Name, &ids); err != nil {
			return nil, err
		}
		g.TeamIDs = fromInt64s(ids)
		if i, ok := index[championshipID]; ok {
			championships[i].Groups = append(championships[i].Groups, g)
		}
	}
	if err = groupRows.Err(); err != nil {
		return nil, err
	}

	return championships, nil
}

func (r *postgresChampionshipRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM championships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) Mutate(ctx context.Context, id int, fn MutateFunc) (*models.Championship, error) {
	var out *models.Championship
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		c, err := r.load(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := r.save(ctx, tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresChampionshipRepository) load(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Championship, error) {
	query := `
		SELECT id, name, discipline_id, group_count, qualifiers_per_group, status, champion_id, created_at, updated_at
		FROM championships
		WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	c, err := scanChampionship(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}

	if c.TeamIDs, err = r.loadTeamIDs(ctx, exec, id); err != nil {
		return nil, err
	}
	if c.Groups, err = r.loadGroups(ctx, exec, id); err != nil {
		return nil, err
	}
	if c.Matches, err = listMatches(ctx, exec, MatchFilter{ChampionshipID: &id}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresChampionshipRepository) loadTeamIDs(ctx context.Context, exec SQLExecutor, id int) ([]int, error) {
	rows, err := exec.QueryContext(ctx, `SELECT team_id FROM championship_teams WHERE championship_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var teamID int
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		ids = append(ids, teamID)
	}
	return ids, rows.Err()
}

func (r *postgresChampionshipRepository) loadGroups(ctx context.Context, exec SQLExecutor, id int) ([]models.Group, error) {
	rows, err := exec.QueryContext(ctx, `SELECT name, team_ids FROM championship_groups WHERE championship_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		var ids pq.Int64Array
		if err := rows.Scan(&g.Name, &ids); err != nil {
			return nil, err
		}
		g.TeamIDs = fromInt64s(ids)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// save writes the aggregate back. Matches keep their ids; new matches (id 0)
// are inserted and get their id assigned; matches no longer present are deleted.
func (r *postgresChampionshipRepository) save(ctx context.Context, tx *sql.Tx, c *models.Championship) error {
	query := `
		UPDATE championships
		SET name = $1, discipline_id = $2, group_count = $3, qualifiers_per_group = $4,
		    status = $5, champion_id = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`
	err := tx.QueryRowContext(ctx, query, c.Name, c.DisciplineID, c.GroupCount, c.QualifiersPerGroup,
		c.Status, nullableInt(c.ChampionID), c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		return r.mapError(err)
	}

	if err := r.replaceTeams(ctx, tx, c.ID, c.TeamIDs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM championship_groups WHERE championship_id = $1`, c.ID); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}
	for i, g := range c.Groups {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO championship_groups (championship_id, position, name, team_ids) VALUES ($1, $2, $3, $4)`,
			c.ID, i, g.Name, pq.Int64Array(toInt64s(g.TeamIDs)))
		if err != nil {
			return fmt.Errorf("failed to insert group %s: %w", g.Name, err)
		}
	}

	keep := make([]int64, 0, len(c.Matches))
	for _, m := range c.Matches {
		if m.ID > 0 {
			keep = append(keep, int64(m.ID))
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE championship_id = $1 AND NOT (id = ANY($2))`, c.ID, pq.Int64Array(keep)); err != nil {
		return fmt.Errorf("failed to delete replaced matches: %w", err)
	}

	for i := range c.Matches {
		m := &c.Matches[i]
		m.ChampionshipID = c.ID
		if m.ID > 0 {
			if err := updateMatch(ctx, tx, m); err != nil {
				return err
			}
			continue
		}
		if err := insertMatch(ctx, tx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresChampionshipRepository) replaceTeams(ctx context.Context, tx *sql.Tx, championshipID int, teamIDs []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM championship_teams WHERE championship_id = $1`, championshipID); err != nil {
		return fmt.Errorf("failed to clear championship teams: %w", err)
	}
	for i, teamID := range teamIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO championship_teams (championship_id, team_id, position) VALUES ($1, $2, $3)`,
			championshipID, teamID, i)
		if err != nil {
			return r.mapError(err)
		}
	}
	return nil
}

func (r *postgresChampionshipRepository) mapError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok && code == pgForeignKeyViolation {
		switch constraint {
		case "championship_teams_team_id_fkey", "championships_champion_id_fkey":
			return ErrChampionshipTeamInvalid
		case "championships_discipline_id_fkey":
			return ErrDisciplineNotFound
		}
	}
	return err
}

func scanChampionship(row interface{ Scan(...interface{}) error }) (models.Championship, error) {
	var c models.Championship
	var champion sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &c.DisciplineID, &c.GroupCount, &c.QualifiersPerGroup, &c.Status, &champion, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.ChampionID = intPtr(champion)
	return c, nil
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func fromInt64s(ids []int64) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
