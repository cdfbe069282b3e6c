package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leonelm2/PotreroMobile/models"
)

var (
	ErrDisciplineNotFound     = errors.New("discipline not found")
	ErrDisciplineNameConflict = errors.New("discipline name conflict")
	ErrDisciplineInUse        = errors.New("discipline is referenced by teams or championships")
)

type DisciplineRepository interface {
	Create(ctx context.Context, discipline *models.Discipline) error
	GetByID(ctx context.Context, id int) (*models.Discipline, error)
	GetAll(ctx context.Context) ([]models.Discipline, error)
	Update(ctx context.Context, discipline *models.Discipline) error
	Delete(ctx context.Context, id int) error
	IsReferenced(ctx context.Context, id int) (bool, error)
}

type postgresDisciplineRepository struct {
	db *sql.DB
}

func NewPostgresDisciplineRepository(db *sql.DB) DisciplineRepository {
	return &postgresDisciplineRepository{db: db}
}

func (r *postgresDisciplineRepository) Create(ctx context.Context, d *models.Discipline) error {
	query := `INSERT INTO disciplines (name, description) VALUES ($1, $2) RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, d.Name, nullableString(d.Description)).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return r.mapError(err)
	}
	return nil
}

func (r *postgresDisciplineRepository) GetByID(ctx context.Context, id int) (*models.Discipline, error) {
	query := `SELECT id, name, description, created_at FROM disciplines WHERE id = $1`

	var d models.Discipline
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &description, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}
	d.Description = stringPtr(description)
	return &d, nil
}

func (r *postgresDisciplineRepository) GetAll(ctx context.Context) ([]models.Discipline, error) {
	query := `SELECT id, name, description, created_at FROM disciplines ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disciplines := make([]models.Discipline, 0)
	for rows.Next() {
		var d models.Discipline
		var description sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &description, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Description = stringPtr(description)
		disciplines = append(disciplines, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return disciplines, nil
}

func (r *postgresDisciplineRepository) Update(ctx context.Context, d *models.Discipline) error {
	query := `UPDATE disciplines SET name = $1, description = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, d.Name, nullableString(d.Description), d.ID)
	if err != nil {
		return r.mapError(err)
	}
	return checkAffectedRows(result, ErrDisciplineNotFound)
}

func (r *postgresDisciplineRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM disciplines WHERE id = $1`, id)
	if err != nil {
		return r.mapError(err)
	}
	return checkAffectedRows(result, ErrDisciplineNotFound)
}

func (r *postgresDisciplineRepository) IsReferenced(ctx context.Context, id int) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM teams WHERE discipline_id = $1)
		    OR EXISTS (SELECT 1 FROM championships WHERE discipline_id = $1)`
	var referenced bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&referenced); err != nil {
		return false, err
	}
	return referenced, nil
}

func (r *postgresDisciplineRepository) mapError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok {
		switch {
		case code == pgUniqueViolation && constraint == "disciplines_name_key":
			return ErrDisciplineNameConflict
		case code == pgForeignKeyViolation:
			return ErrDisciplineInUse
		}
	}
	return err
}
