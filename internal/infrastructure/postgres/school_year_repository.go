package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var _ repository.SchoolYearRepository = (*SchoolYearRepo)(nil)

// SchoolYearRepo años escolares sobre PostgreSQL.
type SchoolYearRepo struct {
	q Querier
}

// NewSchoolYearRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSchoolYearRepository(q Querier) *SchoolYearRepo {
	return &SchoolYearRepo{q: q}
}

const schoolYearColumns = `id, start_date, end_date, type, enrollment_start, enrollment_end, created_at`

func scanSchoolYear(row pgx.Row) (*entity.SchoolYear, error) {
	var y entity.SchoolYear
	if err := row.Scan(&y.ID, &y.StartDate, &y.EndDate, &y.Type, &y.EnrollmentStart, &y.EnrollmentEnd, &y.CreatedAt); err != nil {
		return nil, err
	}
	return &y, nil
}

// Create persiste un año escolar.
func (r *SchoolYearRepo) Create(ctx context.Context, y *entity.SchoolYear) error {
	query := `
		INSERT INTO school_years (` + schoolYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, y.ID, y.StartDate, y.EndDate, y.Type, y.EnrollmentStart, y.EnrollmentEnd, y.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert school_year: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *SchoolYearRepo) GetByID(ctx context.Context, id string) (*entity.SchoolYear, error) {
	query := `SELECT ` + schoolYearColumns + ` FROM school_years WHERE id = $1`
	y, err := scanSchoolYear(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school_year: %w", err)
	}
	return y, nil
}

// List devuelve los años escolares, el más reciente primero.
func (r *SchoolYearRepo) List(ctx context.Context) ([]*entity.SchoolYear, error) {
	query := `SELECT ` + schoolYearColumns + ` FROM school_years ORDER BY start_date DESC, id DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list school_years: %w", err)
	}
	defer rows.Close()
	var out []*entity.SchoolYear
	for rows.Next() {
		y, err := scanSchoolYear(rows)
		if err != nil {
			return nil, fmt.Errorf("scan school_year: %w", err)
		}
		out = append(out, y)
	}
	return out, rows.Err()
}
