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

var (
	_ repository.EnrollmentRepository  = (*EnrollmentRepo)(nil)
	_ repository.ExonerationRepository = (*ExonerationRepo)(nil)
)

// EnrollmentRepo matrículas sobre PostgreSQL (usable con pool o tx).
type EnrollmentRepo struct {
	q Querier
}

// NewEnrollmentRepository construye el adaptador.
func NewEnrollmentRepository(q Querier) *EnrollmentRepo {
	return &EnrollmentRepo{q: q}
}

const enrollmentColumns = `id, student_id, school_year_id, grade_id, section_id, status, plan_type, enrolled_at`

func scanEnrollment(row pgx.Row) (*entity.Enrollment, error) {
	var e entity.Enrollment
	var section *string
	if err := row.Scan(&e.ID, &e.StudentID, &e.SchoolYearID, &e.GradeID, &section, &e.Status, &e.PlanType, &e.EnrolledAt); err != nil {
		return nil, err
	}
	e.SectionID = deref(section)
	return &e, nil
}

// Create inserta la matrícula. Una segunda matrícula MATRICULADO del alumno en el mismo año
// viola uq_enrollments_active y se traduce a domain.ErrDuplicate.
func (r *EnrollmentRepo) Create(ctx context.Context, e *entity.Enrollment) error {
	query := `
		INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.StudentID, e.SchoolYearID, e.GradeID, nullIfEmpty(e.SectionID), e.Status, e.PlanType, e.EnrolledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepo) GetByID(ctx context.Context, id string) (*entity.Enrollment, error) {
	return r.one(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
}

func (r *EnrollmentRepo) ListEnrolledBySchoolYear(ctx context.Context, schoolYearID string) ([]*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE school_year_id = $1 AND status = $2
		ORDER BY enrolled_at, id`
	rows, err := r.q.Query(ctx, query, schoolYearID, entity.EnrollmentEnrolled)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()
	var out []*entity.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EnrollmentRepo) GetLatestEnrolledByStudent(ctx context.Context, studentID string) (*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND status = $2
		ORDER BY enrolled_at DESC, id DESC
		LIMIT 1`
	return r.one(ctx, query, studentID, entity.EnrollmentEnrolled)
}

func (r *EnrollmentRepo) GetEnrolledByStudentAndYear(ctx context.Context, studentID, schoolYearID string) (*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND school_year_id = $2 AND status = $3`
	return r.one(ctx, query, studentID, schoolYearID, entity.EnrollmentEnrolled)
}

func (r *EnrollmentRepo) one(ctx context.Context, query string, args ...any) (*entity.Enrollment, error) {
	e, err := scanEnrollment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

// ExonerationRepo descuentos por matrícula.
type ExonerationRepo struct {
	q Querier
}

// NewExonerationRepository construye el adaptador.
func NewExonerationRepository(q Querier) *ExonerationRepo {
	return &ExonerationRepo{q: q}
}

func (r *ExonerationRepo) Create(ctx context.Context, e *entity.Exoneration) error {
	query := `
		INSERT INTO exonerations (id, enrollment_id, reason, concept, discount_percent, active, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.EnrollmentID, e.Reason, e.Concept, e.DiscountPercent, e.Active, e.ApprovedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert exoneration: %w", err)
	}
	return nil
}

func (r *ExonerationRepo) ListActiveByEnrollment(ctx context.Context, enrollmentID string) ([]*entity.Exoneration, error) {
	query := `
		SELECT id, enrollment_id, reason, concept, discount_percent, active, approved_at
		FROM exonerations
		WHERE enrollment_id = $1 AND active
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("list exonerations: %w", err)
	}
	defer rows.Close()
	var out []*entity.Exoneration
	for rows.Next() {
		var e entity.Exoneration
		if err := rows.Scan(&e.ID, &e.EnrollmentID, &e.Reason, &e.Concept, &e.DiscountPercent, &e.Active, &e.ApprovedAt); err != nil {
			return nil, fmt.Errorf("scan exoneration: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
