package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var _ repository.StudentRepository = (*StudentRepo)(nil)

// StudentRepo lectura de alumnos.
type StudentRepo struct {
	q Querier
}

// NewStudentRepository construye el adaptador.
func NewStudentRepository(q Querier) *StudentRepo {
	return &StudentRepo{q: q}
}

func (r *StudentRepo) GetByID(ctx context.Context, id string) (*entity.Student, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *StudentRepo) GetByDNI(ctx context.Context, dni string) (*entity.Student, error) {
	return r.findOne(ctx, `WHERE dni = $1`, dni)
}

func (r *StudentRepo) findOne(ctx context.Context, where string, arg any) (*entity.Student, error) {
	query := `SELECT id, user_id, dni, first_names, last_names FROM students ` + where
	var s entity.Student
	var userID *string
	err := r.q.QueryRow(ctx, query, arg).Scan(&s.ID, &userID, &s.DNI, &s.FirstNames, &s.LastNames)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	s.UserID = deref(userID)
	return &s, nil
}
