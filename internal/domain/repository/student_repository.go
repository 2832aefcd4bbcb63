package repository

import (
	"context"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// StudentRepository lectura de alumnos.
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Student, error)
	GetByDNI(ctx context.Context, dni string) (*entity.Student, error)
}
