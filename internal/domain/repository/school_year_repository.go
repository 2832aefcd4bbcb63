package repository

import (
	"context"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// SchoolYearRepository puerto de lectura/alta del calendario académico.
type SchoolYearRepository interface {
	Create(ctx context.Context, year *entity.SchoolYear) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.SchoolYear, error)
	List(ctx context.Context) ([]*entity.SchoolYear, error)
}
