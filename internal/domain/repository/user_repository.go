package repository

import (
	"context"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
