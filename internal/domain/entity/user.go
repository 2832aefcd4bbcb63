package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleTesoreria  = "tesoreria"
	RoleSecretaria = "secretaria"
)

// User representa un usuario administrativo del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, tesoreria, secretaria
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
