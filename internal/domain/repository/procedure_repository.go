package repository

import (
	"context"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// ProcedureTypeRepository catálogo de trámites.
type ProcedureTypeRepository interface {
	// Create y Update devuelven domain.ErrDuplicate si se viola la unicidad de VACANTE.
	Create(ctx context.Context, p *entity.ProcedureType) error
	Update(ctx context.Context, p *entity.ProcedureType) error
	GetByID(ctx context.Context, id string) (*entity.ProcedureType, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.ProcedureType, error)
	// ListActiveByPeriod trámites activos del periodo indicado o AMBOS.
	ListActiveByPeriod(ctx context.Context, period string) ([]*entity.ProcedureType, error)
}

// ProcedureRequestRepository solicitudes de trámite.
type ProcedureRequestRepository interface {
	Create(ctx context.Context, r *entity.ProcedureRequest) error
	GetByID(ctx context.Context, id string) (*entity.ProcedureRequest, error)
	ListByStudent(ctx context.Context, studentID string) ([]*entity.ProcedureRequest, error)
	// UpdateStatus cambia el estado solo si el actual es from (compare-and-set).
	// Devuelve false si otra operación cambió el estado antes.
	UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus, adminResponse string) (bool, error)
}
