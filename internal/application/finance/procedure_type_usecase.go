package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// ProcedureTypeUseCase catálogo de trámites con la regla de vacante única.
type ProcedureTypeUseCase struct {
	repo repository.ProcedureTypeRepository
	now  Clock
}

// NewProcedureTypeUseCase construye el caso de uso.
func NewProcedureTypeUseCase(repo repository.ProcedureTypeRepository, now Clock) *ProcedureTypeUseCase {
	return &ProcedureTypeUseCase{repo: repo, now: now}
}

// Create registra un tipo de trámite.
func (uc *ProcedureTypeUseCase) Create(ctx context.Context, in dto.ProcedureTypeRequest) (*dto.ProcedureTypeResponse, error) {
	p := &entity.ProcedureType{ID: uuid.New().String(), Active: true}
	if err := applyProcedureInput(p, in); err != nil {
		return nil, err
	}
	if err := uc.ensureSingleSeatReservation(ctx, p); err != nil {
		return nil, err
	}
	p.CreatedAt = uc.now()
	p.UpdatedAt = p.CreatedAt
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProcedureTypeResponse(p), nil
}

// Update reemplaza los datos de un tipo de trámite existente.
func (uc *ProcedureTypeUseCase) Update(ctx context.Context, id string, in dto.ProcedureTypeRequest) (*dto.ProcedureTypeResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := applyProcedureInput(p, in); err != nil {
		return nil, err
	}
	if err := uc.ensureSingleSeatReservation(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProcedureTypeResponse(p), nil
}

// Get devuelve un tipo de trámite por id.
func (uc *ProcedureTypeUseCase) Get(ctx context.Context, id string) (*dto.ProcedureTypeResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProcedureTypeResponse(p), nil
}

// List devuelve el catálogo; onlyActive filtra los inactivos.
func (uc *ProcedureTypeUseCase) List(ctx context.Context, onlyActive bool) ([]dto.ProcedureTypeResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProcedureTypeResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProcedureTypeResponse(p))
	}
	return out, nil
}

// ensureSingleSeatReservation solo puede existir un trámite de reserva de vacante.
// El índice único parcial de la base cubre la carrera entre dos altas simultáneas.
func (uc *ProcedureTypeUseCase) ensureSingleSeatReservation(ctx context.Context, p *entity.ProcedureType) error {
	if !domfinance.IsSeatReservation(p.Name) {
		return nil
	}
	all, err := uc.repo.List(ctx, false)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID != p.ID && domfinance.IsSeatReservation(other.Name) {
			return fmt.Errorf("%w: ya existe un trámite de reserva de vacante (%s)", domain.ErrDuplicate, other.Name)
		}
	}
	return nil
}

func applyProcedureInput(p *entity.ProcedureType, in dto.ProcedureTypeRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Cost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	p.Name = name
	p.Cost = in.Cost.Round(2)
	p.Requirements = in.Requirements
	p.Scope = in.Scope
	if p.Scope == "" {
		p.Scope = entity.ScopeAll
	}
	p.Period = in.Period
	if p.Period == "" {
		p.Period = entity.PeriodBoth
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return nil
}

func toProcedureTypeResponse(p *entity.ProcedureType) *dto.ProcedureTypeResponse {
	return &dto.ProcedureTypeResponse{
		ID:           p.ID,
		Name:         p.Name,
		Cost:         p.Cost,
		Requirements: p.Requirements,
		Scope:        p.Scope,
		Period:       p.Period,
		Active:       p.Active,
	}
}
