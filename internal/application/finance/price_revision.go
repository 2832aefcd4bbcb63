package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// PriceRevisionUseCase revisión masiva del monto de cargos pendientes.
type PriceRevisionUseCase struct {
	years    repository.SchoolYearRepository
	payments repository.PaymentRepository
	now      Clock
	log      zerolog.Logger
}

// NewPriceRevisionUseCase construye el caso de uso.
func NewPriceRevisionUseCase(years repository.SchoolYearRepository, payments repository.PaymentRepository, now Clock, log zerolog.Logger) *PriceRevisionUseCase {
	return &PriceRevisionUseCase{years: years, payments: payments, now: now, log: log.With().Str("component", "revision").Logger()}
}

// RevisePendingAmounts reemplaza el monto de los pagos PENDIENTE del año escolar cuyo concepto
// contiene el filtro y vencen desde month_from. La mora existente se conserva.
func (uc *PriceRevisionUseCase) RevisePendingAmounts(ctx context.Context, in dto.RevisePendingRequest) (*dto.RevisePendingResponse, error) {
	filter := strings.TrimSpace(in.ConceptFilter)
	if filter == "" || in.MonthFrom < 1 || in.MonthFrom > 12 || in.NewAmount.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	year, err := uc.resolveSchoolYear(ctx, strings.TrimSpace(in.SchoolYearID))
	if err != nil {
		return nil, err
	}
	n, err := uc.payments.RevisePendingAmounts(ctx, repository.RevisionFilter{
		SchoolYearID:  year.ID,
		ConceptFilter: filter,
		MonthFrom:     in.MonthFrom,
	}, in.NewAmount.Round(2))
	if err != nil {
		return nil, fmt.Errorf("revisión de montos: %w", err)
	}
	uc.log.Info().
		Str("school_year_id", year.ID).Str("concept_filter", filter).
		Int("month_from", in.MonthFrom).Str("new_amount", in.NewAmount.StringFixed(2)).
		Int64("updated", n).Msg("montos pendientes revisados")
	return &dto.RevisePendingResponse{SchoolYearID: year.ID, Updated: n}, nil
}

// resolveSchoolYear prefiere un año activo hoy (el indicado, si está activo); si no hay activos
// usa el indicado por el llamador.
func (uc *PriceRevisionUseCase) resolveSchoolYear(ctx context.Context, requested string) (*entity.SchoolYear, error) {
	years, err := uc.years.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("revisión de montos: años escolares: %w", err)
	}
	today := uc.now()
	var active, fallback *entity.SchoolYear
	for _, y := range years {
		if y.IsActiveOn(today) {
			if y.ID == requested {
				return y, nil
			}
			if active == nil {
				active = y
			}
		}
		if y.ID == requested {
			fallback = y
		}
	}
	if active != nil {
		return active, nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("%w: año escolar activo o indicado", domain.ErrNotFound)
}
