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
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// ExonerationUseCase alta de descuentos sobre una matrícula.
type ExonerationUseCase struct {
	enrollments  repository.EnrollmentRepository
	exonerations repository.ExonerationRepository
	now          Clock
}

func NewExonerationUseCase(enrollments repository.EnrollmentRepository, exonerations repository.ExonerationRepository, now Clock) *ExonerationUseCase {
	return &ExonerationUseCase{enrollments: enrollments, exonerations: exonerations, now: now}
}

// Create registra una exoneración activa. El porcentaje va de 0 (excluido) a 100.
func (uc *ExonerationUseCase) Create(ctx context.Context, in dto.CreateExonerationRequest) (*dto.ExonerationResponse, error) {
	hundred := decimal.NewFromInt(100)
	if in.EnrollmentID == "" || strings.TrimSpace(in.Concept) == "" ||
		!in.DiscountPercent.GreaterThan(decimal.Zero) || in.DiscountPercent.GreaterThan(hundred) {
		return nil, domain.ErrInvalidInput
	}
	enr, err := uc.enrollments.GetByID(ctx, in.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enr == nil {
		return nil, fmt.Errorf("%w: matrícula", domain.ErrNotFound)
	}
	ex := &entity.Exoneration{
		ID:              uuid.New().String(),
		EnrollmentID:    enr.ID,
		Reason:          strings.TrimSpace(in.Reason),
		Concept:         strings.ToUpper(strings.TrimSpace(in.Concept)),
		DiscountPercent: in.DiscountPercent.Round(2),
		Active:          true,
		ApprovedAt:      uc.now(),
	}
	if err := uc.exonerations.Create(ctx, ex); err != nil {
		return nil, err
	}
	return &dto.ExonerationResponse{
		ID:              ex.ID,
		EnrollmentID:    ex.EnrollmentID,
		Reason:          ex.Reason,
		Concept:         ex.Concept,
		DiscountPercent: ex.DiscountPercent,
		Active:          ex.Active,
	}, nil
}
