// Package academic expone la parte del calendario y la matrícula que necesita el motor de cobranzas.
package academic

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// SchoolYearUseCase alta y lectura de años escolares. El flag activo se calcula al leer.
type SchoolYearUseCase struct {
	repo repository.SchoolYearRepository
	now  func() time.Time
}

// NewSchoolYearUseCase construye el caso de uso.
func NewSchoolYearUseCase(repo repository.SchoolYearRepository, now func() time.Time) *SchoolYearUseCase {
	return &SchoolYearUseCase{repo: repo, now: now}
}

// Create registra un año escolar.
func (uc *SchoolYearUseCase) Create(ctx context.Context, in dto.CreateSchoolYearRequest) (*dto.SchoolYearResponse, error) {
	if len(in.ID) != 6 {
		return nil, fmt.Errorf("%w: el id del año escolar debe tener 6 caracteres", domain.ErrInvalidInput)
	}
	if in.Type != entity.PeriodRegular && in.Type != entity.PeriodSummer {
		return nil, fmt.Errorf("%w: tipo de año escolar", domain.ErrInvalidInput)
	}
	start, err := parseDate(in.StartDate)
	if err != nil || start == nil {
		return nil, fmt.Errorf("%w: fecha de inicio", domain.ErrInvalidInput)
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de fin", domain.ErrInvalidInput)
	}
	if end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: la fecha de fin es anterior al inicio", domain.ErrInvalidInput)
	}
	encStart, err := parseDate(in.EnrollmentStart)
	if err != nil {
		return nil, fmt.Errorf("%w: inicio de inscripción", domain.ErrInvalidInput)
	}
	encEnd, err := parseDate(in.EnrollmentEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: fin de inscripción", domain.ErrInvalidInput)
	}
	if (encStart == nil) != (encEnd == nil) || (encStart != nil && encEnd.Before(*encStart)) {
		return nil, fmt.Errorf("%w: ventana de inscripción", domain.ErrInvalidInput)
	}

	existing, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	y := &entity.SchoolYear{
		ID:              in.ID,
		StartDate:       *start,
		EndDate:         end,
		Type:            in.Type,
		EnrollmentStart: encStart,
		EnrollmentEnd:   encEnd,
		CreatedAt:       uc.now(),
	}
	if err := uc.repo.Create(ctx, y); err != nil {
		return nil, err
	}
	return uc.toResponse(y), nil
}

// List devuelve todos los años escolares con el flag activo a la fecha.
func (uc *SchoolYearUseCase) List(ctx context.Context) ([]dto.SchoolYearResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SchoolYearResponse, 0, len(list))
	for _, y := range list {
		out = append(out, *uc.toResponse(y))
	}
	return out, nil
}

func (uc *SchoolYearUseCase) toResponse(y *entity.SchoolYear) *dto.SchoolYearResponse {
	return &dto.SchoolYearResponse{
		ID:              y.ID,
		StartDate:       y.StartDate.Format(time.DateOnly),
		EndDate:         formatDate(y.EndDate),
		Type:            y.Type,
		Active:          y.IsActiveOn(uc.now()),
		EnrollmentStart: formatDate(y.EnrollmentStart),
		EnrollmentEnd:   formatDate(y.EnrollmentEnd),
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
