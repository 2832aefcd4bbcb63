package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// GenerationOutcome resultado de un intento de generación de pensión.
// Los saltos no son errores: el lote continúa con el siguiente alumno.
type GenerationOutcome string

const (
	OutcomeCreated       GenerationOutcome = "CREATED"
	OutcomeAlreadyExists GenerationOutcome = "ALREADY_EXISTS"
	OutcomeOutOfSession  GenerationOutcome = "OUT_OF_SESSION"
	OutcomeNoEnrollment  GenerationOutcome = "NO_ENROLLMENT"
	OutcomeNoSchoolYear  GenerationOutcome = "NO_SCHOOL_YEAR"
	OutcomeNoTariff      GenerationOutcome = "NO_TARIFF"
	OutcomeExonerated    GenerationOutcome = "EXONERATED"
)

// PensionInput entrada de GenerateMonthlyPension.
type PensionInput struct {
	StudentID    string
	EnrollmentID string
	PlanType     string // REGULAR, VERANO
	Month        int
	Year         int
}

// PensionUseCase genera los cargos mensuales de pensión.
type PensionUseCase struct {
	years        repository.SchoolYearRepository
	enrollments  repository.EnrollmentRepository
	procedures   repository.ProcedureTypeRepository
	exonerations repository.ExonerationRepository
	payments     repository.PaymentRepository
	now          Clock
	log          zerolog.Logger
}

// NewPensionUseCase construye el caso de uso.
func NewPensionUseCase(
	years repository.SchoolYearRepository,
	enrollments repository.EnrollmentRepository,
	procedures repository.ProcedureTypeRepository,
	exonerations repository.ExonerationRepository,
	payments repository.PaymentRepository,
	now Clock,
	log zerolog.Logger,
) *PensionUseCase {
	return &PensionUseCase{
		years:        years,
		enrollments:  enrollments,
		procedures:   procedures,
		exonerations: exonerations,
		payments:     payments,
		now:          now,
		log:          log.With().Str("component", "pension").Logger(),
	}
}

// GenerateMonthlyPension crea la pensión del mes para una matrícula.
// Guardas fallidas devuelven un outcome distinto de OutcomeCreated y error nil;
// solo los fallos de infraestructura se propagan.
func (uc *PensionUseCase) GenerateMonthlyPension(ctx context.Context, in PensionInput) (GenerationOutcome, *entity.Payment, error) {
	if in.StudentID == "" || in.EnrollmentID == "" || !domfinance.ValidPeriod(in.Month, in.Year) {
		return "", nil, domain.ErrInvalidInput
	}
	if in.PlanType == "" {
		in.PlanType = entity.PeriodRegular
	}
	l := uc.log.With().
		Str("student_id", in.StudentID).
		Str("enrollment_id", in.EnrollmentID).
		Int("month", in.Month).Int("year", in.Year).Logger()

	enr, err := uc.enrollments.GetByID(ctx, in.EnrollmentID)
	if err != nil {
		return "", nil, fmt.Errorf("pension: matrícula: %w", err)
	}
	if enr == nil {
		l.Debug().Msg("matrícula inexistente, se omite")
		return OutcomeNoEnrollment, nil, nil
	}
	if enr.StudentID != in.StudentID {
		return "", nil, fmt.Errorf("%w: la matrícula no pertenece al alumno", domain.ErrInvalidInput)
	}
	year, err := uc.years.GetByID(ctx, enr.SchoolYearID)
	if err != nil {
		return "", nil, fmt.Errorf("pension: año escolar: %w", err)
	}
	if year == nil {
		l.Debug().Str("school_year_id", enr.SchoolYearID).Msg("año escolar inexistente, se omite")
		return OutcomeNoSchoolYear, nil, nil
	}
	if !domfinance.InSession(year, in.Month, in.Year) {
		l.Debug().Str("school_year_id", year.ID).Msg("mes fuera del año escolar, se omite")
		return OutcomeOutOfSession, nil, nil
	}

	exists, err := uc.payments.ExistsPension(ctx, in.StudentID, in.Year, in.Month)
	if err != nil {
		return "", nil, fmt.Errorf("pension: verificar existente: %w", err)
	}
	if exists {
		return OutcomeAlreadyExists, nil, nil
	}

	candidates, err := uc.procedures.ListActiveByPeriod(ctx, in.PlanType)
	if err != nil {
		return "", nil, fmt.Errorf("pension: tarifas: %w", err)
	}
	tariff := domfinance.SelectTariff(candidates, domfinance.PensionKey, in.PlanType)
	if tariff == nil {
		l.Error().Str("plan_type", in.PlanType).Msg("configuración: no existe trámite PENSION activo para el plan")
		return OutcomeNoTariff, nil, nil
	}

	amount := tariff.Cost
	exs, err := uc.exonerations.ListActiveByEnrollment(ctx, enr.ID)
	if err != nil {
		return "", nil, fmt.Errorf("pension: exoneraciones: %w", err)
	}
	var percents []decimal.Decimal
	for _, ex := range exs {
		if ex.Active && domfinance.NameContains(ex.Concept, domfinance.PensionKey) {
			percents = append(percents, ex.DiscountPercent)
		}
	}
	if len(percents) > 0 {
		amount = domfinance.ApplyDiscount(amount, percents...)
		if amount.IsZero() {
			l.Info().Msg("matrícula exonerada al 100%, no se genera pensión")
			return OutcomeExonerated, nil, nil
		}
	}

	now := uc.now()
	p := &entity.Payment{
		ID:           uuid.New().String(),
		StudentID:    in.StudentID,
		EnrollmentID: enr.ID,
		Kind:         entity.ChargePension,
		PeriodYear:   in.Year,
		PeriodMonth:  in.Month,
		Concept:      domfinance.PensionConcept(in.Month, in.Year),
		Amount:       amount,
		LateFee:      decimal.Zero,
		Total:        amount,
		DueDate:      domfinance.LastDayOfMonth(in.Month, in.Year),
		Status:       entity.PaymentPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.payments.Create(ctx, p); err != nil {
		// Otro proceso la generó entre la verificación y el insert.
		if errors.Is(err, domain.ErrDuplicate) {
			return OutcomeAlreadyExists, nil, nil
		}
		return "", nil, fmt.Errorf("pension: crear pago: %w", err)
	}
	l.Info().Str("payment_id", p.ID).Str("amount", p.Amount.StringFixed(2)).Msg("pensión generada")
	return OutcomeCreated, p, nil
}

// GenerateForActiveYears genera la pensión del mes para todas las matrículas de los años
// escolares activos hoy. month/year en cero toman el mes en curso.
// Un error en un alumno se registra y no detiene el lote.
func (uc *PensionUseCase) GenerateForActiveYears(ctx context.Context, month, year int) (*dto.GenerationSummary, error) {
	today := uc.now()
	if month == 0 && year == 0 {
		month, year = int(today.Month()), today.Year()
	}
	if !domfinance.ValidPeriod(month, year) {
		return nil, domain.ErrInvalidInput
	}
	years, err := uc.years.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("pension: listar años escolares: %w", err)
	}
	sum := &dto.GenerationSummary{Month: month, Year: year, SchoolYears: []string{}}
	for _, sy := range years {
		if !sy.IsActiveOn(today) {
			continue
		}
		sum.SchoolYears = append(sum.SchoolYears, sy.ID)
		enrollments, err := uc.enrollments.ListEnrolledBySchoolYear(ctx, sy.ID)
		if err != nil {
			return nil, fmt.Errorf("pension: matrículas de %s: %w", sy.ID, err)
		}
		for _, enr := range enrollments {
			sum.Enrollments++
			outcome, _, err := uc.GenerateMonthlyPension(ctx, PensionInput{
				StudentID:    enr.StudentID,
				EnrollmentID: enr.ID,
				PlanType:     enr.PlanType,
				Month:        month,
				Year:         year,
			})
			if err != nil {
				sum.Failed++
				uc.log.Error().Err(err).Str("enrollment_id", enr.ID).Msg("falló la generación de pensión")
				continue
			}
			switch outcome {
			case OutcomeCreated:
				sum.Created++
			case OutcomeAlreadyExists:
				sum.Existing++
			case OutcomeOutOfSession:
				sum.OutOfSession++
			case OutcomeExonerated:
				sum.Exonerated++
			case OutcomeNoTariff:
				sum.NoTariff++
			}
		}
	}
	uc.log.Info().
		Int("month", month).Int("year", year).
		Int("created", sum.Created).Int("existing", sum.Existing).Int("failed", sum.Failed).
		Msg("generación mensual de pensiones finalizada")
	return sum, nil
}
