package academic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// SeatProvisioner matricula al alumno que pagó una reserva de vacante.
type SeatProvisioner struct {
	years       repository.SchoolYearRepository
	enrollments repository.EnrollmentRepository
	now         func() time.Time
}

// NewSeatProvisioner construye el aprovisionador.
func NewSeatProvisioner(years repository.SchoolYearRepository, enrollments repository.EnrollmentRepository, now func() time.Time) *SeatProvisioner {
	return &SeatProvisioner{years: years, enrollments: enrollments, now: now}
}

// ProvisionSeat crea la matrícula en el año con inscripción abierta hoy o, en su defecto, en el año
// REGULAR activo. Si el alumno ya está matriculado en ese año devuelve la matrícula existente.
// (nil, nil) si no hay año destino.
func (p *SeatProvisioner) ProvisionSeat(ctx context.Context, studentID, gradeID string) (*entity.Enrollment, error) {
	today := p.now()
	target, err := p.targetYear(ctx, today)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	existing, err := p.enrollments.GetEnrolledByStudentAndYear(ctx, studentID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if gradeID == "" {
		return nil, fmt.Errorf("%w: grado para la matrícula", domain.ErrInvalidInput)
	}
	e := &entity.Enrollment{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		SchoolYearID: target.ID,
		GradeID:      gradeID,
		Status:       entity.EnrollmentEnrolled,
		PlanType:     target.Type,
		EnrolledAt:   today,
	}
	if err := p.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *SeatProvisioner) targetYear(ctx context.Context, today time.Time) (*entity.SchoolYear, error) {
	years, err := p.years.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		if y.EnrollmentOpenOn(today) {
			return y, nil
		}
	}
	for _, y := range years {
		if y.Type == entity.PeriodRegular && y.IsActiveOn(today) {
			return y, nil
		}
	}
	return nil, nil
}
