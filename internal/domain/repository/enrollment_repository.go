package repository

import (
	"context"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// EnrollmentRepository puerto de persistencia de matrículas (el motor solo lee, salvo la reserva de vacante).
type EnrollmentRepository interface {
	Create(ctx context.Context, e *entity.Enrollment) error
	GetByID(ctx context.Context, id string) (*entity.Enrollment, error)
	// ListEnrolledBySchoolYear matrículas en estado MATRICULADO de un año escolar.
	ListEnrolledBySchoolYear(ctx context.Context, schoolYearID string) ([]*entity.Enrollment, error)
	// GetLatestEnrolledByStudent matrícula MATRICULADO más reciente del alumno, o (nil, nil).
	GetLatestEnrolledByStudent(ctx context.Context, studentID string) (*entity.Enrollment, error)
	GetEnrolledByStudentAndYear(ctx context.Context, studentID, schoolYearID string) (*entity.Enrollment, error)
}

// ExonerationRepository descuentos vigentes por matrícula.
type ExonerationRepository interface {
	Create(ctx context.Context, e *entity.Exoneration) error
	ListActiveByEnrollment(ctx context.Context, enrollmentID string) ([]*entity.Exoneration, error)
}
