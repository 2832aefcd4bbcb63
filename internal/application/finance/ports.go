package finance

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Payments      repository.PaymentRepository
	Requests      repository.ProcedureRequestRepository
	Procedures    repository.ProcedureTypeRepository
	Enrollments   repository.EnrollmentRepository
	Exonerations  repository.ExonerationRepository
	Notifications repository.BankNotificationRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier otro caso.
// Dentro de fn solo deben usarse los repositorios recibidos.
type TxRunner interface {
	RunFinance(ctx context.Context, fn func(r TxRepos) error) error
}

// AttachmentStore persistencia de archivos adjuntos de solicitudes.
type AttachmentStore interface {
	// Save guarda el contenido y devuelve la ruta relativa con la que se referencia.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// EnrollmentProvisioner materializa la matrícula tras pagar una reserva de vacante.
// Debe ser idempotente: si el alumno ya está matriculado en el año destino devuelve esa matrícula.
// (nil, nil) significa que no hay año escolar destino disponible.
type EnrollmentProvisioner interface {
	ProvisionSeat(ctx context.Context, studentID, gradeID string) (*entity.Enrollment, error)
}

// ChecksumVerifier valida la integridad de una notificación bancaria.
type ChecksumVerifier interface {
	Verify(n dto.BankNotificationRequest) error
}

// ReceiptPDFGenerator genera el comprobante de un pago confirmado.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, payment *entity.Payment, student *entity.Student) ([]byte, error)
}

// Clock fuente de tiempo inyectable (tests).
type Clock func() time.Time

// SystemClock reloj real en la zona horaria del colegio.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}
