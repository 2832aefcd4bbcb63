package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// RevisionFilter criterio de la revisión masiva de montos pendientes.
type RevisionFilter struct {
	SchoolYearID  string
	ConceptFilter string // subcadena del concepto (sin distinguir mayúsculas)
	MonthFrom     int    // mes de vencimiento mínimo (1..12)
}

// PaymentRepository puerto del ledger de pagos.
type PaymentRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe la pensión (alumno, año, mes).
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ExistsPension(ctx context.Context, studentID string, year, month int) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]*entity.Payment, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.Payment, error)
	// ListOpenByStudent pagos PENDIENTE/VENCIDO ordenados por vencimiento.
	ListOpenByStudent(ctx context.Context, studentID string) ([]*entity.Payment, error)
	// ListOpenByStudentAndTotal candidatos de conciliación, bloqueados si hay transacción,
	// ordenados por vencimiento, creación e id.
	ListOpenByStudentAndTotal(ctx context.Context, studentID string, total decimal.Decimal) ([]*entity.Payment, error)
	// ApplyLateFees aplica la mora en una sola sentencia y devuelve las filas afectadas.
	ApplyLateFees(ctx context.Context, asOf time.Time, fee decimal.Decimal) (int64, error)
	// RevisePendingAmounts reemplaza el monto base conservando la mora, en una sola sentencia.
	RevisePendingAmounts(ctx context.Context, f RevisionFilter, newAmount decimal.Decimal) (int64, error)
	// MarkPaid pasa a PAGADO solo si el pago sigue abierto. false = otro escritor ganó.
	MarkPaid(ctx context.Context, id string, s entity.Settlement) (bool, error)
	// MarkVoid pasa a ANULADO solo si el pago sigue abierto.
	MarkVoid(ctx context.Context, id string, at time.Time) (bool, error)
}

// BankNotificationRepository auditoría de notificaciones bancarias.
type BankNotificationRepository interface {
	// Create devuelve domain.ErrDuplicate si el id de transacción ya fue registrado.
	Create(ctx context.Context, n *entity.BankNotification) error
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.BankNotification, error)
	UpdateResult(ctx context.Context, id, status, paymentID, errMsg string, processedAt time.Time) error
}
