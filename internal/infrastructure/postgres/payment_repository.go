package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo ledger de pagos sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `
	id, student_id, user_id, enrollment_id, request_id, kind, period_year, period_month,
	concept, amount, late_fee, total, due_date, paid_at, bank_code, bank_payload, status,
	created_at, updated_at`

// estados abiertos en SQL: PENDIENTE y VENCIDO.
const openStatusSQL = `status IN ('PENDIENTE', 'VENCIDO')`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var userID, enrollmentID, requestID, bankCode, bankPayload *string
	var year, month *int
	if err := row.Scan(
		&p.ID, &p.StudentID, &userID, &enrollmentID, &requestID, &p.Kind, &year, &month,
		&p.Concept, &p.Amount, &p.LateFee, &p.Total, &p.DueDate, &p.PaidAt, &bankCode, &bankPayload, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.UserID, p.EnrollmentID, p.RequestID = deref(userID), deref(enrollmentID), deref(requestID)
	p.BankCode, p.BankPayload = deref(bankCode), deref(bankPayload)
	if year != nil {
		p.PeriodYear = *year
	}
	if month != nil {
		p.PeriodMonth = *month
	}
	return &p, nil
}

func nullIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// Create inserta el pago. uq_payments_pension_period convierte una segunda pensión del mismo
// (alumno, año, mes) en domain.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.StudentID, nullIfEmpty(p.UserID), nullIfEmpty(p.EnrollmentID), nullIfEmpty(p.RequestID),
		p.Kind, nullIfZero(p.PeriodYear), nullIfZero(p.PeriodMonth),
		p.Concept, p.Amount, p.LateFee, p.Total, p.DueDate, p.PaidAt,
		nullIfEmpty(p.BankCode), nullIfEmpty(p.BankPayload), p.Status,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) ExistsPension(ctx context.Context, studentID string, year, month int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE student_id = $1 AND kind = $2 AND period_year = $3 AND period_month = $4
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, studentID, entity.ChargePension, year, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists pension: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]*entity.Payment, error) {
	return r.list(ctx, `WHERE student_id = $1 ORDER BY due_date, created_at, id`, studentID)
}

func (r *PaymentRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.Payment, error) {
	return r.list(ctx, `WHERE request_id = $1 ORDER BY due_date, created_at, id`, requestID)
}

func (r *PaymentRepo) ListOpenByStudent(ctx context.Context, studentID string) ([]*entity.Payment, error) {
	return r.list(ctx, `WHERE student_id = $1 AND `+openStatusSQL+` ORDER BY due_date, created_at, id`, studentID)
}

// ListOpenByStudentAndTotal bloquea los candidatos (FOR UPDATE) cuando corre dentro de una tx.
func (r *PaymentRepo) ListOpenByStudentAndTotal(ctx context.Context, studentID string, total decimal.Decimal) ([]*entity.Payment, error) {
	return r.list(ctx, `
		WHERE student_id = $1 AND `+openStatusSQL+` AND total = $2
		ORDER BY due_date, created_at, id
		FOR UPDATE`, studentID, total)
}

func (r *PaymentRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var out []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ApplyLateFees una sola sentencia: la condición late_fee = 0 hace que una segunda corrida no cambie nada.
func (r *PaymentRepo) ApplyLateFees(ctx context.Context, asOf time.Time, fee decimal.Decimal) (int64, error) {
	query := `
		UPDATE payments
		SET late_fee = $2, total = amount + $2, updated_at = now()
		WHERE status = 'PENDIENTE' AND due_date < $1 AND late_fee = 0`
	tag, err := r.q.Exec(ctx, query, asOf, fee)
	if err != nil {
		return 0, fmt.Errorf("apply late fees: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RevisePendingAmounts una sola sentencia; la mora existente se suma al nuevo monto.
func (r *PaymentRepo) RevisePendingAmounts(ctx context.Context, f repository.RevisionFilter, newAmount decimal.Decimal) (int64, error) {
	query := `
		UPDATE payments p
		SET amount = $4, total = $4 + p.late_fee, updated_at = now()
		FROM enrollments e
		WHERE e.id = p.enrollment_id
		  AND e.school_year_id = $1
		  AND p.concept ILIKE '%' || $2 || '%' ESCAPE '\'
		  AND p.status = 'PENDIENTE'
		  AND EXTRACT(MONTH FROM p.due_date) >= $3`
	tag, err := r.q.Exec(ctx, query, f.SchoolYearID, escapeLike(f.ConceptFilter), f.MonthFrom, newAmount)
	if err != nil {
		return 0, fmt.Errorf("revise pending amounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkPaid compare-and-set: solo actualiza si el pago sigue abierto.
func (r *PaymentRepo) MarkPaid(ctx context.Context, id string, s entity.Settlement) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'PAGADO', paid_at = $2, bank_code = $3, bank_payload = $4, updated_at = now()
		WHERE id = $1 AND ` + openStatusSQL
	tag, err := r.q.Exec(ctx, query, id, s.PaidAt, nullIfEmpty(s.BankCode), nullIfEmpty(s.BankPayload))
	if err != nil {
		return false, fmt.Errorf("mark payment paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRepo) MarkVoid(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE payments SET status = 'ANULADO', updated_at = $2 WHERE id = $1 AND ` + openStatusSQL
	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("mark payment void: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
