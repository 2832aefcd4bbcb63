package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// AmbiguityPolicy qué hacer cuando varios pagos abiertos coinciden con el monto notificado.
type AmbiguityPolicy string

const (
	// PolicyReject deja la notificación SIN_RESOLVER para revisión manual.
	PolicyReject AmbiguityPolicy = "reject"
	// PolicyOldestDue confirma el de vencimiento más antiguo.
	PolicyOldestDue AmbiguityPolicy = "oldest_due"
)

// ParseAmbiguityPolicy valor de configuración; cualquier otro valor equivale a reject.
func ParseAmbiguityPolicy(s string) AmbiguityPolicy {
	if AmbiguityPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyOldestDue {
		return PolicyOldestDue
	}
	return PolicyReject
}

// errClosedReference la referencia apunta a un pago ya cerrado: el cobro está duplicado y reintentar no sirve.
var errClosedReference = fmt.Errorf("%w: el pago referenciado ya está cerrado", domain.ErrReconciliationUnmatched)

var operatedAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.DateOnly}

// ReconciliationUseCase pasarela de conciliación con el banco (webhook y consulta de deuda).
type ReconciliationUseCase struct {
	tx            TxRunner
	students      repository.StudentRepository
	payments      repository.PaymentRepository
	notifications repository.BankNotificationRepository
	verifier      ChecksumVerifier
	policy        AmbiguityPolicy
	settle        *settler
	now           Clock
	log           zerolog.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(
	tx TxRunner,
	students repository.StudentRepository,
	payments repository.PaymentRepository,
	notifications repository.BankNotificationRepository,
	requests repository.ProcedureRequestRepository,
	enrollments repository.EnrollmentRepository,
	verifier ChecksumVerifier,
	policy AmbiguityPolicy,
	provisioner EnrollmentProvisioner,
	pensions *PensionUseCase,
	now Clock,
	log zerolog.Logger,
) *ReconciliationUseCase {
	log = log.With().Str("component", "reconciliation").Logger()
	return &ReconciliationUseCase{
		tx:            tx,
		students:      students,
		payments:      payments,
		notifications: notifications,
		verifier:      verifier,
		policy:        policy,
		settle: &settler{
			requests:    requests,
			enrollments: enrollments,
			provisioner: provisioner,
			pensions:    pensions,
			now:         now,
			log:         log,
		},
		now: now,
		log: log,
	}
}

// HandleNotification verifica el checksum, registra la notificación y confirma el pago que le corresponde.
// Una notificación ya procesada se responde con el resultado original (Replayed=true).
// Sin coincidencia o con ambigüedad la notificación queda SIN_RESOLVER y se devuelve
// domain.ErrReconciliationUnmatched o domain.ErrReconciliationAmbiguous. Si el pago ya estaba
// cerrado (cobro duplicado) queda RECHAZADA.
func (uc *ReconciliationUseCase) HandleNotification(ctx context.Context, in dto.BankNotificationRequest, raw []byte) (*dto.BankNotificationResponse, error) {
	if err := uc.verifier.Verify(in); err != nil {
		uc.log.Warn().Str("id_transaccion", in.TransactionID).Msg("notificación bancaria con checksum inválido")
		return nil, err
	}
	if !in.AmountPaid.GreaterThan(decimal.Zero) || strings.TrimSpace(in.DNI) == "" || strings.TrimSpace(in.TransactionID) == "" {
		return nil, domain.ErrInvalidInput
	}
	operatedAt, err := parseOperatedAt(in.OperatedAt, uc.now().Location())
	if err != nil {
		return nil, err
	}

	n, replay, err := uc.register(ctx, in, operatedAt, raw)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}
	l := uc.log.With().Str("id_transaccion", n.TransactionID).Str("dni", n.DNI).
		Str("monto", n.Amount.StringFixed(2)).Logger()

	student, err := uc.students.GetByDNI(ctx, n.DNI)
	if err != nil {
		return nil, err
	}
	if student == nil {
		uc.unresolved(ctx, l, n, entity.NotificationUnresolved, "alumno no encontrado")
		return nil, fmt.Errorf("%w: alumno con DNI %s", domain.ErrReconciliationUnmatched, n.DNI)
	}

	var paid *entity.Payment
	err = uc.tx.RunFinance(ctx, func(r TxRepos) error {
		p, err := uc.match(ctx, r, student.ID, n, l)
		if err != nil {
			return err
		}
		if err := uc.settle.settleInTx(ctx, r, p, entity.Settlement{
			PaidAt:      operatedAt,
			BankCode:    n.OperationCode,
			BankPayload: n.RawPayload,
		}); err != nil {
			return err
		}
		if err := r.Notifications.UpdateResult(ctx, n.ID, entity.NotificationProcessed, p.ID, "", uc.now()); err != nil {
			return err
		}
		paid = p
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errClosedReference), errors.Is(err, domain.ErrAlreadyProcessed):
			uc.unresolved(ctx, l, n, entity.NotificationRejected, err.Error())
		case errors.Is(err, domain.ErrReconciliationUnmatched), errors.Is(err, domain.ErrReconciliationAmbiguous):
			uc.unresolved(ctx, l, n, entity.NotificationUnresolved, err.Error())
		}
		return nil, err
	}
	l.Info().Str("payment_id", paid.ID).Msg("pago conciliado con notificación bancaria")
	uc.settle.afterSettle(ctx, paid)
	return &dto.BankNotificationResponse{
		Status:        entity.NotificationProcessed,
		TransactionID: n.TransactionID,
		PaymentID:     paid.ID,
	}, nil
}

// register persiste la notificación antes de conciliar. Un id de transacción ya registrado con otro
// DNI, monto o referencia es domain.ErrConflict. Con los mismos datos, si fue procesado devuelve la
// respuesta original; si quedó pendiente se reintenta con el mismo registro.
func (uc *ReconciliationUseCase) register(ctx context.Context, in dto.BankNotificationRequest, operatedAt time.Time, raw []byte) (*entity.BankNotification, *dto.BankNotificationResponse, error) {
	prev, err := uc.notifications.GetByTransactionID(ctx, in.TransactionID)
	if err != nil {
		return nil, nil, err
	}
	if prev == nil {
		n := &entity.BankNotification{
			ID:            uuid.New().String(),
			TransactionID: in.TransactionID,
			DNI:           strings.TrimSpace(in.DNI),
			Amount:        in.AmountPaid.Round(2),
			OperatedAt:    operatedAt,
			OperationCode: in.OperationCode,
			Channel:       in.Channel,
			Reference:     strings.TrimSpace(in.Reference),
			RawPayload:    string(raw),
			Status:        entity.NotificationReceived,
			ReceivedAt:    uc.now(),
		}
		err := uc.notifications.Create(ctx, n)
		if err == nil {
			return n, nil, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, err
		}
		// Entrega concurrente del mismo id de transacción.
		if prev, err = uc.notifications.GetByTransactionID(ctx, in.TransactionID); err != nil {
			return nil, nil, err
		}
		if prev == nil {
			return nil, nil, domain.ErrConflict
		}
	}
	if !prev.Amount.Equal(in.AmountPaid.Round(2)) || prev.DNI != strings.TrimSpace(in.DNI) ||
		prev.Reference != strings.TrimSpace(in.Reference) {
		uc.log.Warn().Str("id_transaccion", prev.TransactionID).Str("dni", in.DNI).
			Str("monto", in.AmountPaid.StringFixed(2)).Str("payload", string(raw)).
			Msg("id de transacción reutilizado con otros datos")
		return nil, nil, fmt.Errorf("%w: id de transacción reutilizado con otros datos", domain.ErrConflict)
	}
	if prev.Status == entity.NotificationProcessed {
		uc.log.Info().Str("id_transaccion", prev.TransactionID).Msg("notificación repetida, se devuelve el resultado anterior")
		return nil, &dto.BankNotificationResponse{
			Status:        prev.Status,
			TransactionID: prev.TransactionID,
			PaymentID:     prev.PaymentID,
			Replayed:      true,
		}, nil
	}
	return prev, nil, nil
}

// match elige el pago a confirmar: por referencia si el banco la envía, si no por monto exacto.
func (uc *ReconciliationUseCase) match(ctx context.Context, r TxRepos, studentID string, n *entity.BankNotification, l zerolog.Logger) (*entity.Payment, error) {
	if n.Reference != "" {
		p, err := r.Payments.GetByID(ctx, n.Reference)
		if err != nil {
			return nil, err
		}
		if p == nil || p.StudentID != studentID {
			return nil, fmt.Errorf("%w: referencia %s", domain.ErrReconciliationUnmatched, n.Reference)
		}
		if !p.Status.IsOpen() {
			return nil, fmt.Errorf("%w: referencia %s en estado %s", errClosedReference, n.Reference, p.Status)
		}
		if !p.Total.Equal(n.Amount) {
			return nil, fmt.Errorf("%w: referencia %s", domain.ErrReconciliationUnmatched, n.Reference)
		}
		return p, nil
	}
	candidates, err := r.Payments.ListOpenByStudentAndTotal(ctx, studentID, n.Amount)
	if err != nil {
		return nil, err
	}
	switch {
	case len(candidates) == 0:
		return nil, domain.ErrReconciliationUnmatched
	case len(candidates) == 1:
		return candidates[0], nil
	}
	if uc.policy == PolicyOldestDue {
		l.Warn().Int("candidates", len(candidates)).Str("payment_id", candidates[0].ID).
			Msg("varios pagos coinciden, se confirma el de vencimiento más antiguo")
		return candidates[0], nil
	}
	return nil, fmt.Errorf("%w: %d pagos con total %s", domain.ErrReconciliationAmbiguous, len(candidates), n.Amount.StringFixed(2))
}

// unresolved deja constancia de la notificación que requiere intervención manual.
func (uc *ReconciliationUseCase) unresolved(ctx context.Context, l zerolog.Logger, n *entity.BankNotification, status, reason string) {
	l.Error().Str("status", status).Str("reason", reason).Str("payload", n.RawPayload).Msg("notificación bancaria sin resolver")
	if err := uc.notifications.UpdateResult(ctx, n.ID, status, "", reason, uc.now()); err != nil {
		l.Error().Err(err).Msg("no se pudo actualizar la notificación bancaria")
	}
}

// DebtInquiry deudas abiertas del alumno para la consulta del banco. referencia = id del pago.
func (uc *ReconciliationUseCase) DebtInquiry(ctx context.Context, dni string) (*dto.DebtInquiryResponse, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return nil, domain.ErrInvalidInput
	}
	student, err := uc.students.GetByDNI(ctx, dni)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("%w: alumno con DNI %s", domain.ErrNotFound, dni)
	}
	open, err := uc.payments.ListOpenByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.DebtInquiryResponse{
		DNI:         dni,
		StudentName: student.FullName(),
		Debts:       make([]dto.DebtItem, 0, len(open)),
		TotalDebt:   decimal.Zero,
	}
	for _, p := range open {
		out.Debts = append(out.Debts, dto.DebtItem{
			Reference: p.ID,
			Concept:   p.Concept,
			Amount:    p.Amount,
			LateFee:   p.LateFee,
			Total:     p.Total,
			DueDate:   p.DueDate.Format(time.DateOnly),
		})
		out.TotalDebt = out.TotalDebt.Add(p.Total)
	}
	return out, nil
}

// parseOperatedAt las fechas sin zona horaria se leen en la hora local del colegio.
func parseOperatedAt(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range operatedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: fecha_operacion %q", domain.ErrInvalidInput, s)
}
