package finance

import (
	"context"
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

// PaymentUseCase cargos manuales, confirmación en caja y anulación.
type PaymentUseCase struct {
	tx          TxRunner
	payments    repository.PaymentRepository
	students    repository.StudentRepository
	enrollments repository.EnrollmentRepository
	settle      *settler
	now         Clock
	log         zerolog.Logger
}

// NewPaymentUseCase construye el caso de uso. provisioner puede ser nil (sin cascada de vacante).
func NewPaymentUseCase(
	tx TxRunner,
	payments repository.PaymentRepository,
	students repository.StudentRepository,
	enrollments repository.EnrollmentRepository,
	requests repository.ProcedureRequestRepository,
	provisioner EnrollmentProvisioner,
	pensions *PensionUseCase,
	now Clock,
	log zerolog.Logger,
) *PaymentUseCase {
	log = log.With().Str("component", "payment").Logger()
	return &PaymentUseCase{
		tx:          tx,
		payments:    payments,
		students:    students,
		enrollments: enrollments,
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

// CreateManual registra un cargo de caja (estado PENDIENTE).
func (uc *PaymentUseCase) CreateManual(ctx context.Context, userID string, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	concept := strings.TrimSpace(in.Concept)
	if in.StudentID == "" || concept == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	due, err := time.Parse(time.DateOnly, in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de vencimiento", domain.ErrInvalidInput)
	}
	st, err := uc.students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: alumno", domain.ErrNotFound)
	}
	if in.EnrollmentID != "" {
		enr, err := uc.enrollments.GetByID(ctx, in.EnrollmentID)
		if err != nil {
			return nil, err
		}
		if enr == nil || enr.StudentID != in.StudentID {
			return nil, fmt.Errorf("%w: matrícula", domain.ErrNotFound)
		}
	}
	now := uc.now()
	amount := in.Amount.Round(2)
	p := &entity.Payment{
		ID:           uuid.New().String(),
		StudentID:    in.StudentID,
		UserID:       userID,
		EnrollmentID: in.EnrollmentID,
		Kind:         entity.ChargeManual,
		Concept:      strings.ToUpper(concept),
		Amount:       amount,
		LateFee:      decimal.Zero,
		Total:        amount,
		DueDate:      entity.DateOf(due),
		Status:       entity.PaymentPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return ToPaymentResponse(p), nil
}

// ConfirmManual confirma en caja un pago abierto (código de banco MANUAL).
// Confirmar un pago ya pagado devuelve domain.ErrAlreadyProcessed.
func (uc *PaymentUseCase) ConfirmManual(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	var paid *entity.Payment
	err := uc.tx.RunFinance(ctx, func(r TxRepos) error {
		p, err := r.Payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := uc.settle.settleInTx(ctx, r, p, entity.Settlement{
			PaidAt:   uc.now(),
			BankCode: entity.BankCodeManual,
		}); err != nil {
			return err
		}
		paid = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", paid.ID).Str("total", paid.Total.StringFixed(2)).Msg("pago confirmado en caja")
	uc.settle.afterSettle(ctx, paid)
	return ToPaymentResponse(paid), nil
}

// Void anula un pago abierto. Si venía de una solicitud aún pendiente de pago, la solicitud se rechaza.
func (uc *PaymentUseCase) Void(ctx context.Context, id, reason string) (*dto.PaymentResponse, error) {
	var voided *entity.Payment
	err := uc.tx.RunFinance(ctx, func(r TxRepos) error {
		p, err := r.Payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !p.Status.CanTransitionTo(entity.PaymentVoid) {
			return domain.ErrInvalidTransition
		}
		now := uc.now()
		ok, err := r.Payments.MarkVoid(ctx, p.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyProcessed
		}
		p.Status = entity.PaymentVoid
		p.UpdatedAt = now
		if p.RequestID != "" {
			if reason == "" {
				reason = "pago anulado"
			}
			if _, err := r.Requests.UpdateStatus(ctx, p.RequestID, entity.RequestPendingPayment, entity.RequestRejected, reason); err != nil {
				return err
			}
		}
		voided = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", voided.ID).Msg("pago anulado")
	return ToPaymentResponse(voided), nil
}

// Get devuelve un pago por id.
func (uc *PaymentUseCase) Get(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := uc.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return ToPaymentResponse(p), nil
}

// ListByStudent estado de cuenta del alumno, paginado.
func (uc *PaymentUseCase) ListByStudent(ctx context.Context, studentID string, page dto.PageRequest) (*dto.PaymentListResponse, error) {
	page.DefaultPage()
	list, err := uc.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := &dto.PaymentListResponse{
		Items: []dto.PaymentResponse{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}
	if page.Offset >= len(list) {
		return out, nil
	}
	end := min(page.Offset+page.Limit, len(list))
	for _, p := range list[page.Offset:end] {
		out.Items = append(out.Items, *ToPaymentResponse(p))
	}
	return out, nil
}

// ToPaymentResponse mapea la entidad a su DTO.
func ToPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:           p.ID,
		StudentID:    p.StudentID,
		EnrollmentID: p.EnrollmentID,
		RequestID:    p.RequestID,
		Kind:         string(p.Kind),
		Concept:      p.Concept,
		Amount:       p.Amount,
		LateFee:      p.LateFee,
		Total:        p.Total,
		DueDate:      p.DueDate.Format(time.DateOnly),
		PaidAt:       p.PaidAt,
		BankCode:     p.BankCode,
		Status:       string(p.Status),
	}
}
