package finance

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// DefaultAttachmentExts extensiones aceptadas para adjuntos de solicitudes.
var DefaultAttachmentExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Attachment archivo recibido con la solicitud.
type Attachment struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AttachmentPolicy restricciones sobre adjuntos.
type AttachmentPolicy struct {
	AllowedExts []string // con punto y en minúsculas
	MaxBytes    int64    // 0 = sin límite
}

// ProcedureRequestUseCase alta y revisión de solicitudes de trámite.
type ProcedureRequestUseCase struct {
	tx         TxRunner
	students   repository.StudentRepository
	procedures repository.ProcedureTypeRepository
	requests   repository.ProcedureRequestRepository
	payments   repository.PaymentRepository
	store      AttachmentStore
	policy     AttachmentPolicy
	now        Clock
	log        zerolog.Logger
}

// NewProcedureRequestUseCase construye el caso de uso.
func NewProcedureRequestUseCase(
	tx TxRunner,
	students repository.StudentRepository,
	procedures repository.ProcedureTypeRepository,
	requests repository.ProcedureRequestRepository,
	payments repository.PaymentRepository,
	store AttachmentStore,
	policy AttachmentPolicy,
	now Clock,
	log zerolog.Logger,
) *ProcedureRequestUseCase {
	if len(policy.AllowedExts) == 0 {
		policy.AllowedExts = DefaultAttachmentExts
	}
	return &ProcedureRequestUseCase{
		tx:         tx,
		students:   students,
		procedures: procedures,
		requests:   requests,
		payments:   payments,
		store:      store,
		policy:     policy,
		now:        now,
		log:        log.With().Str("component", "procedure_request").Logger(),
	}
}

// Submit registra la solicitud. Con costo > 0 crea en la misma transacción exactamente un pago
// PENDIENTE vinculado; con costo 0 la solicitud nace PAGADO_EN_REVISION.
// Si hay adjunto se guarda antes de la transacción y se elimina si la transacción falla.
func (uc *ProcedureRequestUseCase) Submit(ctx context.Context, in dto.SubmitRequestInput, att *Attachment) (*dto.ProcedureRequestResponse, error) {
	if in.StudentID == "" || in.ProcedureTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	student, err := uc.students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("%w: alumno", domain.ErrNotFound)
	}
	pt, err := uc.procedures.GetByID(ctx, in.ProcedureTypeID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, fmt.Errorf("%w: tipo de trámite", domain.ErrNotFound)
	}
	if !pt.Active {
		return nil, fmt.Errorf("%w: el trámite no está activo", domain.ErrInvalidInput)
	}
	if domfinance.IsSeatReservation(pt.Name) && strings.TrimSpace(in.GradeID) == "" {
		return nil, fmt.Errorf("%w: la reserva de vacante requiere el grado", domain.ErrInvalidInput)
	}

	var stored string
	if att != nil {
		stored, err = uc.saveAttachment(ctx, in.StudentID, att)
		if err != nil {
			return nil, err
		}
	}

	now := uc.now()
	req := &entity.ProcedureRequest{
		ID:              uuid.New().String(),
		StudentID:       in.StudentID,
		ProcedureTypeID: pt.ID,
		GradeID:         strings.TrimSpace(in.GradeID),
		Status:          entity.RequestPaidPendingReview,
		Attachment:      stored,
		Comment:         strings.TrimSpace(in.Comment),
		RequestedAt:     now,
		UpdatedAt:       now,
	}
	var pay *entity.Payment
	if pt.Cost.GreaterThan(decimal.Zero) {
		req.Status = entity.RequestPendingPayment
		pay = &entity.Payment{
			ID:        uuid.New().String(),
			StudentID: in.StudentID,
			RequestID: req.ID,
			Kind:      entity.ChargeProcedure,
			Concept:   domfinance.NormalizeName(pt.Name),
			Amount:    pt.Cost,
			LateFee:   decimal.Zero,
			Total:     pt.Cost,
			DueDate:   entity.DateOf(now),
			Status:    entity.PaymentPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	err = uc.tx.RunFinance(ctx, func(r TxRepos) error {
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		if pay != nil {
			return r.Payments.Create(ctx, pay)
		}
		return nil
	})
	if err != nil {
		if stored != "" {
			if rmErr := uc.store.Remove(ctx, stored); rmErr != nil {
				uc.log.Error().Err(rmErr).Str("path", stored).Msg("no se pudo eliminar el adjunto huérfano")
			}
		}
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("status", string(req.Status)).Msg("solicitud registrada")

	out := toRequestResponse(req)
	if pay != nil {
		out.Payment = ToPaymentResponse(pay)
	}
	return out, nil
}

func (uc *ProcedureRequestUseCase) saveAttachment(ctx context.Context, studentID string, att *Attachment) (string, error) {
	ext := strings.ToLower(filepath.Ext(att.Filename))
	allowed := false
	for _, e := range uc.policy.AllowedExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: extensión %q", domain.ErrAttachmentRejected, ext)
	}
	if att.Size == 0 {
		return "", fmt.Errorf("%w: archivo vacío", domain.ErrAttachmentRejected)
	}
	if uc.policy.MaxBytes > 0 && att.Size > uc.policy.MaxBytes {
		return "", fmt.Errorf("%w: excede %d bytes", domain.ErrAttachmentRejected, uc.policy.MaxBytes)
	}
	if uc.store == nil {
		return "", fmt.Errorf("adjunto: almacenamiento no configurado")
	}
	name := fmt.Sprintf("%s_%s%s", studentID, uuid.New().String(), ext)
	path, err := uc.store.Save(ctx, name, att.Content)
	if err != nil {
		return "", fmt.Errorf("adjunto: %w", err)
	}
	return path, nil
}

// Review aprueba o rechaza una solicitud. Rechazar una solicitud con pago abierto anula el pago
// en la misma transacción.
func (uc *ProcedureRequestUseCase) Review(ctx context.Context, id string, in dto.ReviewRequestInput) (*dto.ProcedureRequestResponse, error) {
	to := entity.RequestStatus(in.Decision)
	if to != entity.RequestApproved && to != entity.RequestRejected {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.ProcedureRequest
	var linked *entity.Payment
	err := uc.tx.RunFinance(ctx, func(r TxRepos) error {
		req, err := r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if !req.Status.CanTransitionTo(to) {
			return domain.ErrInvalidTransition
		}
		ok, err := r.Requests.UpdateStatus(ctx, req.ID, req.Status, to, in.Response)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConflict
		}
		req.Status = to
		req.AdminResponse = in.Response
		req.UpdatedAt = uc.now()

		pays, err := r.Payments.ListByRequest(ctx, req.ID)
		if err != nil {
			return err
		}
		for _, p := range pays {
			if to == entity.RequestRejected && p.Status.IsOpen() {
				if _, err := r.Payments.MarkVoid(ctx, p.ID, req.UpdatedAt); err != nil {
					return err
				}
				p.Status = entity.PaymentVoid
			}
			linked = p
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", out.ID).Str("status", string(out.Status)).Msg("solicitud revisada")
	resp := toRequestResponse(out)
	if linked != nil {
		resp.Payment = ToPaymentResponse(linked)
	}
	return resp, nil
}

// Get devuelve la solicitud con su pago.
func (uc *ProcedureRequestUseCase) Get(ctx context.Context, id string) (*dto.ProcedureRequestResponse, error) {
	req, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	pays, err := uc.payments.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out := toRequestResponse(req)
	if len(pays) > 0 {
		out.Payment = ToPaymentResponse(pays[0])
	}
	return out, nil
}

// ListByStudent solicitudes del alumno, más recientes primero.
func (uc *ProcedureRequestUseCase) ListByStudent(ctx context.Context, studentID string) ([]dto.ProcedureRequestResponse, error) {
	list, err := uc.requests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProcedureRequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRequestResponse(r))
	}
	return out, nil
}

func toRequestResponse(r *entity.ProcedureRequest) *dto.ProcedureRequestResponse {
	return &dto.ProcedureRequestResponse{
		ID:              r.ID,
		StudentID:       r.StudentID,
		ProcedureTypeID: r.ProcedureTypeID,
		GradeID:         r.GradeID,
		Status:          string(r.Status),
		Attachment:      r.Attachment,
		Comment:         r.Comment,
		AdminResponse:   r.AdminResponse,
		RequestedAt:     r.RequestedAt,
	}
}
