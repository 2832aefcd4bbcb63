package finance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// settler paso común de confirmación (caja y banco): PENDIENTE/VENCIDO -> PAGADO,
// solicitud vinculada -> PAGADO_EN_REVISION y, tras el commit, la cascada de vacante.
type settler struct {
	requests    repository.ProcedureRequestRepository
	enrollments repository.EnrollmentRepository
	provisioner EnrollmentProvisioner
	pensions    *PensionUseCase
	now         Clock
	log         zerolog.Logger
}

// settleInTx marca el pago como pagado dentro de la transacción del llamador.
// Si otro escritor lo confirmó antes devuelve domain.ErrAlreadyProcessed sin tocar sus datos.
func (s *settler) settleInTx(ctx context.Context, r TxRepos, p *entity.Payment, st entity.Settlement) error {
	if !p.Status.CanTransitionTo(entity.PaymentPaid) {
		return domain.ErrAlreadyProcessed
	}
	ok, err := r.Payments.MarkPaid(ctx, p.ID, st)
	if err != nil {
		return fmt.Errorf("confirmar pago: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyProcessed
	}
	paidAt := st.PaidAt
	p.Status = entity.PaymentPaid
	p.PaidAt = &paidAt
	p.BankCode = st.BankCode
	p.BankPayload = st.BankPayload
	p.UpdatedAt = s.now()

	if p.RequestID == "" {
		return nil
	}
	moved, err := r.Requests.UpdateStatus(ctx, p.RequestID, entity.RequestPendingPayment, entity.RequestPaidPendingReview, "")
	if err != nil {
		return fmt.Errorf("confirmar pago: solicitud: %w", err)
	}
	if !moved {
		s.log.Warn().Str("payment_id", p.ID).Str("request_id", p.RequestID).
			Msg("la solicitud vinculada ya no estaba pendiente de pago")
	}
	return nil
}

// afterSettle efectos posteriores al commit. Si el pago es una reserva de vacante se matricula
// al alumno y se genera la pensión del mes en curso. Los fallos se registran; el pago ya quedó confirmado.
func (s *settler) afterSettle(ctx context.Context, p *entity.Payment) {
	if !domfinance.IsSeatReservation(p.Concept) {
		return
	}
	l := s.log.With().Str("payment_id", p.ID).Str("student_id", p.StudentID).Logger()
	if s.provisioner == nil {
		l.Warn().Msg("reserva de vacante pagada sin aprovisionador de matrícula configurado")
		return
	}

	var gradeID string
	if p.RequestID != "" {
		req, err := s.requests.GetByID(ctx, p.RequestID)
		if err != nil {
			l.Error().Err(err).Msg("vacante: no se pudo leer la solicitud")
			return
		}
		if req != nil {
			gradeID = req.GradeID
		}
	}
	if _, err := s.provisioner.ProvisionSeat(ctx, p.StudentID, gradeID); err != nil {
		l.Error().Err(err).Msg("vacante: falló la matrícula automática")
		return
	}

	enr, err := s.enrollments.GetLatestEnrolledByStudent(ctx, p.StudentID)
	if err != nil {
		l.Error().Err(err).Msg("vacante: no se pudo leer la matrícula")
		return
	}
	if enr == nil {
		l.Warn().Msg("vacante: el alumno aún no tiene matrícula, no se genera pensión")
		return
	}
	today := s.now()
	outcome, _, err := s.pensions.GenerateMonthlyPension(ctx, PensionInput{
		StudentID:    p.StudentID,
		EnrollmentID: enr.ID,
		PlanType:     enr.PlanType,
		Month:        int(today.Month()),
		Year:         today.Year(),
	})
	if err != nil {
		l.Error().Err(err).Msg("vacante: falló la generación de la primera pensión")
		return
	}
	l.Info().Str("enrollment_id", enr.ID).Str("outcome", string(outcome)).Msg("vacante: matrícula y pensión procesadas")
}
