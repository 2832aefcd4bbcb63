package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

func TestPaymentStatus_Transiciones(t *testing.T) {
	assert.True(t, entity.PaymentPending.CanTransitionTo(entity.PaymentPaid))
	assert.True(t, entity.PaymentPending.CanTransitionTo(entity.PaymentOverdue))
	assert.True(t, entity.PaymentPending.CanTransitionTo(entity.PaymentVoid))
	assert.True(t, entity.PaymentOverdue.CanTransitionTo(entity.PaymentPaid))
	assert.True(t, entity.PaymentOverdue.CanTransitionTo(entity.PaymentVoid))

	assert.False(t, entity.PaymentPaid.CanTransitionTo(entity.PaymentPending), "PAGADO es terminal")
	assert.False(t, entity.PaymentPaid.CanTransitionTo(entity.PaymentVoid), "PAGADO es terminal")
	assert.False(t, entity.PaymentVoid.CanTransitionTo(entity.PaymentPaid), "ANULADO es terminal")
	assert.False(t, entity.PaymentOverdue.CanTransitionTo(entity.PaymentPending))
}

func TestPaymentStatus_IsOpen(t *testing.T) {
	assert.True(t, entity.PaymentPending.IsOpen())
	assert.True(t, entity.PaymentOverdue.IsOpen())
	assert.False(t, entity.PaymentPaid.IsOpen())
	assert.False(t, entity.PaymentVoid.IsOpen())
}

func TestRequestStatus_Transiciones(t *testing.T) {
	assert.True(t, entity.RequestPendingPayment.CanTransitionTo(entity.RequestPaidPendingReview))
	assert.True(t, entity.RequestPendingPayment.CanTransitionTo(entity.RequestRejected))
	assert.True(t, entity.RequestPaidPendingReview.CanTransitionTo(entity.RequestApproved))
	assert.True(t, entity.RequestPaidPendingReview.CanTransitionTo(entity.RequestRejected))

	assert.False(t, entity.RequestPendingPayment.CanTransitionTo(entity.RequestApproved), "no se aprueba sin pago")
	assert.False(t, entity.RequestApproved.CanTransitionTo(entity.RequestRejected))
	assert.False(t, entity.RequestRejected.CanTransitionTo(entity.RequestPendingPayment))

	assert.True(t, entity.RequestApproved.Valid())
	assert.False(t, entity.RequestStatus("EN_PROCESO").Valid())
}

func TestSchoolYear_IsActiveOn(t *testing.T) {
	end := time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)
	sy := &entity.SchoolYear{ID: "202601", StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), EndDate: &end}

	assert.False(t, sy.IsActiveOn(time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)))
	assert.True(t, sy.IsActiveOn(time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, sy.IsActiveOn(time.Date(2026, time.December, 20, 18, 0, 0, 0, time.UTC)), "el último día es inclusivo")
	assert.False(t, sy.IsActiveOn(time.Date(2026, time.December, 21, 0, 0, 0, 0, time.UTC)))

	open := &entity.SchoolYear{ID: "202701", StartDate: time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC)}
	assert.True(t, open.IsActiveOn(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)), "sin cierre sigue activo")
}

func TestSchoolYear_EnrollmentOpenOn(t *testing.T) {
	from := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC)
	sy := &entity.SchoolYear{ID: "202701", EnrollmentStart: &from, EnrollmentEnd: &to}

	assert.True(t, sy.EnrollmentOpenOn(time.Date(2026, time.December, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, sy.EnrollmentOpenOn(time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, (&entity.SchoolYear{}).EnrollmentOpenOn(time.Now()), "sin ventana no hay inscripción")
}

func TestStudent_FullName(t *testing.T) {
	s := &entity.Student{FirstNames: "Ana María", LastNames: "Quispe Rojas"}
	assert.Contains(t, s.FullName(), "Quispe Rojas")
	assert.Contains(t, s.FullName(), "Ana María")
}
