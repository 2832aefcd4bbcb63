package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de un pago del ledger.
type PaymentStatus string

// Estados de Payment. PAID y VOID son terminales.
const (
	PaymentPending PaymentStatus = "PENDIENTE"
	PaymentOverdue PaymentStatus = "VENCIDO"
	PaymentPaid    PaymentStatus = "PAGADO"
	PaymentVoid    PaymentStatus = "ANULADO"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentOverdue, PaymentVoid},
	PaymentOverdue: {PaymentPaid, PaymentVoid},
}

// CanTransitionTo indica si el cambio de estado está permitido.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen true si el pago aún puede cobrarse.
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentPending || s == PaymentOverdue
}

// OpenPaymentStatuses estados desde los que se puede confirmar un pago.
var OpenPaymentStatuses = []PaymentStatus{PaymentPending, PaymentOverdue}

// ChargeKind origen del cargo; junto con el periodo forma la clave de idempotencia de pensiones.
type ChargeKind string

// Tipos de cargo.
const (
	ChargePension   ChargeKind = "PENSION"
	ChargeProcedure ChargeKind = "TRAMITE"
	ChargeManual    ChargeKind = "MANUAL"
)

// BankCodeManual código de operación para confirmaciones en caja.
const BankCodeManual = "MANUAL"

// Payment fila del ledger: una obligación cobrable.
type Payment struct {
	ID           string
	StudentID    string
	UserID       string // responsable (opcional)
	EnrollmentID string // opcional
	RequestID    string // solicitud de trámite de origen (opcional)
	Kind         ChargeKind
	PeriodYear   int // solo PENSION
	PeriodMonth  int // solo PENSION
	Concept      string
	Amount       decimal.Decimal
	LateFee      decimal.Decimal
	Total        decimal.Decimal
	DueDate      time.Time
	PaidAt       *time.Time
	BankCode     string
	BankPayload  string // JSON crudo de la notificación bancaria
	Status       PaymentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Settlement datos con los que se marca un pago como PAGADO.
type Settlement struct {
	PaidAt      time.Time
	BankCode    string
	BankPayload string
}
