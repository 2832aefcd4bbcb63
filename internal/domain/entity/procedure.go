package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alcance por nivel educativo de un trámite.
const (
	ScopeAll       = "TODOS"
	ScopeInitial   = "INICIAL"
	ScopePrimary   = "PRIMARIA"
	ScopeSecondary = "SECUNDARIA"
)

// ProcedureType trámite configurable con costo (PENSION, CERTIFICADO, VACANTE, ...).
type ProcedureType struct {
	ID           string
	Name         string
	Cost         decimal.Decimal
	Requirements string
	Scope        string // TODOS, INICIAL, PRIMARIA, SECUNDARIA
	Period       string // REGULAR, VERANO, AMBOS
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RequestStatus estado de una solicitud de trámite.
type RequestStatus string

// Estados de ProcedureRequest.
const (
	RequestPendingPayment    RequestStatus = "PENDIENTE_PAGO"
	RequestPaidPendingReview RequestStatus = "PAGADO_EN_REVISION"
	RequestApproved          RequestStatus = "APROBADO"
	RequestRejected          RequestStatus = "RECHAZADO"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPendingPayment:    {RequestPaidPendingReview, RequestRejected},
	RequestPaidPendingReview: {RequestApproved, RequestRejected},
}

// CanTransitionTo indica si el cambio de estado está permitido.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reporta si el valor pertenece al conjunto cerrado de estados.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPendingPayment, RequestPaidPendingReview, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// ProcedureRequest solicitud de un alumno para un tipo de trámite.
type ProcedureRequest struct {
	ID              string
	StudentID       string
	ProcedureTypeID string
	GradeID         string // grado solicitado (obligatorio para VACANTE)
	Status          RequestStatus
	Attachment      string // ruta relativa del archivo adjunto
	Comment         string
	AdminResponse   string
	RequestedAt     time.Time
	UpdatedAt       time.Time
}
