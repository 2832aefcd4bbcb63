package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de procesamiento de una notificación bancaria.
const (
	NotificationReceived   = "RECIBIDA"
	NotificationProcessed  = "PROCESADA"
	NotificationUnresolved = "SIN_RESOLVER" // requiere intervención manual
	NotificationRejected   = "RECHAZADA"
)

// BankNotification registro de auditoría de cada notificación del banco (webhook).
type BankNotification struct {
	ID            string
	TransactionID string // id de transacción del banco (único)
	DNI           string
	Amount        decimal.Decimal
	OperatedAt    time.Time
	OperationCode string
	Channel       string
	Reference     string // id de pago informado por el banco (opcional)
	RawPayload    string
	Status        string
	PaymentID     string
	Error         string
	ReceivedAt    time.Time
	ProcessedAt   *time.Time
}
