package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Calendario ───────────────────────────────────────────────────────────────

// CreateSchoolYearRequest body para POST /api/school-years. Fechas YYYY-MM-DD.
type CreateSchoolYearRequest struct {
	ID              string `json:"id" validate:"required,len=6,numeric"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Type            string `json:"type" validate:"required,oneof=REGULAR VERANO"`
	EnrollmentStart string `json:"enrollment_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EnrollmentEnd   string `json:"enrollment_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SchoolYearResponse año escolar con el flag activo calculado al momento de la lectura.
type SchoolYearResponse struct {
	ID              string `json:"id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date,omitempty"`
	Type            string `json:"type"`
	Active          bool   `json:"active"`
	EnrollmentStart string `json:"enrollment_start,omitempty"`
	EnrollmentEnd   string `json:"enrollment_end,omitempty"`
}

// ── Catálogo de trámites ─────────────────────────────────────────────────────

// ProcedureTypeRequest body para crear/actualizar un tipo de trámite.
type ProcedureTypeRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Cost         decimal.Decimal `json:"cost"`
	Requirements string          `json:"requirements,omitempty"`
	Scope        string          `json:"scope" validate:"omitempty,oneof=TODOS INICIAL PRIMARIA SECUNDARIA"`
	Period       string          `json:"period" validate:"omitempty,oneof=REGULAR VERANO AMBOS"`
	Active       *bool           `json:"active,omitempty"`
}

// ProcedureTypeResponse tipo de trámite.
type ProcedureTypeResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Cost         decimal.Decimal `json:"cost"`
	Requirements string          `json:"requirements,omitempty"`
	Scope        string          `json:"scope"`
	Period       string          `json:"period"`
	Active       bool            `json:"active"`
}

// ── Solicitudes de trámite ───────────────────────────────────────────────────

// SubmitRequestInput entrada de la solicitud (form multipart; el archivo viaja aparte).
type SubmitRequestInput struct {
	StudentID       string `json:"student_id" form:"student_id" validate:"required"`
	ProcedureTypeID string `json:"procedure_type_id" form:"procedure_type_id" validate:"required"`
	GradeID         string `json:"grade_id,omitempty" form:"grade_id"`
	Comment         string `json:"comment,omitempty" form:"comment" validate:"max=2000"`
}

// ReviewRequestInput body para POST /api/finance/requests/:id/review.
type ReviewRequestInput struct {
	Decision string `json:"decision" validate:"required,oneof=APROBADO RECHAZADO"`
	Response string `json:"response,omitempty" validate:"max=2000"`
}

// ProcedureRequestResponse solicitud con su pago asociado (si tiene costo).
type ProcedureRequestResponse struct {
	ID              string           `json:"id"`
	StudentID       string           `json:"student_id"`
	ProcedureTypeID string           `json:"procedure_type_id"`
	GradeID         string           `json:"grade_id,omitempty"`
	Status          string           `json:"status"`
	Attachment      string           `json:"attachment,omitempty"`
	Comment         string           `json:"comment,omitempty"`
	AdminResponse   string           `json:"admin_response,omitempty"`
	RequestedAt     time.Time        `json:"requested_at"`
	Payment         *PaymentResponse `json:"payment,omitempty"`
}

// ── Pagos ────────────────────────────────────────────────────────────────────

// CreatePaymentRequest cargo manual registrado en caja.
type CreatePaymentRequest struct {
	StudentID    string          `json:"student_id" validate:"required"`
	EnrollmentID string          `json:"enrollment_id,omitempty"`
	Concept      string          `json:"concept" validate:"required,max=150"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// PaymentResponse fila del ledger.
type PaymentResponse struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"student_id"`
	EnrollmentID string          `json:"enrollment_id,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	Kind         string          `json:"kind"`
	Concept      string          `json:"concept"`
	Amount       decimal.Decimal `json:"amount"`
	LateFee      decimal.Decimal `json:"late_fee"`
	Total        decimal.Decimal `json:"total"`
	DueDate      string          `json:"due_date"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	BankCode     string          `json:"bank_code,omitempty"`
	Status       string          `json:"status"`
}

// PaymentListResponse estado de cuenta paginado.
type PaymentListResponse struct {
	Items []PaymentResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// GeneratePensionRequest generación puntual de una pensión.
type GeneratePensionRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	PlanType     string `json:"plan_type" validate:"required,oneof=REGULAR VERANO"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
	Year         int    `json:"year" validate:"required,min=2000,max=2100"`
}

// GeneratePensionResponse resultado de la generación puntual.
type GeneratePensionResponse struct {
	Outcome string           `json:"outcome"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// GenerationSummary resultado de la generación masiva (cron).
type GenerationSummary struct {
	Month        int      `json:"month"`
	Year         int      `json:"year"`
	SchoolYears  []string `json:"school_years"`
	Enrollments  int      `json:"enrollments"`
	Created      int      `json:"created"`
	Existing     int      `json:"existing"`
	OutOfSession int      `json:"out_of_session"`
	Exonerated   int      `json:"exonerated"`
	NoTariff     int      `json:"no_tariff"`
	Failed       int      `json:"failed"`
}

// LateFeeResult resultado de la aplicación de moras.
type LateFeeResult struct {
	AsOf     string          `json:"as_of"`
	Fee      decimal.Decimal `json:"fee"`
	Affected int64           `json:"affected"`
}

// RevisePendingRequest revisión masiva de montos pendientes.
type RevisePendingRequest struct {
	ConceptFilter string          `json:"concept_filter" validate:"required"`
	MonthFrom     int             `json:"month_from" validate:"required,min=1,max=12"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	SchoolYearID  string          `json:"school_year_id,omitempty"`
}

// RevisePendingResponse filas actualizadas.
type RevisePendingResponse struct {
	SchoolYearID string `json:"school_year_id"`
	Updated      int64  `json:"updated"`
}

// CreateExonerationRequest descuento sobre una matrícula.
type CreateExonerationRequest struct {
	EnrollmentID    string          `json:"enrollment_id" validate:"required"`
	Reason          string          `json:"reason" validate:"required,max=100"`
	Concept         string          `json:"concept" validate:"required,max=50"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ExonerationResponse descuento registrado.
type ExonerationResponse struct {
	ID              string          `json:"id"`
	EnrollmentID    string          `json:"enrollment_id"`
	Reason          string          `json:"reason"`
	Concept         string          `json:"concept"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Active          bool            `json:"active"`
}

// ── Banco ────────────────────────────────────────────────────────────────────

// BankNotificationRequest payload del webhook bancario (contrato del banco).
type BankNotificationRequest struct {
	TransactionID string          `json:"id_transaccion" validate:"required"`
	DNI           string          `json:"dni_alumno" validate:"required"`
	AmountPaid    decimal.Decimal `json:"monto_pagado"`
	OperatedAt    string          `json:"fecha_operacion" validate:"required"`
	OperationCode string          `json:"codigo_operacion" validate:"required"`
	Channel       string          `json:"canal"`
	Reference     string          `json:"referencia,omitempty"` // id de pago devuelto en la consulta de deuda
	Checksum      string          `json:"checksum" validate:"required"`
}

// BankNotificationResponse resultado de la conciliación.
type BankNotificationResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"id_transaccion"`
	PaymentID     string `json:"payment_id,omitempty"`
	Replayed      bool   `json:"replayed,omitempty"`
}

// DebtItem deuda pendiente para la consulta del banco.
type DebtItem struct {
	Reference string          `json:"referencia"`
	Concept   string          `json:"concepto"`
	Amount    decimal.Decimal `json:"monto"`
	LateFee   decimal.Decimal `json:"mora"`
	Total     decimal.Decimal `json:"monto_total"`
	DueDate   string          `json:"fecha_vencimiento"`
}

// DebtInquiryResponse respuesta de GET /api/bank/debts/:dni.
type DebtInquiryResponse struct {
	DNI         string          `json:"dni"`
	StudentName string          `json:"alumno"`
	Debts       []DebtItem      `json:"deudas"`
	TotalDebt   decimal.Decimal `json:"deuda_total"`
}
