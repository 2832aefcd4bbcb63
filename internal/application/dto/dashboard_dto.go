package dto

import "github.com/shopspring/decimal"

// FinanceDashboardDTO respuesta de GET /api/finance/dashboard.
type FinanceDashboardDTO struct {
	// Cobrado (pagos confirmados) hoy y en el mes en curso
	CollectedToday decimal.Decimal `json:"collected_today"`
	CollectedMonth decimal.Decimal `json:"collected_month"`

	// Deuda abierta (PENDIENTE + VENCIDO)
	OpenDebt     decimal.Decimal `json:"open_debt"`
	OpenPayments int64           `json:"open_payments"`
	// Pagos abiertos con vencimiento anterior a hoy
	OverduePayments int64 `json:"overdue_payments"`

	DateLabel string `json:"date_label"` // ej: "Marzo 2026"
}
