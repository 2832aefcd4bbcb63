package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository consultas agregadas read-only sobre el ledger.
type AnalyticsRepository interface {
	// CollectedBetween suma de totales pagados con fecha de pago en [from, to].
	CollectedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// OpenDebt suma de totales abiertos y cantidad de pagos.
	OpenDebt(ctx context.Context) (decimal.Decimal, int64, error)
	// OverdueCount pagos abiertos con vencimiento anterior a asOf.
	OverdueCount(ctx context.Context, asOf time.Time) (int64, error)
}
