package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de cobranza.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CollectedBetween suma de totales con paid_at en [from, to].
func (r *AnalyticsRepo) CollectedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(total), 0)
	FROM payments
	WHERE status = 'PAGADO'
	  AND paid_at BETWEEN $1 AND $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.CollectedBetween: %w", err)
	}
	return sum, nil
}

// OpenDebt total y cantidad de pagos abiertos.
func (r *AnalyticsRepo) OpenDebt(ctx context.Context) (decimal.Decimal, int64, error) {
	const query = `
	SELECT COALESCE(SUM(total), 0), COUNT(*)
	FROM payments
	WHERE ` + openStatusSQL
	var sum decimal.Decimal
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&sum, &n); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.OpenDebt: %w", err)
	}
	return sum, n, nil
}

// OverdueCount pagos abiertos con vencimiento anterior a asOf.
func (r *AnalyticsRepo) OverdueCount(ctx context.Context, asOf time.Time) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM payments
	WHERE ` + openStatusSQL + `
	  AND due_date < $1`
	var n int64
	if err := r.q.QueryRow(ctx, query, asOf).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.OverdueCount: %w", err)
	}
	return n, nil
}
