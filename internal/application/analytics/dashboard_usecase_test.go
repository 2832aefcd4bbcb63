package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/colegio-api/internal/application/analytics"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/infrastructure/memory"
)

func seedPayment(t *testing.T, store *memory.Store, id, total string, due time.Time, status entity.PaymentStatus, paidAt *time.Time) {
	t.Helper()
	amount := decimal.RequireFromString(total)
	require.NoError(t, store.Payments().Create(context.Background(), &entity.Payment{
		ID: id, StudentID: "stu-1", Kind: entity.ChargeManual, Concept: "CARGO " + id,
		Amount: amount, Total: amount, DueDate: due, Status: status, PaidAt: paidAt,
	}))
}

func TestGetSummary(t *testing.T) {
	now := time.Date(2026, time.April, 15, 10, 30, 0, 0, time.UTC)
	store := memory.NewStore()

	today := time.Date(2026, time.April, 15, 8, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, time.March, 30, 9, 0, 0, 0, time.UTC)

	seedPayment(t, store, "p1", "100.00", time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), entity.PaymentPaid, &today)
	seedPayment(t, store, "p2", "50.00", time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), entity.PaymentPaid, &earlier)
	seedPayment(t, store, "p3", "70.00", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), entity.PaymentPaid, &lastMonth)
	seedPayment(t, store, "p4", "305.00", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), entity.PaymentPending, nil)
	seedPayment(t, store, "p5", "300.00", time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), entity.PaymentPending, nil)
	seedPayment(t, store, "p6", "40.00", time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), entity.PaymentVoid, nil)

	uc := analytics.NewDashboardUseCase(store.Analytics(), func() time.Time { return now })
	out, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "100.00", out.CollectedToday.StringFixed(2))
	assert.Equal(t, "150.00", out.CollectedMonth.StringFixed(2))
	assert.Equal(t, "605.00", out.OpenDebt.StringFixed(2))
	assert.Equal(t, int64(2), out.OpenPayments)
	assert.Equal(t, int64(1), out.OverduePayments, "los anulados no cuentan")
	assert.Equal(t, "ABRIL 2026", out.DateLabel)
}

func TestGetSummary_SinMovimientos(t *testing.T) {
	uc := analytics.NewDashboardUseCase(memory.NewStore().Analytics(), func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	})
	out, err := uc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, out.CollectedToday.IsZero())
	assert.True(t, out.OpenDebt.IsZero())
	assert.Zero(t, out.OverduePayments)
}
