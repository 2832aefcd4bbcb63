// Package analytics contiene los casos de uso del dashboard de cobranzas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// DashboardUseCase resumen de cobranza del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, now func() time.Time) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: now}
}

// GetSummary construye el FinanceDashboardDTO.
//
// Cuatro consultas en paralelo:
//  1. CollectedBetween(hoy)
//  2. CollectedBetween(mes)
//  3. OpenDebt
//  4. OverdueCount(hoy)
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.FinanceDashboardDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := &dto.FinanceDashboardDTO{
		DateLabel: fmt.Sprintf("%s %d", domfinance.MonthNameES(int(now.Month())), now.Year()),
	}

	// Si una consulta falla, el contexto cancela las demás.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := uc.analyticsRepo.CollectedBetween(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: cobrado hoy: %w", err)
		}
		out.CollectedToday = v
		return nil
	})
	g.Go(func() error {
		v, err := uc.analyticsRepo.CollectedBetween(gctx, monthStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: cobrado mes: %w", err)
		}
		out.CollectedMonth = v
		return nil
	})
	g.Go(func() error {
		v, n, err := uc.analyticsRepo.OpenDebt(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: deuda abierta: %w", err)
		}
		out.OpenDebt, out.OpenPayments = v, n
		return nil
	})
	g.Go(func() error {
		n, err := uc.analyticsRepo.OverdueCount(gctx, entity.DateOf(now))
		if err != nil {
			return fmt.Errorf("dashboard: vencidos: %w", err)
		}
		out.OverduePayments = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
