package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	domfinance "github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// LateFeeUseCase aplica la mora única a los pagos vencidos.
type LateFeeUseCase struct {
	payments repository.PaymentRepository
	fee      decimal.Decimal
	now      Clock
	log      zerolog.Logger
}

// NewLateFeeUseCase construye el caso de uso. fee <= 0 usa la mora por defecto (5.00).
func NewLateFeeUseCase(payments repository.PaymentRepository, fee decimal.Decimal, now Clock, log zerolog.Logger) *LateFeeUseCase {
	if !fee.GreaterThan(decimal.Zero) {
		fee = domfinance.DefaultLateFee
	}
	return &LateFeeUseCase{payments: payments, fee: fee.Round(2), now: now, log: log.With().Str("component", "late_fee").Logger()}
}

// ApplyLateFees fija la mora en los pagos PENDIENTE con vencimiento anterior a asOf y sin mora.
// Una segunda ejecución el mismo día no modifica nada. asOf cero = hoy.
func (uc *LateFeeUseCase) ApplyLateFees(ctx context.Context, asOf time.Time) (*dto.LateFeeResult, error) {
	if asOf.IsZero() {
		asOf = uc.now()
	}
	day := entity.DateOf(asOf)
	n, err := uc.payments.ApplyLateFees(ctx, day, uc.fee)
	if err != nil {
		return nil, fmt.Errorf("moras: %w", err)
	}
	uc.log.Info().Str("as_of", day.Format(time.DateOnly)).Int64("affected", n).Msg("moras aplicadas")
	return &dto.LateFeeResult{AsOf: day.Format(time.DateOnly), Fee: uc.fee, Affected: n}, nil
}
