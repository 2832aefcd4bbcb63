package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appfinance "github.com/jhoicas/colegio-api/internal/application/finance"
)

var _ appfinance.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunFinance inicia una transacción READ COMMITTED con los repos del ledger atados a ella
// y hace Commit si fn no devuelve error; Rollback en cualquier otro caso.
func (r *TxRunner) RunFinance(ctx context.Context, fn func(repos appfinance.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := appfinance.TxRepos{
		Payments:      NewPaymentRepository(tx),
		Requests:      NewProcedureRequestRepository(tx),
		Procedures:    NewProcedureTypeRepository(tx),
		Enrollments:   NewEnrollmentRepository(tx),
		Exonerations:  NewExonerationRepository(tx),
		Notifications: NewBankNotificationRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
