package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var _ repository.BankNotificationRepository = (*BankNotificationRepo)(nil)

// BankNotificationRepo bitácora de notificaciones del banco.
type BankNotificationRepo struct {
	q Querier
}

// NewBankNotificationRepository construye el adaptador.
func NewBankNotificationRepository(q Querier) *BankNotificationRepo {
	return &BankNotificationRepo{q: q}
}

func (r *BankNotificationRepo) Create(ctx context.Context, n *entity.BankNotification) error {
	query := `
		INSERT INTO bank_notifications
			(id, transaction_id, dni, amount, operated_at, operation_code, channel, reference,
			 raw_payload, status, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.TransactionID, n.DNI, n.Amount, n.OperatedAt, n.OperationCode, nullIfEmpty(n.Channel),
		nullIfEmpty(n.Reference), n.RawPayload, n.Status, n.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert bank_notification: %w", err)
	}
	return nil
}

func (r *BankNotificationRepo) GetByTransactionID(ctx context.Context, transactionID string) (*entity.BankNotification, error) {
	query := `
		SELECT id, transaction_id, dni, amount, operated_at, operation_code, channel, reference,
		       raw_payload, status, payment_id, error, received_at, processed_at
		FROM bank_notifications WHERE transaction_id = $1`
	var n entity.BankNotification
	var channel, reference, paymentID, errMsg *string
	err := r.q.QueryRow(ctx, query, transactionID).Scan(
		&n.ID, &n.TransactionID, &n.DNI, &n.Amount, &n.OperatedAt, &n.OperationCode, &channel, &reference,
		&n.RawPayload, &n.Status, &paymentID, &errMsg, &n.ReceivedAt, &n.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bank_notification: %w", err)
	}
	n.Channel, n.Reference, n.PaymentID, n.Error = deref(channel), deref(reference), deref(paymentID), deref(errMsg)
	return &n, nil
}

func (r *BankNotificationRepo) UpdateResult(ctx context.Context, id, status, paymentID, errMsg string, processedAt time.Time) error {
	query := `
		UPDATE bank_notifications
		SET status = $2, payment_id = $3, error = $4, processed_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, nullIfEmpty(paymentID), nullIfEmpty(errMsg), processedAt)
	if err != nil {
		return fmt.Errorf("update bank_notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
