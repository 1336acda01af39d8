package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pourboire/backend/internal/models"
)

// Repository handles notification_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notification log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending notification log row.
func (r *Repository) Create(ctx context.Context, log *models.NotificationLog) error {
	const q = `INSERT INTO notification_logs (pool_id, pool_employee_id, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.PoolID, log.PoolEmployeeID, log.RecipientEmail, log.Subject, models.NotificationStatusPending).
		Scan(&log.ID, &log.CreatedAt)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE notification_logs SET status = $1, sent_at = NOW(), error_message = NULL WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, models.NotificationStatusSent, id)
	return err
}

// MarkFailed records a delivery failure.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	const q = `UPDATE notification_logs SET status = $1, error_message = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, models.NotificationStatusFailed, errMsg, id)
	return err
}

// ListByPool returns a pool's notification log, newest first.
func (r *Repository) ListByPool(ctx context.Context, poolID uuid.UUID) ([]models.NotificationLog, error) {
	const q = `SELECT id, pool_id, pool_employee_id, recipient_email, subject, status, sent_at, error_message, created_at
		FROM notification_logs
		WHERE pool_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.NotificationLog{}
	for rows.Next() {
		var nl models.NotificationLog
		var subject, errMsg *string
		if err := rows.Scan(&nl.ID, &nl.PoolID, &nl.PoolEmployeeID, &nl.RecipientEmail, &subject, &nl.Status, &nl.SentAt, &errMsg, &nl.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			nl.Subject = *subject
		}
		if errMsg != nil {
			nl.ErrorMessage = *errMsg
		}
		list = append(list, nl)
	}
	return list, rows.Err()
}
