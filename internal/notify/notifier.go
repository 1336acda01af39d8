package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pourboire/backend/internal/models"
	"github.com/pourboire/backend/pkg/queue"
)

// EmailFetcher resolves a member's notification address through the identity
// service, using the manager's forwarded bearer token.
type EmailFetcher interface {
	FetchEmail(ctx context.Context, userID uuid.UUID, token string) (string, error)
}

// Enqueuer hands email jobs to the delivery worker.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// LogStore records notification attempts.
type LogStore interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// Notifier resolves each member's address and queues a tip notification
// email after a distribution batch commits. Failures are per-member: one
// unresolvable address is logged and skipped, the remaining members are
// still processed, and the stored distributions are never touched.
type Notifier struct {
	identity EmailFetcher
	logs     LogStore
	queue    Enqueuer
	logger   *zap.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(identity EmailFetcher, logs LogStore, q Enqueuer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{identity: identity, logs: logs, queue: q, logger: logger}
}

// NotifyDistributions processes one stored distribution batch, member by
// member.
func (n *Notifier) NotifyDistributions(ctx context.Context, pool *models.TipPool, employees []models.PoolEmployee, distributions []models.TipDistribution, token string) {
	byMembership := make(map[uuid.UUID]models.PoolEmployee, len(employees))
	for _, emp := range employees {
		byMembership[emp.ID] = emp
	}

	for _, dist := range distributions {
		emp, ok := byMembership[dist.PoolEmployeeID]
		if !ok {
			continue
		}

		email, err := n.identity.FetchEmail(ctx, emp.UserID, token)
		if err != nil {
			n.logger.Warn("resolve notification address failed",
				zap.String("pool_id", pool.ID.String()),
				zap.String("user_id", emp.UserID.String()),
				zap.Error(err))
			continue
		}

		subject := fmt.Sprintf("Vos pourboires pour le pool %s", pool.Name)
		body := fmt.Sprintf(
			"<p>Bonjour,</p><p>Vos pourboires pour la période du %s au %s (%s) s'élèvent à : <strong>%s $</strong>.</p><p>Cordialement,</p><p>Votre équipe de gestion des pourboires</p>",
			pool.StartDate.Format("2006-01-02"),
			pool.EndDate.Format("2006-01-02"),
			pool.Name,
			dist.DistributedAmount.StringFixed(2),
		)

		log := &models.NotificationLog{
			PoolID:         pool.ID,
			PoolEmployeeID: emp.ID,
			RecipientEmail: email,
			Subject:        subject,
			Status:         models.NotificationStatusPending,
		}
		if err := n.logs.Create(ctx, log); err != nil {
			n.logger.Warn("record notification failed",
				zap.String("pool_id", pool.ID.String()),
				zap.String("user_id", emp.UserID.String()),
				zap.Error(err))
			continue
		}

		payload := queue.EmailPayload{
			NotificationID: log.ID,
			PoolID:         pool.ID,
			RecipientEmail: email,
			Subject:        subject,
			BodyHTML:       body,
		}
		if err := n.queue.EnqueueEmail(ctx, payload); err != nil {
			n.logger.Warn("enqueue notification failed",
				zap.String("notification_id", log.ID.String()),
				zap.Error(err))
			_ = n.logs.MarkFailed(ctx, log.ID, err.Error())
		}
	}
}
