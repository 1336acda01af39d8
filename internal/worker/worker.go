package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pourboire/backend/pkg/queue"
)

// Sender delivers one email.
type Sender interface {
	Send(to, subject, bodyHTML string) error
}

// StatusStore updates notification delivery status.
type StatusStore interface {
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// EmailProcessor processes tip notification email jobs: send via SMTP,
// update the notification log. Delivery failures never touch distribution
// data; they only mark the log row and go through the queue's retry path.
type EmailProcessor struct {
	logs   StatusStore
	mailer Sender
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(logs StatusStore, mailer Sender, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, mailer: mailer, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.mailer.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if markErr := p.logs.MarkFailed(ctx, payload.NotificationID, err.Error()); markErr != nil {
			p.logger.Error("mark notification failed", zap.Error(markErr), zap.String("notification_id", payload.NotificationID.String()))
		}
		return fmt.Errorf("send email: %w", err)
	}

	if err := p.logs.MarkSent(ctx, payload.NotificationID); err != nil {
		p.logger.Error("mark notification sent", zap.Error(err), zap.String("notification_id", payload.NotificationID.String()))
	}
	p.logger.Info("notification email sent",
		zap.String("notification_id", payload.NotificationID.String()),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
