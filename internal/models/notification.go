package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification delivery status.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// NotificationLog records one tip notification email attempt for a pool
// member. Delivery is asynchronous; the worker updates the status.
type NotificationLog struct {
	ID             uuid.UUID  `json:"id"`
	PoolID         uuid.UUID  `json:"pool_id"`
	PoolEmployeeID uuid.UUID  `json:"pool_employee_id"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
