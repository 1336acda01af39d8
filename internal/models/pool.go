package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistributionModel is the apportionment strategy for a tip pool.
type DistributionModel string

const (
	ModelEqual      DistributionModel = "equal"
	ModelHours      DistributionModel = "hours"
	ModelPercentage DistributionModel = "percentage"
)

// ParseDistributionModel validates a raw model string. This is the single
// validation point shared by pool create, pool update, and the engine.
func ParseDistributionModel(s string) (DistributionModel, bool) {
	switch DistributionModel(s) {
	case ModelEqual, ModelHours, ModelPercentage:
		return DistributionModel(s), true
	}
	return "", false
}

// TipPool is a named pot of money for a date range, owned by one company,
// created by one manager. CalculatedAt is set once, in the same transaction
// that stores the pool's distributions; a pool is calculated at most once.
type TipPool struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	DistributionModel DistributionModel `json:"distribution_model"`
	CompanyID         uuid.UUID         `json:"company_id"`
	CreatedBy         uuid.UUID         `json:"created_by"`
	CalculatedAt      *time.Time        `json:"calculated_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PoolEmployee binds one user to one pool, carrying the inputs needed by the
// pool's distribution model. user_id is a weak reference into the identity
// service's domain.
type PoolEmployee struct {
	ID              uuid.UUID           `json:"id"`
	PoolID          uuid.UUID           `json:"pool_id"`
	UserID          uuid.UUID           `json:"user_id"`
	HoursWorked     decimal.NullDecimal `json:"hours_worked"`
	PercentageShare decimal.NullDecimal `json:"percentage_share"`
}
