package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipDistribution is the computed, persisted share for one membership.
// Immutable after insert.
type TipDistribution struct {
	ID                uuid.UUID       `json:"id"`
	PoolEmployeeID    uuid.UUID       `json:"pool_employee_id"`
	DistributedAmount decimal.Decimal `json:"distributed_amount"`
	CalculatedAt      time.Time       `json:"calculated_at"`
}

// PoolHistoryEntry is one row of a manager's pool history. CalculatedAt is
// the latest distribution timestamp across the pool's members, nil if the
// pool was never calculated.
type PoolHistoryEntry struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	DistributionModel DistributionModel `json:"distribution_model"`
	CompanyID         uuid.UUID         `json:"company_id"`
	CreatedBy         uuid.UUID         `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	CalculatedAt      *time.Time        `json:"calculated_at"`
}

// EmployeeTip is one row of an employee's tip history.
type EmployeeTip struct {
	DistributedAmount decimal.Decimal `json:"distributed_amount"`
	CalculatedAt      time.Time       `json:"calculated_at"`
	PoolName          string          `json:"pool_name"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
}

// ReportRow is one per-membership row of a pool report, joining pool,
// membership and (when calculated) distribution. A membership with no
// distribution yet appears with nil distribution fields.
type ReportRow struct {
	PoolID            uuid.UUID           `json:"pool_id"`
	PoolName          string              `json:"pool_name"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	PoolTotalAmount   decimal.Decimal     `json:"pool_total_amount"`
	DistributionModel DistributionModel   `json:"distribution_model"`
	UserID            uuid.UUID           `json:"user_id"`
	HoursWorked       decimal.NullDecimal `json:"hours_worked"`
	PercentageShare   decimal.NullDecimal `json:"percentage_share"`
	DistributedAmount decimal.NullDecimal `json:"distributed_amount"`
	CalculatedAt      *time.Time          `json:"calculated_at"`
}

// MonthlySummary aggregates a manager's pools by the calendar month of their
// start date.
type MonthlySummary struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	MonthYear   string          `json:"month_year"`
	PoolCount   int             `json:"pool_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
