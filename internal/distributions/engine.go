package distributions

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pourboire/backend/internal/models"
)

// Engine validation errors, mapped to 400 codes by the handler.
var (
	ErrNoEmployees           = errors.New("no employees in pool")
	ErrTotalHoursZero        = errors.New("total hours worked is zero")
	ErrTotalPercentageZero   = errors.New("total percentage share is zero")
	ErrTotalPercentageNot100 = errors.New("total percentage share is not 100")
)

// overAllocationTolerance is the accepted slack between the sum of rounded
// shares and the pool total.
var overAllocationTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Share is one member's computed cut of the pool total.
type Share struct {
	PoolEmployeeID uuid.UUID
	Amount         decimal.Decimal
}

// Engine turns a pool's total amount and its members' inputs into per-member
// shares under the pool's distribution model.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a calculation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ComputeShares apportions pool.TotalAmount across the roster. Every share is
// rounded to 2 decimal places. Divisors are validated before any division:
// a zero total under the hours or percentage model is a validation error,
// and the percentage model additionally requires the shares to total exactly
// 100 (strict, not normalized).
func (e *Engine) ComputeShares(pool *models.TipPool, employees []models.PoolEmployee) ([]Share, error) {
	if len(employees) == 0 {
		return nil, ErrNoEmployees
	}

	total := pool.TotalAmount
	var totalHours, totalPercentage decimal.Decimal

	switch pool.DistributionModel {
	case models.ModelHours:
		for _, emp := range employees {
			totalHours = totalHours.Add(valueOrZero(emp.HoursWorked))
		}
		if totalHours.IsZero() {
			return nil, ErrTotalHoursZero
		}
	case models.ModelPercentage:
		for _, emp := range employees {
			totalPercentage = totalPercentage.Add(valueOrZero(emp.PercentageShare))
		}
		if totalPercentage.IsZero() {
			return nil, ErrTotalPercentageZero
		}
		if !totalPercentage.Equal(hundred) {
			return nil, ErrTotalPercentageNot100
		}
	}

	memberCount := decimal.NewFromInt(int64(len(employees)))
	shares := make([]Share, 0, len(employees))
	sum := decimal.Zero
	for _, emp := range employees {
		var share decimal.Decimal
		switch pool.DistributionModel {
		case models.ModelEqual:
			share = total.Div(memberCount)
		case models.ModelHours:
			share = valueOrZero(emp.HoursWorked).Div(totalHours).Mul(total)
		case models.ModelPercentage:
			share = valueOrZero(emp.PercentageShare).Div(totalPercentage).Mul(total)
		}
		share = share.Round(2)
		sum = sum.Add(share)
		shares = append(shares, Share{PoolEmployeeID: emp.ID, Amount: share})
	}

	// Sub-cent drift from rounding is accepted; only log when the rounded
	// shares overshoot the pool total beyond tolerance.
	if sum.GreaterThan(total.Add(overAllocationTolerance)) {
		e.logger.Warn("distributed sum exceeds pool total",
			zap.String("pool_id", pool.ID.String()),
			zap.String("sum", sum.String()),
			zap.String("total_amount", total.String()),
		)
	}

	return shares, nil
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
