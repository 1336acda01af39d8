package distributions

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pourboire/backend/internal/middleware"
	"github.com/pourboire/backend/internal/models"
	"github.com/pourboire/backend/pkg/response"
)

// PoolStore is the pool read surface the handler needs.
type PoolStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TipPool, error)
	GetEmployees(ctx context.Context, poolID uuid.UUID) ([]models.PoolEmployee, error)
}

// Store is the distribution persistence surface the handler needs.
type Store interface {
	Store(ctx context.Context, poolID uuid.UUID, shares []Share) ([]models.TipDistribution, error)
	GetPoolHistory(ctx context.Context, companyID, managerID uuid.UUID) ([]models.PoolHistoryEntry, error)
	GetEmployeeHistory(ctx context.Context, userID uuid.UUID) ([]models.EmployeeTip, error)
	GetMonthlySummary(ctx context.Context, companyID, managerID uuid.UUID) ([]models.MonthlySummary, error)
}

// Notifier delivers per-member tip notifications after a calculation batch
// commits. Implementations must isolate per-member failures; stored
// distributions are never rolled back because a notification failed.
type Notifier interface {
	NotifyDistributions(ctx context.Context, pool *models.TipPool, employees []models.PoolEmployee, distributions []models.TipDistribution, token string)
}

// Handler handles distribution calculation and history endpoints.
type Handler struct {
	pools    PoolStore
	store    Store
	engine   *Engine
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a distribution handler.
func NewHandler(pools PoolStore, store Store, engine *Engine, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pools: pools, store: store, engine: engine, notifier: notifier, logger: logger}
}

// Calculate handles POST /pools/:poolId/calculate-distribution (manager
// only): run apportionment, persist the batch, then notify members.
func (h *Handler) Calculate(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("poolId"))
	if err != nil {
		response.NotFound(c, response.CodePoolNotFound)
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	pool, err := h.pools.GetByID(c.Request.Context(), poolID)
	if err != nil {
		h.logger.Error("get pool", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}
	if pool == nil || pool.CompanyID != companyID {
		response.NotFound(c, response.CodePoolNotFound)
		return
	}

	employees, err := h.pools.GetEmployees(c.Request.Context(), poolID)
	if err != nil {
		h.logger.Error("get pool employees", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}

	shares, err := h.engine.ComputeShares(pool, employees)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoEmployees):
			response.BadRequest(c, response.CodeNoEmployeesInPool)
		case errors.Is(err, ErrTotalHoursZero):
			response.BadRequest(c, response.CodeTotalHoursZero)
		case errors.Is(err, ErrTotalPercentageZero):
			response.BadRequest(c, response.CodeTotalPercentageZero)
		case errors.Is(err, ErrTotalPercentageNot100):
			response.BadRequest(c, response.CodeTotalPercentageNot100)
		default:
			h.logger.Error("compute shares", zap.String("pool_id", poolID.String()), zap.Error(err))
			response.Internal(c)
		}
		return
	}

	stored, err := h.store.Store(c.Request.Context(), poolID, shares)
	if err != nil {
		if errors.Is(err, ErrAlreadyCalculated) {
			response.Conflict(c, response.CodePoolAlreadyCalculated)
			return
		}
		h.logger.Error("store distributions", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}

	// Distributions are committed at this point; notification failures are
	// the notifier's to log and swallow.
	token := c.MustGet(middleware.ContextUserToken).(string)
	h.notifier.NotifyDistributions(c.Request.Context(), pool, employees, stored, token)

	response.OK(c, gin.H{
		"message":       "Distribution calculated and stored successfully.",
		"distributions": stored,
	})
}

// PoolHistory handles GET /pools/history (manager only).
func (h *Handler) PoolHistory(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)
	managerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	list, err := h.store.GetPoolHistory(c.Request.Context(), companyID, managerID)
	if err != nil {
		h.logger.Error("pool history", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// EmployeeTips handles GET /employees/:employeeId/tips. An employee may only
// view their own history; a manager may view any employee's.
func (h *Handler) EmployeeTips(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		response.BadRequest(c, "INVALID_EMPLOYEE_ID")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := c.MustGet(middleware.ContextUserRole).(string)

	if role == "employee" && employeeID != userID {
		response.Forbidden(c, response.CodeUnauthorizedAccess)
		return
	}

	list, err := h.store.GetEmployeeHistory(c.Request.Context(), employeeID)
	if err != nil {
		h.logger.Error("employee tip history", zap.String("employee_id", employeeID.String()), zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// MonthlySummary handles GET /pools/summary-by-month (manager only).
func (h *Handler) MonthlySummary(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)
	managerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	list, err := h.store.GetMonthlySummary(c.Request.Context(), companyID, managerID)
	if err != nil {
		h.logger.Error("monthly summary", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}
