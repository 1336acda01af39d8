package reports

import (
	"context"

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
}

// ReportStore provides the raw per-membership report rows.
type ReportStore interface {
	GetPoolReport(ctx context.Context, poolID uuid.UUID) ([]models.ReportRow, error)
}

// Handler handles the pool report endpoint.
type Handler struct {
	pools   PoolStore
	store   ReportStore
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a report handler.
func NewHandler(pools PoolStore, store ReportStore, service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pools: pools, store: store, service: service, logger: logger}
}

// Get handles GET /pools/:poolId/report. The tenant check runs before the
// role check: a cross-tenant pool answers 404 so its existence is never
// confirmed, while a non-manager in the right company gets 403.
func (h *Handler) Get(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("poolId"))
	if err != nil {
		response.NotFound(c, response.CodePoolNotFound)
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)
	role := c.MustGet(middleware.ContextUserRole).(string)

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
	if role != "manager" {
		response.Forbidden(c, response.CodeUnauthorizedAccess)
		return
	}

	rows, err := h.store.GetPoolReport(c.Request.Context(), poolID)
	if err != nil {
		h.logger.Error("pool report", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}

	token := c.MustGet(middleware.ContextUserToken).(string)
	response.OK(c, h.service.Build(c.Request.Context(), pool, rows, token))
}
