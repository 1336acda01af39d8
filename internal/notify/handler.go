package notify

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pourboire/backend/internal/middleware"
	"github.com/pourboire/backend/internal/models"
	"github.com/pourboire/backend/pkg/response"
)

// PoolStore is the pool read surface the handler needs for tenant checks.
type PoolStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TipPool, error)
}

// Handler handles the notification log listing endpoint.
type Handler struct {
	pools  PoolStore
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a notification log handler.
func NewHandler(pools PoolStore, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pools: pools, repo: repo, logger: logger}
}

// ListByPool handles GET /pools/:poolId/notifications (manager only).
func (h *Handler) ListByPool(c *gin.Context) {
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

	list, err := h.repo.ListByPool(c.Request.Context(), poolID)
	if err != nil {
		h.logger.Error("list notifications", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}
