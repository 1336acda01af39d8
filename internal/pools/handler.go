package pools

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pourboire/backend/internal/middleware"
	"github.com/pourboire/backend/internal/models"
	"github.com/pourboire/backend/pkg/response"
)

// Store is the pool persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, p *models.TipPool) error
	AddEmployees(ctx context.Context, poolID uuid.UUID, members []MemberInput) ([]models.PoolEmployee, error)
	Update(ctx context.Context, poolID uuid.UUID, fields UpdateFields) (*models.TipPool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TipPool, error)
}

// EmployeeRequest is one roster entry in the create-pool body.
type EmployeeRequest struct {
	UserID          string           `json:"user_id"`
	HoursWorked     *decimal.Decimal `json:"hours_worked"`
	PercentageShare *decimal.Decimal `json:"percentage_share"`
}

// CreateRequest is the body for POST /pools.
type CreateRequest struct {
	Name              string            `json:"name"`
	StartDate         string            `json:"start_date"`
	EndDate           string            `json:"end_date"`
	TotalAmount       *decimal.Decimal  `json:"total_amount"`
	DistributionModel string            `json:"distribution_model"`
	Employees         []EmployeeRequest `json:"employees"`
}

// UpdateRequest is the body for PUT /pools/:poolId. Only supplied fields are
// applied.
type UpdateRequest struct {
	Name              *string          `json:"name"`
	StartDate         *string          `json:"start_date"`
	EndDate           *string          `json:"end_date"`
	TotalAmount       *decimal.Decimal `json:"total_amount"`
	DistributionModel *string          `json:"distribution_model"`
}

// Handler handles pool lifecycle endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a pool handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// parseDate accepts the mobile client's YYYY-MM-DD dates, falling back to
// RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Create handles POST /pools (manager only): create pool + initial roster.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingPoolFields)
		return
	}

	if req.Name == "" || req.StartDate == "" || req.EndDate == "" ||
		req.TotalAmount == nil || !req.TotalAmount.IsPositive() ||
		req.DistributionModel == "" || len(req.Employees) == 0 {
		response.BadRequest(c, response.CodeMissingPoolFields)
		return
	}

	model, ok := models.ParseDistributionModel(req.DistributionModel)
	if !ok {
		response.BadRequest(c, response.CodeInvalidDistributionModel)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		response.BadRequest(c, response.CodeMissingPoolFields)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		response.BadRequest(c, response.CodeMissingPoolFields)
		return
	}

	members := make([]MemberInput, 0, len(req.Employees))
	for _, e := range req.Employees {
		userID, err := uuid.Parse(e.UserID)
		if err != nil {
			response.BadRequest(c, response.CodeMissingPoolFields)
			return
		}
		m := MemberInput{UserID: userID}
		if e.HoursWorked != nil {
			m.HoursWorked = decimal.NewNullDecimal(*e.HoursWorked)
		}
		if e.PercentageShare != nil {
			m.PercentageShare = decimal.NewNullDecimal(*e.PercentageShare)
		}
		members = append(members, m)
	}

	pool := &models.TipPool{
		Name:              req.Name,
		StartDate:         startDate,
		EndDate:           endDate,
		TotalAmount:       *req.TotalAmount,
		DistributionModel: model,
		CompanyID:         c.MustGet(middleware.ContextCompanyID).(uuid.UUID),
		CreatedBy:         c.MustGet(middleware.ContextUserID).(uuid.UUID),
	}
	if err := h.store.Create(c.Request.Context(), pool); err != nil {
		h.logger.Error("create pool", zap.Error(err))
		response.Internal(c)
		return
	}

	employees, err := h.store.AddEmployees(c.Request.Context(), pool.ID, members)
	if err != nil {
		h.logger.Error("add pool employees", zap.String("pool_id", pool.ID.String()), zap.Error(err))
		response.Internal(c)
		return
	}

	response.Created(c, gin.H{
		"message":   "Pool created successfully.",
		"pool":      pool,
		"employees": employees,
	})
}

// Update handles PUT /pools/:poolId (manager only): partial update of
// name/dates/amount/model. Cross-tenant pools answer 404, never 403, to avoid
// confirming existence to the wrong tenant.
func (h *Handler) Update(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("poolId"))
	if err != nil {
		response.NotFound(c, response.CodePoolNotFound)
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	existing, err := h.store.GetByID(c.Request.Context(), poolID)
	if err != nil {
		h.logger.Error("get pool", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}
	if existing == nil || existing.CompanyID != companyID {
		response.NotFound(c, response.CodePoolNotFound)
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingPoolFields)
		return
	}

	var fields UpdateFields
	fields.Name = req.Name
	fields.TotalAmount = req.TotalAmount
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			response.BadRequest(c, response.CodeMissingPoolFields)
			return
		}
		fields.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			response.BadRequest(c, response.CodeMissingPoolFields)
			return
		}
		fields.EndDate = &t
	}
	if req.DistributionModel != nil {
		model, ok := models.ParseDistributionModel(*req.DistributionModel)
		if !ok {
			response.BadRequest(c, response.CodeInvalidDistributionModel)
			return
		}
		fields.DistributionModel = &model
	}

	updated, err := h.store.Update(c.Request.Context(), poolID, fields)
	if err != nil {
		h.logger.Error("update pool", zap.String("pool_id", poolID.String()), zap.Error(err))
		response.Internal(c)
		return
	}

	response.OK(c, gin.H{
		"message": "Pool updated successfully.",
		"pool":    updated,
	})
}
