package distributions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourboire/backend/internal/middleware"
	"github.com/pourboire/backend/internal/models"
)

type fakePoolStore struct {
	pool      *models.TipPool
	employees []models.PoolEmployee
}

func (f *fakePoolStore) GetByID(_ context.Context, id uuid.UUID) (*models.TipPool, error) {
	if f.pool != nil && f.pool.ID == id {
		return f.pool, nil
	}
	return nil, nil
}

func (f *fakePoolStore) GetEmployees(_ context.Context, _ uuid.UUID) ([]models.PoolEmployee, error) {
	return f.employees, nil
}

type fakeDistStore struct {
	storeErr error
	stored   [][]Share
	tips     []models.EmployeeTip
}

func (f *fakeDistStore) Store(_ context.Context, _ uuid.UUID, shares []Share) ([]models.TipDistribution, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	f.stored = append(f.stored, shares)
	now := time.Now()
	out := make([]models.TipDistribution, 0, len(shares))
	for _, s := range shares {
		out = append(out, models.TipDistribution{
			ID:                uuid.New(),
			PoolEmployeeID:    s.PoolEmployeeID,
			DistributedAmount: s.Amount,
			CalculatedAt:      now,
		})
	}
	return out, nil
}

func (f *fakeDistStore) GetPoolHistory(_ context.Context, _, _ uuid.UUID) ([]models.PoolHistoryEntry, error) {
	return []models.PoolHistoryEntry{}, nil
}

func (f *fakeDistStore) GetEmployeeHistory(_ context.Context, _ uuid.UUID) ([]models.EmployeeTip, error) {
	return f.tips, nil
}

func (f *fakeDistStore) GetMonthlySummary(_ context.Context, _, _ uuid.UUID) ([]models.MonthlySummary, error) {
	return []models.MonthlySummary{}, nil
}

type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) NotifyDistributions(_ context.Context, _ *models.TipPool, _ []models.PoolEmployee, _ []models.TipDistribution, _ string) {
	f.calls++
}

func newTestRouter(h *Handler, userID, companyID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextCompanyID, companyID)
		c.Set(middleware.ContextUserRole, role)
		c.Set(middleware.ContextUserToken, "test-token")
	})
	r.POST("/pools/:poolId/calculate-distribution", h.Calculate)
	r.GET("/pools/history", h.PoolHistory)
	r.GET("/pools/summary-by-month", h.MonthlySummary)
	r.GET("/employees/:employeeId/tips", h.EmployeeTips)
	return r
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestCalculateCrossTenantPoolAnswers404(t *testing.T) {
	pool := testPool(models.ModelEqual, "100")
	pool.CompanyID = uuid.New()
	poolStore := &fakePoolStore{pool: pool, employees: []models.PoolEmployee{member("", "")}}
	distStore := &fakeDistStore{}
	notifier := &fakeNotifier{}
	h := NewHandler(poolStore, distStore, NewEngine(nil), notifier, nil)

	callerCompany := uuid.New() // not the pool's company
	r := newTestRouter(h, uuid.New(), callerCompany, "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pools/"+pool.ID.String()+"/calculate-distribution", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "POOL_NOT_FOUND_OR_UNAUTHORIZED", errCode(t, w))
	assert.Empty(t, distStore.stored)
	assert.Zero(t, notifier.calls)
}

func TestCalculateEmptyRosterWritesNothing(t *testing.T) {
	pool := testPool(models.ModelEqual, "100")
	pool.CompanyID = uuid.New()
	poolStore := &fakePoolStore{pool: pool}
	distStore := &fakeDistStore{}
	h := NewHandler(poolStore, distStore, NewEngine(nil), &fakeNotifier{}, nil)

	r := newTestRouter(h, uuid.New(), pool.CompanyID, "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pools/"+pool.ID.String()+"/calculate-distribution", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_EMPLOYEES_IN_POOL", errCode(t, w))
	assert.Empty(t, distStore.stored)
}

func TestCalculatePercentageNot100WritesNothing(t *testing.T) {
	pool := testPool(models.ModelPercentage, "100")
	pool.CompanyID = uuid.New()
	poolStore := &fakePoolStore{
		pool:      pool,
		employees: []models.PoolEmployee{member("", "60"), member("", "30")},
	}
	distStore := &fakeDistStore{}
	h := NewHandler(poolStore, distStore, NewEngine(nil), &fakeNotifier{}, nil)

	r := newTestRouter(h, uuid.New(), pool.CompanyID, "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pools/"+pool.ID.String()+"/calculate-distribution", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TOTAL_PERCENTAGE_NOT_100", errCode(t, w))
	assert.Empty(t, distStore.stored)
}

func TestCalculateTwiceRejectedWithConflict(t *testing.T) {
	pool := testPool(models.ModelEqual, "100")
	pool.CompanyID = uuid.New()
	poolStore := &fakePoolStore{pool: pool, employees: []models.PoolEmployee{member("", "")}}
	distStore := &fakeDistStore{storeErr: ErrAlreadyCalculated}
	notifier := &fakeNotifier{}
	h := NewHandler(poolStore, distStore, NewEngine(nil), notifier, nil)

	r := newTestRouter(h, uuid.New(), pool.CompanyID, "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pools/"+pool.ID.String()+"/calculate-distribution", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "POOL_ALREADY_CALCULATED", errCode(t, w))
	assert.Zero(t, notifier.calls)
}

func TestCalculateStoresSharesAndNotifies(t *testing.T) {
	pool := testPool(models.ModelHours, "100")
	pool.CompanyID = uuid.New()
	poolStore := &fakePoolStore{
		pool:      pool,
		employees: []models.PoolEmployee{member("10", ""), member("30", "")},
	}
	distStore := &fakeDistStore{}
	notifier := &fakeNotifier{}
	h := NewHandler(poolStore, distStore, NewEngine(nil), notifier, nil)

	r := newTestRouter(h, uuid.New(), pool.CompanyID, "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pools/"+pool.ID.String()+"/calculate-distribution", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, distStore.stored, 1)
	batch := distStore.stored[0]
	require.Len(t, batch, 2)
	assert.True(t, batch[0].Amount.Equal(decimal.RequireFromString("25")))
	assert.True(t, batch[1].Amount.Equal(decimal.RequireFromString("75")))
	assert.Equal(t, 1, notifier.calls)

	var body struct {
		Distributions []models.TipDistribution `json:"distributions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Distributions, 2)
}

func TestEmployeeTipsRestrictedToSelf(t *testing.T) {
	selfID := uuid.New()
	distStore := &fakeDistStore{tips: []models.EmployeeTip{{PoolName: "Semaine 12"}}}
	h := NewHandler(&fakePoolStore{}, distStore, NewEngine(nil), &fakeNotifier{}, nil)

	r := newTestRouter(h, selfID, uuid.New(), "employee")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/employees/"+uuid.New().String()+"/tips", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "UNAUTHORIZED_ACCESS", errCode(t, w))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/employees/"+selfID.String()+"/tips", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestManagerMayViewAnyEmployeeTips(t *testing.T) {
	distStore := &fakeDistStore{tips: []models.EmployeeTip{}}
	h := NewHandler(&fakePoolStore{}, distStore, NewEngine(nil), &fakeNotifier{}, nil)

	r := newTestRouter(h, uuid.New(), uuid.New(), "manager")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/employees/"+uuid.New().String()+"/tips", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
