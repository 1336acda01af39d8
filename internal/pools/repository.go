package pools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pourboire/backend/internal/models"
)

// MemberInput is one roster entry for AddEmployees.
type MemberInput struct {
	UserID          uuid.UUID
	HoursWorked     decimal.NullDecimal
	PercentageShare decimal.NullDecimal
}

// UpdateFields carries the partial-update payload; nil fields are left
// untouched.
type UpdateFields struct {
	Name              *string
	StartDate         *time.Time
	EndDate           *time.Time
	TotalAmount       *decimal.Decimal
	DistributionModel *models.DistributionModel
}

// Repository handles tip pool and pool membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pool repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new tip pool.
func (r *Repository) Create(ctx context.Context, p *models.TipPool) error {
	const q = `INSERT INTO tip_pools (name, start_date, end_date, total_amount, distribution_model, company_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, p.Name, p.StartDate, p.EndDate, p.TotalAmount, p.DistributionModel, p.CompanyID, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt)
}

// AddEmployees inserts the full roster in a single transaction: either all
// membership rows land or none do. Partial membership would corrupt later
// apportionment.
func (r *Repository) AddEmployees(ctx context.Context, poolID uuid.UUID, members []MemberInput) ([]models.PoolEmployee, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := make([]models.PoolEmployee, 0, len(members))
	const q = `INSERT INTO pool_employees (pool_id, user_id, hours_worked, percentage_share)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pool_id, user_id, hours_worked, percentage_share`
	for _, m := range members {
		var pe models.PoolEmployee
		err := tx.QueryRow(ctx, q, poolID, m.UserID, m.HoursWorked, m.PercentageShare).
			Scan(&pe.ID, &pe.PoolID, &pe.UserID, &pe.HoursWorked, &pe.PercentageShare)
		if err != nil {
			return nil, fmt.Errorf("insert pool employee: %w", err)
		}
		inserted = append(inserted, pe)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Update modifies only the supplied fields. Supplying zero fields is a no-op
// returning (nil, nil): "nothing to update", not an error.
func (r *Repository) Update(ctx context.Context, poolID uuid.UUID, fields UpdateFields) (*models.TipPool, error) {
	var setClauses []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.StartDate != nil {
		add("start_date", *fields.StartDate)
	}
	if fields.EndDate != nil {
		add("end_date", *fields.EndDate)
	}
	if fields.TotalAmount != nil {
		add("total_amount", *fields.TotalAmount)
	}
	if fields.DistributionModel != nil {
		add("distribution_model", *fields.DistributionModel)
	}
	if len(setClauses) == 0 {
		return nil, nil
	}

	args = append(args, poolID)
	q := fmt.Sprintf(`UPDATE tip_pools SET %s WHERE id = $%d
		RETURNING id, name, start_date, end_date, total_amount, distribution_model, company_id, created_by, calculated_at, created_at`,
		strings.Join(setClauses, ", "), len(args))

	var p models.TipPool
	err := r.pool.QueryRow(ctx, q, args...).
		Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.TotalAmount, &p.DistributionModel, &p.CompanyID, &p.CreatedBy, &p.CalculatedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns a pool by ID, or (nil, nil) when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TipPool, error) {
	const q = `SELECT id, name, start_date, end_date, total_amount, distribution_model, company_id, created_by, calculated_at, created_at
		FROM tip_pools WHERE id = $1`
	var p models.TipPool
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.TotalAmount, &p.DistributionModel, &p.CompanyID, &p.CreatedBy, &p.CalculatedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetEmployees returns a pool's full roster.
func (r *Repository) GetEmployees(ctx context.Context, poolID uuid.UUID) ([]models.PoolEmployee, error) {
	const q = `SELECT id, pool_id, user_id, hours_worked, percentage_share
		FROM pool_employees WHERE pool_id = $1`
	rows, err := r.pool.Query(ctx, q, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.PoolEmployee
	for rows.Next() {
		var pe models.PoolEmployee
		if err := rows.Scan(&pe.ID, &pe.PoolID, &pe.UserID, &pe.HoursWorked, &pe.PercentageShare); err != nil {
			return nil, err
		}
		list = append(list, pe)
	}
	return list, rows.Err()
}
