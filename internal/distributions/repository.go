package distributions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pourboire/backend/internal/models"
)

// ErrAlreadyCalculated is returned when a pool's distributions were already
// stored. A pool is calculated at most once; double submission is rejected
// instead of silently duplicating rows.
var ErrAlreadyCalculated = errors.New("pool already calculated")

// Repository handles tip distribution persistence and the read-side joins
// behind history and reporting.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a distribution repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Store persists one calculation batch in a single transaction: the pool is
// marked calculated (guarded, so a concurrent second calculation fails with
// ErrAlreadyCalculated) and every distribution row is inserted with the same
// timestamp. All rows land or none do.
func (r *Repository) Store(ctx context.Context, poolID uuid.UUID, shares []Share) ([]models.TipDistribution, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var calculatedAt time.Time
	const guard = `UPDATE tip_pools SET calculated_at = NOW()
		WHERE id = $1 AND calculated_at IS NULL
		RETURNING calculated_at`
	if err := tx.QueryRow(ctx, guard, poolID).Scan(&calculatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyCalculated
		}
		return nil, fmt.Errorf("mark pool calculated: %w", err)
	}

	stored := make([]models.TipDistribution, 0, len(shares))
	const q = `INSERT INTO tip_distributions (pool_employee_id, distributed_amount, calculated_at)
		VALUES ($1, $2, $3)
		RETURNING id, pool_employee_id, distributed_amount, calculated_at`
	for _, s := range shares {
		var d models.TipDistribution
		err := tx.QueryRow(ctx, q, s.PoolEmployeeID, s.Amount, calculatedAt).
			Scan(&d.ID, &d.PoolEmployeeID, &d.DistributedAmount, &d.CalculatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert distribution: %w", err)
		}
		stored = append(stored, d)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// GetPoolHistory returns one row per pool owned by the manager in that
// company, newest end date first. calculated_at is the latest distribution
// timestamp across the pool's members, nil if never calculated.
func (r *Repository) GetPoolHistory(ctx context.Context, companyID, managerID uuid.UUID) ([]models.PoolHistoryEntry, error) {
	const q = `SELECT
			tp.id, tp.name, tp.start_date, tp.end_date, tp.total_amount,
			tp.distribution_model, tp.company_id, tp.created_by, tp.created_at,
			MAX(td.calculated_at) AS calculated_at
		FROM tip_pools tp
		LEFT JOIN pool_employees pe ON tp.id = pe.pool_id
		LEFT JOIN tip_distributions td ON pe.id = td.pool_employee_id
		WHERE tp.company_id = $1 AND tp.created_by = $2
		GROUP BY tp.id
		ORDER BY tp.end_date DESC`
	rows, err := r.pool.Query(ctx, q, companyID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.PoolHistoryEntry{}
	for rows.Next() {
		var e models.PoolHistoryEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &e.TotalAmount,
			&e.DistributionModel, &e.CompanyID, &e.CreatedBy, &e.CreatedAt, &e.CalculatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetEmployeeHistory returns one employee's distributions, newest first.
func (r *Repository) GetEmployeeHistory(ctx context.Context, userID uuid.UUID) ([]models.EmployeeTip, error) {
	const q = `SELECT
			td.distributed_amount, td.calculated_at,
			tp.name AS pool_name, tp.start_date, tp.end_date
		FROM tip_distributions td
		JOIN pool_employees pe ON td.pool_employee_id = pe.id
		JOIN tip_pools tp ON pe.pool_id = tp.id
		WHERE pe.user_id = $1
		ORDER BY td.calculated_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.EmployeeTip{}
	for rows.Next() {
		var t models.EmployeeTip
		if err := rows.Scan(&t.DistributedAmount, &t.CalculatedAt, &t.PoolName, &t.StartDate, &t.EndDate); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetPoolReport returns per-membership rows joining pool, membership and
// (when present) distribution, ordered by user then calculation time
// descending. Memberships without a distribution still appear, with null
// distribution fields.
func (r *Repository) GetPoolReport(ctx context.Context, poolID uuid.UUID) ([]models.ReportRow, error) {
	const q = `SELECT
			tp.id AS pool_id, tp.name AS pool_name, tp.start_date, tp.end_date,
			tp.total_amount AS pool_total_amount, tp.distribution_model,
			pe.user_id, pe.hours_worked, pe.percentage_share,
			td.distributed_amount, td.calculated_at
		FROM tip_pools tp
		JOIN pool_employees pe ON tp.id = pe.pool_id
		LEFT JOIN tip_distributions td ON pe.id = td.pool_employee_id
		WHERE tp.id = $1
		ORDER BY pe.user_id, td.calculated_at DESC`
	rows, err := r.pool.Query(ctx, q, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.ReportRow{}
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(&row.PoolID, &row.PoolName, &row.StartDate, &row.EndDate,
			&row.PoolTotalAmount, &row.DistributionModel,
			&row.UserID, &row.HoursWorked, &row.PercentageShare,
			&row.DistributedAmount, &row.CalculatedAt); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// GetMonthlySummary aggregates a manager's pools by the calendar month of
// their start date.
func (r *Repository) GetMonthlySummary(ctx context.Context, companyID, managerID uuid.UUID) ([]models.MonthlySummary, error) {
	const q = `SELECT
			EXTRACT(YEAR FROM start_date)::int AS year,
			EXTRACT(MONTH FROM start_date)::int AS month,
			TO_CHAR(start_date, 'Mon YYYY') AS month_year,
			COUNT(id)::int AS pool_count,
			SUM(total_amount) AS total_amount
		FROM tip_pools
		WHERE company_id = $1 AND created_by = $2
		GROUP BY year, month, month_year
		ORDER BY year, month`
	rows, err := r.pool.Query(ctx, q, companyID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.MonthlySummary{}
	for rows.Next() {
		var s models.MonthlySummary
		if err := rows.Scan(&s.Year, &s.Month, &s.MonthYear, &s.PoolCount, &s.TotalAmount); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
