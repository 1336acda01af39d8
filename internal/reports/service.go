package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pourboire/backend/internal/identity"
	"github.com/pourboire/backend/internal/models"
)

// UserResolver resolves identity details for a set of users. A nil map value
// means the lookup failed for that user; the report substitutes placeholders
// instead of aborting.
type UserResolver interface {
	ResolveUsers(ctx context.Context, ids []uuid.UUID, token string) map[uuid.UUID]*identity.UserDetails
}

// EnrichedRow is a report row augmented with identity-service fields.
type EnrichedRow struct {
	models.ReportRow
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	CategoryName string `json:"category_name"`
}

// EmployeeSummary is the per-user rollup of a pool report.
type EmployeeSummary struct {
	UserID          uuid.UUID           `json:"user_id"`
	TotalTips       decimal.Decimal     `json:"total_tips"`
	HoursWorked     decimal.NullDecimal `json:"hours_worked"`
	PercentageShare decimal.NullDecimal `json:"percentage_share"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	CategoryName    string              `json:"category_name"`
}

// Report is the manager-facing view of a calculated (or in-progress) pool.
type Report struct {
	PoolDetails            *models.TipPool   `json:"pool_details"`
	TotalDistributedAmount string            `json:"total_distributed_amount"`
	EmployeeSummaries      []EmployeeSummary `json:"employee_summaries"`
	RawReportData          []EnrichedRow     `json:"raw_report_data"`
}

// Service builds pool reports from raw repository rows.
type Service struct {
	resolver UserResolver
}

// NewService creates a report service.
func NewService(resolver UserResolver) *Service {
	return &Service{resolver: resolver}
}

// Build enriches the raw rows with member names and categories and computes
// the total and per-user summaries. A failed identity lookup yields
// "Unknown"/"Unknown"/"N/A" for that member; the rest of the report is
// unaffected.
func (s *Service) Build(ctx context.Context, pool *models.TipPool, rows []models.ReportRow, token string) *Report {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	resolved := s.resolver.ResolveUsers(ctx, ids, token)

	enriched := make([]EnrichedRow, 0, len(rows))
	totalDistributed := decimal.Zero
	summaries := []EmployeeSummary{}
	summaryIndex := make(map[uuid.UUID]int)

	for _, row := range rows {
		e := EnrichedRow{
			ReportRow:    row,
			FirstName:    "Unknown",
			LastName:     "Unknown",
			CategoryName: "N/A",
		}
		if details := resolved[row.UserID]; details != nil {
			e.FirstName = details.FirstName
			e.LastName = details.LastName
			e.CategoryName = details.CategoryName
		}
		enriched = append(enriched, e)

		amount := decimal.Zero
		if row.DistributedAmount.Valid {
			amount = row.DistributedAmount.Decimal
		}
		totalDistributed = totalDistributed.Add(amount)

		i, seen := summaryIndex[row.UserID]
		if !seen {
			summaries = append(summaries, EmployeeSummary{UserID: row.UserID})
			i = len(summaries) - 1
			summaryIndex[row.UserID] = i
		}
		summaries[i].TotalTips = summaries[i].TotalTips.Add(amount)
		summaries[i].HoursWorked = row.HoursWorked
		summaries[i].PercentageShare = row.PercentageShare
		summaries[i].FirstName = e.FirstName
		summaries[i].LastName = e.LastName
		summaries[i].CategoryName = e.CategoryName
	}

	return &Report{
		PoolDetails:            pool,
		TotalDistributedAmount: totalDistributed.StringFixed(2),
		EmployeeSummaries:      summaries,
		RawReportData:          enriched,
	}
}
