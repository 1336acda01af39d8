package reports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourboire/backend/internal/identity"
	"github.com/pourboire/backend/internal/models"
)

type fakeResolver struct {
	users map[uuid.UUID]*identity.UserDetails
	ids   []uuid.UUID
}

func (f *fakeResolver) ResolveUsers(_ context.Context, ids []uuid.UUID, _ string) map[uuid.UUID]*identity.UserDetails {
	f.ids = ids
	return f.users
}

func reportRow(userID uuid.UUID, amount string) models.ReportRow {
	row := models.ReportRow{UserID: userID, PoolName: "Semaine 12"}
	if amount != "" {
		row.DistributedAmount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return row
}

func TestBuildSubstitutesPlaceholdersForFailedLookups(t *testing.T) {
	alice := uuid.New()
	ghost := uuid.New()
	resolver := &fakeResolver{users: map[uuid.UUID]*identity.UserDetails{
		alice: {FirstName: "Alice", LastName: "Martin", CategoryName: "Serveur"},
		ghost: nil,
	}}
	svc := NewService(resolver)

	rows := []models.ReportRow{reportRow(alice, "60.00"), reportRow(ghost, "40.00")}
	report := svc.Build(context.Background(), &models.TipPool{ID: uuid.New()}, rows, "token")

	require.Len(t, report.RawReportData, 2)
	assert.Equal(t, "Alice", report.RawReportData[0].FirstName)
	assert.Equal(t, "Martin", report.RawReportData[0].LastName)
	assert.Equal(t, "Serveur", report.RawReportData[0].CategoryName)
	assert.Equal(t, "Unknown", report.RawReportData[1].FirstName)
	assert.Equal(t, "Unknown", report.RawReportData[1].LastName)
	assert.Equal(t, "N/A", report.RawReportData[1].CategoryName)
}

func TestBuildTotalsAndSummaries(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	resolver := &fakeResolver{users: map[uuid.UUID]*identity.UserDetails{
		alice: {FirstName: "Alice", LastName: "Martin", CategoryName: "Serveur"},
		bob:   {FirstName: "Bob", LastName: "Durand", CategoryName: "Cuisine"},
	}}
	svc := NewService(resolver)

	rows := []models.ReportRow{
		reportRow(alice, "25.50"),
		reportRow(bob, "10.00"),
		reportRow(alice, "4.50"), // second batch for the same member
	}
	report := svc.Build(context.Background(), &models.TipPool{ID: uuid.New()}, rows, "token")

	assert.Equal(t, "40.00", report.TotalDistributedAmount)

	require.Len(t, report.EmployeeSummaries, 2)
	assert.Equal(t, alice, report.EmployeeSummaries[0].UserID)
	assert.True(t, report.EmployeeSummaries[0].TotalTips.Equal(decimal.RequireFromString("30")))
	assert.Equal(t, "Alice", report.EmployeeSummaries[0].FirstName)
	assert.Equal(t, bob, report.EmployeeSummaries[1].UserID)
	assert.True(t, report.EmployeeSummaries[1].TotalTips.Equal(decimal.RequireFromString("10")))
}

func TestBuildUncalculatedRowsCountAsZero(t *testing.T) {
	alice := uuid.New()
	resolver := &fakeResolver{users: map[uuid.UUID]*identity.UserDetails{}}
	svc := NewService(resolver)

	rows := []models.ReportRow{reportRow(alice, "")}
	report := svc.Build(context.Background(), &models.TipPool{ID: uuid.New()}, rows, "token")

	assert.Equal(t, "0.00", report.TotalDistributedAmount)
	require.Len(t, report.EmployeeSummaries, 1)
	assert.True(t, report.EmployeeSummaries[0].TotalTips.IsZero())
}

func TestBuildEmptyPoolReport(t *testing.T) {
	svc := NewService(&fakeResolver{})
	report := svc.Build(context.Background(), &models.TipPool{ID: uuid.New()}, nil, "token")

	assert.Equal(t, "0.00", report.TotalDistributedAmount)
	assert.Empty(t, report.EmployeeSummaries)
	assert.Empty(t, report.RawReportData)
}
