package claims

import (
	"context"
	"io"
	"sync"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// MockData seeds deterministic claims responses for tests or local demos.
type MockData struct {
	Distribution []dashboard.StatusSlice
	Monthly      dashboard.MonthlyClaims
	LastMonth    []dashboard.ClaimRecord
	Summary      dashboard.ClaimSummary
	Prediction   Prediction
	Extracted    WarrantyClaim
	Answer       Answer
	Table        Table
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

var _ Client = (*MockClient)(nil)

// NewMockClient builds a mock claims client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// DemoData returns a small fixture set used by the CLI when no backend is
// configured.
func DemoData() MockData {
	return MockData{
		Distribution: []dashboard.StatusSlice{
			{Name: "Approved", Value: 412, Percentage: 68.67, Color: "#34D399"},
			{Name: "Pending", Value: 71, Percentage: 11.83, Color: "#FBBF24"},
			{Name: "Rejected", Value: 117, Percentage: 19.5, Color: "#F87171"},
		},
		Monthly: dashboard.MonthlyClaims{
			Historical: dashboard.ClaimSeries{
				Total:    []float64{48, 52, 61, 57, 49, 55, 60, 58, 47, 51, 53, 50},
				Accepted: []float64{38, 41, 50, 44, 40, 45, 47, 46, 37, 42, 43, 39},
				Rejected: []float64{10, 11, 11, 13, 9, 10, 13, 12, 10, 9, 10, 11},
			},
		},
		LastMonth: []dashboard.ClaimRecord{
			{VIN: "JM1BPBJM1N1512345", Amount: 812.4, Status: "Approved", Model: "MAZDA_CX_5", RepairDate: "02-05-2025"},
			{VIN: "JM1BPBJM1N1598765", Amount: 455, Status: "Pending", Model: "MAZDA3_SEDAN", RepairDate: "04-05-2025"},
			{VIN: "JM3KFBCM5P0123456", Amount: 1290.15, Status: "Rejected", Model: "MAZDA_CX_5", RepairDate: "11-05-2025"},
		},
		Summary: dashboard.ClaimSummary{
			Week:  dashboard.PeriodSummary{OriginalClaim: 14, ProjectedClaim: 21, Value: 14, ChangeType: "increase", Cost: 9120.5},
			Month: dashboard.PeriodSummary{OriginalClaim: 53, ProjectedClaim: 60, Value: 53, ChangeType: "increase", Cost: 41230},
			Year:  dashboard.PeriodSummary{OriginalClaim: 600, ProjectedClaim: 640, Value: 600, ChangeType: "decrease", Cost: 512000},
		},
		Prediction: Prediction{WarrantyStatus: "A", WarrantyStatusProbability: 0.812, ReasonCode: "ACP", ReasonCodeProbability: 0.74},
		Extracted: WarrantyClaim{
			ClaimNumber:   "WC-2025-00042",
			VIN:           "JM1BPBJM1N1512345",
			ModelName:     "MAZDA_CX_5",
			RepairDate:    "02-05-2025",
			MileageIn:     48210,
			MileageOut:    48212,
			RODescription: "Replace front left wheel bearing",
			DealerCode:    "D-1187",
			PartsUsed:     []PartDetail{{Name: "Wheel bearing", Quantity: 1, Price: 182.5}},
			LaborOpDetails: []LaborOpDetail{
				{Code: "L-2231", Hours: 1.6},
			},
			EstimatedAmount: 412.5,
		},
		Answer: Answer{Type: "language", Content: "## Claims\n\nMost claims this year were **approved**."},
		Table: Table{Type: "table", Rows: []map[string]any{
			{"model": "MAZDA_CX_5", "claims": 2},
			{"model": "MAZDA3_SEDAN", "claims": 1},
		}},
	}
}

// StatusDistribution returns the configured distribution.
func (c *MockClient) StatusDistribution(_ context.Context, year int) ([]dashboard.StatusSlice, error) {
	if !dashboard.ValidClaimYear(year) {
		return nil, dashboard.ErrInvalidYear
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.StatusSlice(nil), c.data.Distribution...), nil
}

// MonthlyClaims returns the configured monthly series for any year.
func (c *MockClient) MonthlyClaims(_ context.Context, year int) (dashboard.MonthlyClaims, error) {
	if !dashboard.ValidClaimYear(year) {
		return dashboard.MonthlyClaims{}, dashboard.ErrInvalidYear
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := dashboard.MonthlyClaims{Year: year, Historical: cloneSeries(c.data.Monthly.Historical)}
	if c.data.Monthly.Forecast != nil {
		forecast := cloneSeries(*c.data.Monthly.Forecast)
		out.Forecast = &forecast
	}
	return out, nil
}

// LastMonthClaims returns the configured claim rows.
func (c *MockClient) LastMonthClaims(context.Context) ([]dashboard.ClaimRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.ClaimRecord(nil), c.data.LastMonth...), nil
}

// SummaryCard returns the configured summary ignoring the status code.
func (c *MockClient) SummaryCard(context.Context, string) (dashboard.ClaimSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Summary, nil
}

// Predict returns the configured prediction.
func (c *MockClient) Predict(context.Context, WarrantyClaim) (Prediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Prediction, nil
}

// Extract drains the document and returns the configured claim.
func (c *MockClient) Extract(_ context.Context, _ string, document io.Reader) (WarrantyClaim, error) {
	if document != nil {
		_, _ = io.Copy(io.Discard, document)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Extracted, nil
}

// Ask returns the configured answer.
func (c *MockClient) Ask(context.Context, string) (Answer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Answer, nil
}

// SmartTable returns the configured table.
func (c *MockClient) SmartTable(context.Context, string) (Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows := make([]map[string]any, len(c.data.Table.Rows))
	for i, row := range c.data.Table.Rows {
		copied := make(map[string]any, len(row))
		for k, v := range row {
			copied[k] = v
		}
		rows[i] = copied
	}
	return Table{Type: c.data.Table.Type, Rows: rows}, nil
}

func cloneSeries(s dashboard.ClaimSeries) dashboard.ClaimSeries {
	return dashboard.ClaimSeries{
		Total:    append([]float64(nil), s.Total...),
		Accepted: append([]float64(nil), s.Accepted...),
		Rejected: append([]float64(nil), s.Rejected...),
	}
}
