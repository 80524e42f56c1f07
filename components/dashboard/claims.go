package dashboard

import (
	"context"
	"time"
)

// ClaimsRepository loads claim aggregates from the claims backend.
type ClaimsRepository interface {
	StatusDistribution(ctx context.Context, year int) ([]StatusSlice, error)
	MonthlyClaims(ctx context.Context, year int) (MonthlyClaims, error)
	LastMonthClaims(ctx context.Context) ([]ClaimRecord, error)
	SummaryCard(ctx context.Context, statusCode string) (ClaimSummary, error)
}

// StatusSlice is the share of claims in one status for a year.
type StatusSlice struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ClaimSeries holds one value per month.
type ClaimSeries struct {
	Total    []float64 `json:"total"`
	Accepted []float64 `json:"accepted"`
	Rejected []float64 `json:"rejected"`
}

// MonthlyClaims carries monthly claim counts for a year. For the current year
// Historical covers the closed months and Forecast the rest.
type MonthlyClaims struct {
	Year       int          `json:"year"`
	Historical ClaimSeries  `json:"historical"`
	Forecast   *ClaimSeries `json:"forecast,omitempty"`
}

// ClaimRecord is a single claim row.
type ClaimRecord struct {
	VIN        string  `json:"vincd"`
	Amount     float64 `json:"claimAmount"`
	Status     string  `json:"status"`
	Model      string  `json:"model"`
	RepairDate string  `json:"repair_date"`
}

// PeriodSummary compares claims filed so far against the projection for the
// whole period.
type PeriodSummary struct {
	OriginalClaim        int     `json:"originalClaim"`
	ProjectedClaim       int     `json:"projectedClaim"`
	HistoricalChange     int     `json:"historicalChange"`
	HistoricalChangeType string  `json:"historicalChangeType"`
	PercentageIncrease   float64 `json:"percentageIncrease"`
	Value                int     `json:"value"`
	Change               int     `json:"change"`
	ChangeType           string  `json:"changeType"`
	Cost                 float64 `json:"cost"`
}

// ClaimSummary groups summary metrics by period.
type ClaimSummary struct {
	Week  PeriodSummary `json:"week"`
	Month PeriodSummary `json:"month"`
	Year  PeriodSummary `json:"year"`
}

// Claim years accepted by the backend.
const (
	MinClaimYear = 1900
	MaxClaimYear = 2100
)

// ValidClaimYear reports whether year is inside the supported range.
func ValidClaimYear(year int) bool {
	return year >= MinClaimYear && year <= MaxClaimYear
}

// monthLabels returns short month names in calendar order.
func monthLabels() []string {
	labels := make([]string, 12)
	for i := range labels {
		labels[i] = time.Month(i + 1).String()[:3]
	}
	return labels
}
