package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ettle/strcase"
)

// Claims panel keys.
const (
	PanelStatusDistribution = "status-distribution"
	PanelMonthlyClaims      = "monthly-claims"
	PanelLastMonth          = "last-month"
)

// ClaimsPanels turns claims aggregates into chart widgets. A slower fetch for
// a panel never overwrites a newer one.
type ClaimsPanels struct {
	repo      ClaimsRepository
	requests  *requestSequencer
	telemetry Telemetry
	now       func() time.Time
}

// ClaimsPanelsOption customizes panel construction.
type ClaimsPanelsOption func(*ClaimsPanels)

// WithPanelClock overrides the clock used to resolve the current year.
func WithPanelClock(now func() time.Time) ClaimsPanelsOption {
	return func(p *ClaimsPanels) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPanelTelemetry records panel fetch failures.
func WithPanelTelemetry(telemetry Telemetry) ClaimsPanelsOption {
	return func(p *ClaimsPanels) {
		p.telemetry = NormalizeTelemetry(telemetry)
	}
}

// NewClaimsPanels wires a repository into claims panels.
func NewClaimsPanels(repo ClaimsRepository, opts ...ClaimsPanelsOption) *ClaimsPanels {
	p := &ClaimsPanels{
		repo:      repo,
		requests:  newRequestSequencer(),
		telemetry: NormalizeTelemetry(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Panels lists the supported panel keys.
func (p *ClaimsPanels) Panels() []string {
	return []string{PanelStatusDistribution, PanelMonthlyClaims, PanelLastMonth}
}

// Widget fetches the panel data and returns it as a chart widget. A zero year
// means the current year. Panel keys are matched case-insensitively in any
// casing style ("monthlyClaims", "monthly_claims").
func (p *ClaimsPanels) Widget(ctx context.Context, panel string, year int) (Widget, error) {
	if p == nil || p.repo == nil {
		return Widget{}, errors.New("dashboard: claims repository not configured")
	}
	key := strcase.ToKebab(panel)
	if year == 0 {
		year = p.now().Year()
	}
	if key != PanelLastMonth && !ValidClaimYear(year) {
		return Widget{}, ErrInvalidYear
	}

	token := p.requests.Begin(key)
	defer p.requests.Finish(key, token)

	var (
		cfg ChartConfig
		err error
	)
	switch key {
	case PanelStatusDistribution:
		var slices []StatusSlice
		slices, err = p.repo.StatusDistribution(ctx, year)
		cfg = statusDistributionChart(slices)
	case PanelMonthlyClaims:
		var monthly MonthlyClaims
		monthly, err = p.repo.MonthlyClaims(ctx, year)
		cfg = monthlyClaimsChart(monthly)
	case PanelLastMonth:
		var records []ClaimRecord
		records, err = p.repo.LastMonthClaims(ctx)
		cfg = lastMonthChart(records)
	default:
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownPanel, panel)
	}
	if err != nil {
		p.telemetry.Record(ctx, "dashboard.claims.fetch_error", map[string]any{
			"panel": key,
			"year":  year,
			"error": err.Error(),
		})
		return Widget{}, fmt.Errorf("dashboard: fetch %s panel: %w", key, err)
	}
	if !p.requests.Current(key, token) {
		return Widget{}, ErrStaleResponse
	}

	title := strcase.ToCase(key, strcase.TitleCase, ' ')
	id := "claims-" + key
	if key != PanelLastMonth {
		title += " " + strconv.Itoa(year)
		id += "-" + strconv.Itoa(year)
	}
	return Widget{
		ID:     id,
		Title:  title,
		Type:   WidgetTypeChart,
		Config: cfg,
		View:   ViewChart,
	}, nil
}

// Summary returns the week, month and year summary card for a status code.
func (p *ClaimsPanels) Summary(ctx context.Context, statusCode string) (ClaimSummary, error) {
	if p == nil || p.repo == nil {
		return ClaimSummary{}, errors.New("dashboard: claims repository not configured")
	}
	if statusCode == "" {
		statusCode = "T"
	}
	return p.repo.SummaryCard(ctx, statusCode)
}

func statusDistributionChart(slices []StatusSlice) ChartConfig {
	labels := make([]string, 0, len(slices))
	values := make([]float64, 0, len(slices))
	colors := make(Colors, 0, len(slices))
	for _, slice := range slices {
		labels = append(labels, slice.Name)
		values = append(values, slice.Value)
		colors = append(colors, slice.Color)
	}
	return ChartConfig{
		Type: "doughnut",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Claims",
				Data:            values,
				BackgroundColor: colors,
			}},
		},
		Options: map[string]any{"responsive": true},
	}
}

func monthlyClaimsChart(monthly MonthlyClaims) ChartConfig {
	labels := monthLabels()
	hist := monthly.Historical
	datasets := []Dataset{
		{Label: "Total", Data: padSeries(hist.Total, 0), BackgroundColor: Colors{"#60A5FA"}},
		{Label: "Accepted", Data: padSeries(hist.Accepted, 0), BackgroundColor: Colors{"#34D399"}},
		{Label: "Rejected", Data: padSeries(hist.Rejected, 0), BackgroundColor: Colors{"#F87171"}},
	}
	if monthly.Forecast != nil {
		offset := len(hist.Total)
		datasets = append(datasets, Dataset{
			Label:           "Forecast",
			Data:            padSeries(monthly.Forecast.Total, offset),
			BackgroundColor: Colors{"#A78BFA"},
		})
	}
	return ChartConfig{
		Type:    "bar",
		Data:    ChartData{Labels: labels, Datasets: datasets},
		Options: map[string]any{"responsive": true},
	}
}

// padSeries places values at offset inside a twelve month series.
func padSeries(values []float64, offset int) []float64 {
	out := make([]float64, 12)
	for i, v := range values {
		if offset+i >= len(out) {
			break
		}
		out[offset+i] = v
	}
	return out
}

func lastMonthChart(records []ClaimRecord) ChartConfig {
	totals := map[string]float64{}
	for _, rec := range records {
		model := rec.Model
		if model == "" {
			model = "Unknown"
		}
		totals[model] += rec.Amount
	}
	models := make([]string, 0, len(totals))
	for model := range totals {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool {
		if totals[models[i]] == totals[models[j]] {
			return models[i] < models[j]
		}
		return totals[models[i]] > totals[models[j]]
	})
	values := make([]float64, len(models))
	for i, model := range models {
		values[i] = math.Round(totals[model]*100) / 100
	}
	return ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: models,
			Datasets: []Dataset{{
				Label:           "Claim amount",
				Data:            values,
				BackgroundColor: Colors{"rgba(54, 162, 235, 0.6)"},
			}},
		},
		Options: map[string]any{"responsive": true},
	}
}
