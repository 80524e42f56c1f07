package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ClaimsPanelInput selects a claims panel and year. A zero year means the
// current one.
type ClaimsPanelInput struct {
	Panel string
	Year  int
}

type claimsPanels interface {
	Widget(ctx context.Context, panel string, year int) (dashboard.Widget, error)
	Summary(ctx context.Context, statusCode string) (dashboard.ClaimSummary, error)
}

// ClaimsPanelQuery builds an uncommitted chart widget from claims data.
type ClaimsPanelQuery struct {
	panels claimsPanels
}

// NewClaimsPanelQuery builds the query.
func NewClaimsPanelQuery(panels claimsPanels) *ClaimsPanelQuery {
	return &ClaimsPanelQuery{panels: panels}
}

var _ gocommand.Querier[ClaimsPanelInput, dashboard.Widget] = (*ClaimsPanelQuery)(nil)

// Query fetches the panel.
func (q *ClaimsPanelQuery) Query(ctx context.Context, input ClaimsPanelInput) (dashboard.Widget, error) {
	if q.panels == nil {
		return dashboard.Widget{}, errors.New("claims panel query requires panels")
	}
	return q.panels.Widget(ctx, input.Panel, input.Year)
}

// ClaimsSummaryInput selects the status code of the summary card.
type ClaimsSummaryInput struct {
	StatusCode string
}

// ClaimsSummaryQuery returns the week, month and year claim summary.
type ClaimsSummaryQuery struct {
	panels claimsPanels
}

// NewClaimsSummaryQuery builds the query.
func NewClaimsSummaryQuery(panels claimsPanels) *ClaimsSummaryQuery {
	return &ClaimsSummaryQuery{panels: panels}
}

var _ gocommand.Querier[ClaimsSummaryInput, dashboard.ClaimSummary] = (*ClaimsSummaryQuery)(nil)

// Query fetches the summary card.
func (q *ClaimsSummaryQuery) Query(ctx context.Context, input ClaimsSummaryInput) (dashboard.ClaimSummary, error) {
	if q.panels == nil {
		return dashboard.ClaimSummary{}, errors.New("claims summary query requires panels")
	}
	return q.panels.Summary(ctx, input.StatusCode)
}
