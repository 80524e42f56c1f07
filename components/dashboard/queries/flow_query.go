package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// FlowInput identifies a creation flow.
type FlowInput struct {
	FlowID string
}

type flowLookup interface {
	Snapshot(id string) (dashboard.FlowSnapshot, error)
}

// FlowQuery reports the state and preview of a creation flow.
type FlowQuery struct {
	flows flowLookup
}

// NewFlowQuery builds the query.
func NewFlowQuery(flows flowLookup) *FlowQuery {
	return &FlowQuery{flows: flows}
}

var _ gocommand.Querier[FlowInput, dashboard.FlowSnapshot] = (*FlowQuery)(nil)

// Query returns the flow snapshot.
func (q *FlowQuery) Query(_ context.Context, input FlowInput) (dashboard.FlowSnapshot, error) {
	if q.flows == nil {
		return dashboard.FlowSnapshot{}, errors.New("flow query requires flow manager")
	}
	return q.flows.Snapshot(input.FlowID)
}
