package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// BoardInput requests the current board.
type BoardInput struct{}

type boardService interface {
	Snapshot() dashboard.Board
}

// BoardQuery returns a copy of the widgets and layout.
type BoardQuery struct {
	service boardService
}

// NewBoardQuery builds the query.
func NewBoardQuery(service boardService) *BoardQuery {
	return &BoardQuery{service: service}
}

var _ gocommand.Querier[BoardInput, dashboard.Board] = (*BoardQuery)(nil)

// Query returns the board snapshot.
func (q *BoardQuery) Query(_ context.Context, _ BoardInput) (dashboard.Board, error) {
	if q.service == nil {
		return dashboard.Board{}, errors.New("board query requires service")
	}
	return q.service.Snapshot(), nil
}
