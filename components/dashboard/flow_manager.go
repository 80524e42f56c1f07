package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FlowManager keeps the open creation flows of a board, keyed by flow id.
// Committed flows are dropped.
type FlowManager struct {
	board    *Service
	opts     FlowOptions
	requests *requestSequencer

	mu    sync.RWMutex
	flows map[string]*CreationFlow
}

// NewFlowManager builds a manager whose flows commit to board.
func NewFlowManager(board *Service, opts FlowOptions) *FlowManager {
	return &FlowManager{
		board:    board,
		opts:     opts.normalize(),
		requests: newRequestSequencer(),
		flows:    make(map[string]*CreationFlow),
	}
}

// Open starts a flow. An empty id is replaced with a random one.
func (m *FlowManager) Open(ctx context.Context, id string) (*CreationFlow, error) {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.flows[id]; exists {
		return nil, fmt.Errorf("dashboard: flow %s already open", id)
	}
	flow := newCreationFlow(id, m.board, m.opts, m.requests)
	m.flows[id] = flow
	m.opts.Telemetry.Record(ctx, "dashboard.flow.open", map[string]any{"flow_id": id})
	return flow, nil
}

// Flow returns an open flow.
func (m *FlowManager) Flow(id string) (*CreationFlow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flow, ok := m.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}
	return flow, nil
}

// Snapshot returns the state of an open flow.
func (m *FlowManager) Snapshot(id string) (FlowSnapshot, error) {
	flow, err := m.Flow(id)
	if err != nil {
		return FlowSnapshot{}, err
	}
	return flow.Snapshot(), nil
}

// Submit forwards to CreationFlow.Submit.
func (m *FlowManager) Submit(ctx context.Context, id, prompt string) (Preview, error) {
	flow, err := m.Flow(id)
	if err != nil {
		return Preview{}, err
	}
	return flow.Submit(ctx, prompt)
}

// Retry forwards to CreationFlow.Retry.
func (m *FlowManager) Retry(ctx context.Context, id string) (Preview, error) {
	flow, err := m.Flow(id)
	if err != nil {
		return Preview{}, err
	}
	return flow.Retry(ctx)
}

// Cancel forwards to CreationFlow.Cancel.
func (m *FlowManager) Cancel(ctx context.Context, id string) error {
	flow, err := m.Flow(id)
	if err != nil {
		return err
	}
	return flow.Cancel(ctx)
}

// Accept commits the previewed widget and closes the flow.
func (m *FlowManager) Accept(ctx context.Context, id string) (Widget, error) {
	flow, err := m.Flow(id)
	if err != nil {
		return Widget{}, err
	}
	widget, err := flow.Accept(ctx)
	if err != nil {
		return Widget{}, err
	}
	m.drop(id)
	return widget, nil
}

// Close abandons a flow without committing anything.
func (m *FlowManager) Close(ctx context.Context, id string) error {
	flow, err := m.Flow(id)
	if err != nil {
		return err
	}
	_ = flow.Cancel(ctx)
	m.drop(id)
	return nil
}

// Len returns the number of open flows.
func (m *FlowManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flows)
}

func (m *FlowManager) drop(id string) {
	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()
	m.requests.Invalidate(id)
}
