// Package dashboard re-exports the claims dashboard core for applications
// that embed it without reaching into components/.
package dashboard

import (
	core "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

type (
	Board         = core.Board
	Widget        = core.Widget
	LayoutEntry   = core.LayoutEntry
	FlowManager   = core.FlowManager
	FlowOptions   = core.FlowOptions
	FlowSnapshot  = core.FlowSnapshot
	KeyValueStore = core.KeyValueStore
	Generator     = core.Generator
	Telemetry     = core.Telemetry
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewFlowManager proxies to the internal constructor.
func NewFlowManager(service *Service, opts FlowOptions) *FlowManager {
	return core.NewFlowManager(service, opts)
}
