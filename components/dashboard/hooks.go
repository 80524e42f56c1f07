package dashboard

import (
	"context"
	"errors"
)

// RefreshHookFunc adapts a function into a RefreshHook.
type RefreshHookFunc func(ctx context.Context, event BoardEvent) error

// BoardUpdated calls f.
func (f RefreshHookFunc) BoardUpdated(ctx context.Context, event BoardEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// RefreshHooks forwards board events to every hook and joins their errors.
type RefreshHooks []RefreshHook

// BoardUpdated notifies each hook in order.
func (h RefreshHooks) BoardUpdated(ctx context.Context, event BoardEvent) error {
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		errs = errors.Join(errs, hook.BoardUpdated(ctx, event))
	}
	return errs
}
