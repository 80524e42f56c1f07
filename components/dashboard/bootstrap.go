package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedClaimsBoard fills an empty board with the claims panels for year. A board
// that already has widgets is left alone.
func SeedClaimsBoard(ctx context.Context, service *Service, panels *ClaimsPanels, year int) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed the board")
	}
	if panels == nil {
		return errors.New("dashboard: claims panels are required to seed the board")
	}
	if len(service.Widgets()) > 0 {
		return nil
	}
	var (
		widgets []Widget
		seedErr error
	)
	for _, key := range panels.Panels() {
		widget, err := panels.Widget(ctx, key, year)
		if err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed panel %s: %w", key, err))
			continue
		}
		widgets = append(widgets, widget)
	}
	if len(widgets) == 0 {
		return seedErr
	}
	if err := service.ImportBoard(ctx, Board{Widgets: widgets}); err != nil {
		return errors.Join(seedErr, err)
	}
	return seedErr
}
