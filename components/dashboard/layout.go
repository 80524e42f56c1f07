package dashboard

// Grid geometry for newly accepted widgets.
const (
	GridColumns         = 12
	DefaultWidgetWidth  = 6
	DefaultWidgetHeight = 5
	MinWidgetWidth      = 4
	MinWidgetHeight     = 4
)

// nextLayoutEntry places a widget below every occupied row, alternating between
// the left and right half of the grid.
func nextLayoutEntry(layout []LayoutEntry, widgetID string) LayoutEntry {
	return LayoutEntry{
		ID:   widgetID,
		X:    (len(layout) * DefaultWidgetWidth) % GridColumns,
		Y:    bottomRow(layout),
		W:    DefaultWidgetWidth,
		H:    DefaultWidgetHeight,
		MinW: MinWidgetWidth,
		MinH: MinWidgetHeight,
	}
}

func bottomRow(layout []LayoutEntry) int {
	bottom := 0
	for _, entry := range layout {
		if end := entry.Y + entry.H; end > bottom {
			bottom = end
		}
	}
	return bottom
}

// normalizeLayout keeps entries for known widgets only (first entry wins),
// clamps them to the grid, and keeps the previous placement of known widgets the
// new layout omits.
func normalizeLayout(entries []LayoutEntry, known map[string]struct{}, previous []LayoutEntry) []LayoutEntry {
	result := make([]LayoutEntry, 0, len(known))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, ok := known[entry.ID]; !ok {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		result = append(result, clampEntry(entry))
	}
	for _, entry := range previous {
		if _, ok := known[entry.ID]; !ok {
			continue
		}
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		result = append(result, clampEntry(entry))
	}
	return result
}

func clampEntry(entry LayoutEntry) LayoutEntry {
	if entry.MinW <= 0 {
		entry.MinW = MinWidgetWidth
	}
	if entry.MinH <= 0 {
		entry.MinH = MinWidgetHeight
	}
	if entry.MinW > GridColumns {
		entry.MinW = GridColumns
	}
	if entry.W < entry.MinW {
		entry.W = entry.MinW
	}
	if entry.W > GridColumns {
		entry.W = GridColumns
	}
	if entry.H < entry.MinH {
		entry.H = entry.MinH
	}
	if entry.X < 0 {
		entry.X = 0
	}
	if entry.X+entry.W > GridColumns {
		entry.X = GridColumns - entry.W
	}
	if entry.Y < 0 {
		entry.Y = 0
	}
	return entry
}
