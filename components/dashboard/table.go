package dashboard

import "strconv"

// TableProjection is the tabular rendering of a chart: one row per label paired
// with the first series' value at the same index.
type TableProjection struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ProjectTable derives the table view from a chart configuration. Labels without
// a matching value produce an empty cell.
func ProjectTable(cfg ChartConfig) TableProjection {
	valueHeader := "Value"
	var values []float64
	if len(cfg.Data.Datasets) > 0 {
		first := cfg.Data.Datasets[0]
		if first.Label != "" {
			valueHeader = first.Label
		}
		values = first.Data
	}
	rows := make([][]string, len(cfg.Data.Labels))
	for i, label := range cfg.Data.Labels {
		cell := ""
		if i < len(values) {
			cell = formatValue(values[i])
		}
		rows[i] = []string{label, cell}
	}
	return TableProjection{
		Headers: []string{"Model", valueHeader},
		Rows:    rows,
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
