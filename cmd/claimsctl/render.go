package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// renderPreview prints the widget title, chart type and its table projection.
func renderPreview(preview dashboard.Preview) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(preview.Widget.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s chart, widget %s", preview.Widget.Config.Type, preview.Widget.ID)))
	b.WriteString("\n")
	b.WriteString(renderTable(preview.Table.Headers, preview.Table.Rows))
	b.WriteString("\n")
	return b.String()
}

func renderClaimsTable(t claims.Table) string {
	columns := t.Columns()
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		rows = append(rows, cells)
	}
	return renderTable(columns, rows)
}

func renderSummary(summary dashboard.ClaimSummary) string {
	periods := []struct {
		name string
		data dashboard.PeriodSummary
	}{
		{"Week", summary.Week},
		{"Month", summary.Month},
		{"Year", summary.Year},
	}
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, []string{
			p.name,
			fmt.Sprint(p.data.Value),
			fmt.Sprint(p.data.ProjectedClaim),
			fmt.Sprintf("%+d (%s)", p.data.Change, p.data.ChangeType),
			fmt.Sprintf("%.2f", p.data.Cost),
		})
	}
	return renderTable([]string{"Period", "Claims", "Projected", "Change", "Cost"}, rows)
}

func renderPrediction(p claims.Prediction) string {
	rows := [][]string{
		{"Status", fmt.Sprintf("%s (%s)", p.StatusName(), p.WarrantyStatus), fmt.Sprintf("%.0f%%", p.WarrantyStatusProbability*100)},
		{"Reason", p.ReasonCode, fmt.Sprintf("%.0f%%", p.ReasonCodeProbability*100)},
	}
	return renderTable([]string{"Prediction", "Value", "Confidence"}, rows)
}

func renderMarkdown(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%.2f", value)
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatCell(value[k])
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(value)
	}
}
