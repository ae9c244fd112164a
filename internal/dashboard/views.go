package dashboard

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/internal/types"
)

// NewSpinner creates the loading spinner.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return s
}

// NewOverlayTable creates a new table for the most recent closes and their SMA.
func NewOverlayTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Close", Width: 16},
		{Title: "SMA", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Cell

	t.SetStyles(s)

	return t
}

// UpdateTableRows fills the table with the last rows overlay points, newest first.
func UpdateTableRows(t table.Model, overlay []types.OverlayPoint, rows int) table.Model {
	if rows > len(overlay) {
		rows = len(overlay)
	}

	tableRows := make([]table.Row, 0, rows)

	for i := len(overlay) - 1; i >= len(overlay)-rows; i-- {
		p := overlay[i]

		closeStr, sma := report.FormatCurrency(p.Close), "-"
		if p.SMA.IsSome() {
			closeStr = FormatCloseVsSMA(p.Close, p.SMA.Unwrap())
			sma = report.FormatCurrency(p.SMA.Unwrap())
		}

		tableRows = append(tableRows, table.Row{p.Date.Format(types.DateLayout), closeStr, sma})
	}

	t.SetRows(tableRows)

	return t
}
