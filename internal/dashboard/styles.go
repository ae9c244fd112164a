package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/lrs-signal/internal/report"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	// SelectedPeriodStyle for the active MA period.
	SelectedPeriodStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// FormatCloseVsSMA formats a close with an arrow showing which side of the SMA it is on.
func FormatCloseVsSMA(close, sma float64) string {
	closeStr := report.FormatCurrency(close)

	if close > sma {
		return closeStr + " ▲"
	} else if close < sma {
		return closeStr + " ▼"
	}

	return closeStr + " ="
}

// PeriodSelector renders the supported periods with the active one highlighted.
func PeriodSelector(periods []int, selected int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		label := fmt.Sprintf("%d", p)
		if i == selected {
			parts[i] = SelectedPeriodStyle.Render("[" + label + "]")
		} else {
			parts[i] = HelpStyle.Render(" " + label + " ")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
