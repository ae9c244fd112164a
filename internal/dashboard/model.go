// Package dashboard is the interactive terminal view of the signal.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

const tableRows = 8

// ReportBuilder builds a report for a moving average window.
type ReportBuilder interface {
	Build(ctx context.Context, window int) (*report.Report, error)
}

// Model is the main Bubble Tea model for the signal dashboard.
type Model struct {
	builder   ReportBuilder
	refresh   func()
	ticker    string
	periods   []int
	periodIdx int
	report    *report.Report
	dataTable table.Model
	spinner   spinner.Model
	loading   bool
	err       error
	width     int
	height    int
}

// NewModel creates a new Model starting at window. refresh, if not nil, runs inside
// the fetch command of a user-requested refetch so cached data is dropped first.
func NewModel(builder ReportBuilder, ticker string, window int, refresh func()) Model {
	periods := slices.Clone(indicator.SupportedPeriods)

	idx := slices.Index(periods, window)
	if idx < 0 {
		idx = slices.Index(periods, indicator.DefaultPeriod)
	}

	return Model{
		builder:   builder,
		refresh:   refresh,
		ticker:    ticker,
		periods:   periods,
		periodIdx: idx,
		dataTable: NewOverlayTable(),
		spinner:   NewSpinner(),
		loading:   true,
		width:     80,
	}
}

// Window returns the selected moving average period.
func (m Model) Window() int {
	return m.periods[m.periodIdx]
}

// Report returns the last successfully built report, if any.
func (m Model) Report() *report.Report {
	return m.report
}

// Err returns the error of the last fetch, if any.
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(nil))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.periodIdx = (m.periodIdx - 1 + len(m.periods)) % len(m.periods)
			return m.startFetch(nil)
		case "right", "l":
			m.periodIdx = (m.periodIdx + 1) % len(m.periods)
			return m.startFetch(nil)
		case "r":
			return m.startFetch(m.refresh)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dataTable.SetWidth(msg.Width)
		return m, nil

	case ReportMsg:
		// Drop responses for a period the user has already moved away from
		if msg.Report.Window != m.Window() {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.report = msg.Report
		m.dataTable = UpdateTableRows(m.dataTable, msg.Report.Overlay, tableRows)
		return m, nil

	case FetchErrorMsg:
		if msg.Window != m.Window() {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		m.report = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) startFetch(refresh func()) (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.fetch(refresh))
}

// fetch returns a command that builds the report for the selected window.
// refresh, if not nil, runs first in the command so Update never blocks on it.
func (m Model) fetch(refresh func()) tea.Cmd {
	window := m.Window()
	builder := m.builder

	return func() tea.Msg {
		if refresh != nil {
			refresh()
		}

		r, err := builder.Build(context.Background(), window)
		if err != nil {
			return FetchErrorMsg{Window: window, Err: err}
		}

		return ReportMsg{Report: r}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("LRS Signal for Next Trading Day - %s", m.ticker)))
	s.WriteString("\n\n")
	s.WriteString("Moving Average Period: ")
	s.WriteString(PeriodSelector(m.periods, m.periodIdx))
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(m.spinner.View())
		s.WriteString(" Fetching price data...\n")
	case m.err != nil:
		s.WriteString(ErrorStyle.Render(errorMessage(m.err)))
		s.WriteString("\n")
	case m.report != nil:
		r := m.report
		s.WriteString(fmt.Sprintf("Signal for the Next Trading Day (based on %s close)", r.Result.Date.Format(types.DateLayout)))
		s.WriteString("\n\n")
		s.WriteString(report.Metrics(r))
		s.WriteString("\n\n")
		s.WriteString(report.SignalBox(r.Result.Signal))
		s.WriteString("\n\n")
		s.WriteString(r.Explanation)
		s.WriteString("\n\n")
		s.WriteString(report.Chart(r.Overlay, max(m.width-10, 10)))
		s.WriteString("\n\n")
		s.WriteString(m.dataTable.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render(report.Disclaimer))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("←/→: MA period | r: refresh | q: quit"))

	return s.String()
}

func errorMessage(err error) string {
	var insufficient *errors.InsufficientDataError
	if errors.As(err, &insufficient) {
		return report.InsufficientMessage(insufficient)
	}

	var unavailable *errors.DataUnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Sprintf("Price data unavailable: %v", unavailable)
	}

	return fmt.Sprintf("Error: %v", err)
}
