package dashboard

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/rxtech-lab/lrs-signal/internal/engine"
	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/mocks"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuilder computes reports from a fixed series and records requested windows.
type fakeBuilder struct {
	mu      sync.Mutex
	series  types.PriceSeries
	err     error
	windows []int
}

func (f *fakeBuilder) Build(_ context.Context, window int) (*report.Report, error) {
	f.mu.Lock()
	f.windows = append(f.windows, window)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	result, err := engine.ComputeSignal(f.series, window)
	if err != nil {
		return nil, err
	}

	ma, err := indicator.NewMAWithPeriod(window)
	if err != nil {
		return nil, err
	}

	return &report.Report{
		Ticker:      "SPY",
		Window:      window,
		Result:      result,
		Overlay:     ma.Overlay(f.series),
		Explanation: report.Explanation(result),
	}, nil
}

func (f *fakeBuilder) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int(nil), f.windows...)
}

func risingSeries() types.PriceSeries {
	return mocks.Linear(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 250, 100, 1)
}

func TestNewModel(t *testing.T) {
	m := NewModel(&fakeBuilder{}, "SPY", 200, nil)

	assert.Equal(t, 200, m.Window())
	assert.True(t, m.loading)
	assert.Nil(t, m.Report())
	assert.NoError(t, m.Err())
}

func TestNewModelUnsupportedWindowFallsBackToDefault(t *testing.T) {
	m := NewModel(&fakeBuilder{}, "SPY", 30, nil)

	assert.Equal(t, indicator.DefaultPeriod, m.Window())
}

func TestPeriodCycling(t *testing.T) {
	m := NewModel(&fakeBuilder{}, "SPY", 200, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	updated := next.(Model)
	assert.Equal(t, 10, updated.Window())
	assert.True(t, updated.loading)
	assert.NotNil(t, cmd)

	next, _ = updated.Update(tea.KeyMsg{Type: tea.KeyLeft})
	updated = next.(Model)
	assert.Equal(t, 200, updated.Window())

	next, _ = updated.Update(tea.KeyMsg{Type: tea.KeyLeft})
	updated = next.(Model)
	assert.Equal(t, 100, updated.Window())
}

func TestStaleReportIsDropped(t *testing.T) {
	builder := &fakeBuilder{series: risingSeries()}
	m := NewModel(builder, "SPY", 200, nil)

	stale, err := builder.Build(context.Background(), 50)
	require.NoError(t, err)

	next, _ := m.Update(ReportMsg{Report: stale})
	updated := next.(Model)
	assert.True(t, updated.loading)
	assert.Nil(t, updated.Report())

	current, err := builder.Build(context.Background(), 200)
	require.NoError(t, err)

	next, _ = updated.Update(ReportMsg{Report: current})
	updated = next.(Model)
	assert.False(t, updated.loading)
	assert.Equal(t, current, updated.Report())
}

func TestFetchErrorMessage(t *testing.T) {
	m := NewModel(&fakeBuilder{}, "SPY", 200, nil)

	next, _ := m.Update(FetchErrorMsg{Window: 200, Err: errors.NewInsufficientDataError(200, 150, "SPY")})
	updated := next.(Model)

	assert.False(t, updated.loading)
	assert.Error(t, updated.Err())
	assert.Contains(t, updated.View(), "200 daily closes required, 150 available")
}

func TestErrorMessage(t *testing.T) {
	unavailable := errors.NewDataUnavailableError("SPY", "polygon", context.DeadlineExceeded)
	assert.Contains(t, errorMessage(unavailable), "Price data unavailable")
	assert.Contains(t, errorMessage(context.Canceled), "Error: context canceled")
}

// runBatch executes cmd and any commands batched inside it, returning the messages.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, runBatch(c)...)
	}

	return msgs
}

func hasReport(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(ReportMsg); ok {
			return true
		}
	}

	return false
}

func TestRefreshRunsInsideFetchCommand(t *testing.T) {
	builder := &fakeBuilder{series: risingSeries()}
	refreshed := 0
	m := NewModel(builder, "SPY", 200, func() { refreshed++ })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	updated := next.(Model)

	assert.Equal(t, 0, refreshed, "refresh must not run on the event loop")
	assert.True(t, updated.loading)

	msgs := runBatch(cmd)
	assert.Equal(t, 1, refreshed)
	assert.True(t, hasReport(msgs))
	assert.Equal(t, []int{200}, builder.requested())
}

func TestPeriodChangeDoesNotRefresh(t *testing.T) {
	refreshed := 0
	m := NewModel(&fakeBuilder{series: risingSeries()}, "SPY", 200, func() { refreshed++ })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	msgs := runBatch(cmd)

	assert.Equal(t, 0, refreshed)
	assert.True(t, hasReport(msgs))
}

func TestDashboardRendersSignal(t *testing.T) {
	builder := &fakeBuilder{series: risingSeries()}
	m := NewModel(builder, "SPY", 200, nil)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 60))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("LEVERAGE")) &&
			bytes.Contains(bts, []byte("200-Day SMA"))
	}, teatest.WithDuration(2*time.Second))

	// Move to the 10-day period
	tm.Send(tea.KeyMsg{Type: tea.KeyRight})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("10-Day SMA"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok)
	assert.Equal(t, 10, final.Window())
	assert.Equal(t, []int{200, 10}, builder.requested())
}

func TestDashboardShowsInsufficientData(t *testing.T) {
	builder := &fakeBuilder{series: mocks.Linear(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 40, 100, 1)}
	m := NewModel(builder, "SPY", 50, nil)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("40 available"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestWindowResize(t *testing.T) {
	m := NewModel(&fakeBuilder{}, "SPY", 200, nil)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := next.(Model)

	assert.Equal(t, 120, updated.width)
	assert.Equal(t, 40, updated.height)
}

func TestFormatCloseVsSMA(t *testing.T) {
	assert.Equal(t, "$101.00 ▲", FormatCloseVsSMA(101, 100))
	assert.Equal(t, "$99.00 ▼", FormatCloseVsSMA(99, 100))
	assert.Equal(t, "$100.00 =", FormatCloseVsSMA(100, 100))
}

func TestUpdateTableRows(t *testing.T) {
	builder := &fakeBuilder{series: risingSeries()}
	r, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)

	tbl := UpdateTableRows(NewOverlayTable(), r.Overlay, 3)
	rows := tbl.Rows()

	require.Len(t, rows, 3)
	assert.Equal(t, "2024-09-06", rows[0][0])
	assert.Contains(t, rows[0][1], "▲")
}
