package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/lrs-signal/internal/types"
)

// DefaultTableRows is how many recent sessions the text report lists.
const DefaultTableRows = 10

// Style definitions.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	MetricLabelStyle = lipgloss.NewStyle().Faint(true)

	MetricValueStyle = lipgloss.NewStyle().Bold(true)

	LeverageBoxStyle = signalBoxStyle(lipgloss.Color("2"))

	CashBoxStyle = signalBoxStyle(lipgloss.Color("1"))
)

func signalBoxStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Bold(true).
		Padding(1, 4).
		Align(lipgloss.Center)
}

// FormatCurrency formats v as dollars with thousands separators, e.g. $1,234.56.
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}

		grouped.WriteRune(r)
	}

	return sign + "$" + grouped.String() + "." + frac
}

// SignalBox renders the signal headline in its color.
func SignalBox(signal types.SignalType) string {
	if signal == types.SignalTypeLeverage {
		return LeverageBoxStyle.Render(SignalLabel(signal))
	}

	return CashBoxStyle.Render(SignalLabel(signal))
}

// Metrics renders the last close and SMA side by side.
func Metrics(r *Report) string {
	date := r.Result.Date.Format(types.DateLayout)

	closeBlock := lipgloss.JoinVertical(lipgloss.Left,
		MetricLabelStyle.Render(fmt.Sprintf("Last %s Close (%s)", r.Ticker, date)),
		MetricValueStyle.Render(FormatCurrency(r.Result.Close)),
	)
	smaBlock := lipgloss.JoinVertical(lipgloss.Left,
		MetricLabelStyle.Render(fmt.Sprintf("%d-Day SMA", r.Window)),
		MetricValueStyle.Render(FormatCurrency(r.Result.SMA)),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, closeBlock, "      ", smaBlock)
}

// RecentTable lists the last rows sessions of the overlay, newest first.
func RecentTable(overlay []types.OverlayPoint, rows int) string {
	if rows <= 0 || rows > len(overlay) {
		rows = len(overlay)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("Date", "Close", "SMA", "Close vs SMA")

	for i := len(overlay) - 1; i >= len(overlay)-rows; i-- {
		p := overlay[i]

		sma, relation := "-", "-"
		if p.SMA.IsSome() {
			value := p.SMA.Unwrap()
			sma = FormatCurrency(value)

			relation = "below"
			if p.Close > value {
				relation = "above"
			} else if p.Close == value {
				relation = "equal"
			}
		}

		t.Row(p.Date.Format(types.DateLayout), FormatCurrency(p.Close), sma, relation)
	}

	return t.String()
}

// Sparkline draws values as a single line of block characters, at most width wide.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sampled := downsample(values, width)

	lo, hi := sampled[0], sampled[0]
	for _, v := range sampled {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	ticks := []rune("▁▂▃▄▅▆▇█")

	var b strings.Builder

	for _, v := range sampled {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(ticks)-1)))
		}

		b.WriteRune(ticks[idx])
	}

	return b.String()
}

// downsample keeps the last value of each bucket so the most recent close is always drawn.
func downsample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}

	out := make([]float64, width)
	for i := range out {
		end := (i + 1) * len(values) / width
		out[i] = values[end-1]
	}

	return out
}

// Chart renders close and SMA sparklines over the same sessions.
func Chart(overlay []types.OverlayPoint, width int) string {
	closes := make([]float64, 0, len(overlay))
	smas := make([]float64, 0, len(overlay))

	for _, p := range overlay {
		if p.SMA.IsNone() {
			continue
		}

		closes = append(closes, p.Close)
		smas = append(smas, p.SMA.Unwrap())
	}

	if len(closes) == 0 {
		return HelpStyle.Render("Not enough data to chart the moving average.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		"Close "+Sparkline(closes, width),
		"SMA   "+Sparkline(smas, width),
	)
}

// RenderText renders the full terminal report.
func RenderText(r *Report, rows int) string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("LRS Signal for %s", r.Ticker)))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Signal for the Next Trading Day (based on %s close)", r.Result.Date.Format(types.DateLayout)))
	s.WriteString("\n\n")
	s.WriteString(Metrics(r))
	s.WriteString("\n\n")
	s.WriteString(SignalBox(r.Result.Signal))
	s.WriteString("\n\n")
	s.WriteString(r.Explanation)
	s.WriteString("\n\n")
	s.WriteString(TitleStyle.Render("Price vs. Moving Average"))
	s.WriteString("\n")
	s.WriteString(Chart(r.Overlay, 60))
	s.WriteString("\n\n")
	s.WriteString(RecentTable(r.Overlay, rows))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render(Disclaimer))
	s.WriteString("\n")

	return s.String()
}

// OverlayPointJSON is the wire form of an overlay point; SMA is null until the window fills.
type OverlayPointJSON struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	SMA   *float64 `json:"sma"`
}

type jsonReport struct {
	Ticker        string             `json:"ticker"`
	Window        int                `json:"window"`
	LookbackYears int                `json:"lookback_years"`
	Provider      string             `json:"provider"`
	Date          string             `json:"date"`
	Close         float64            `json:"close"`
	SMA           float64            `json:"sma"`
	Signal        types.SignalType   `json:"signal"`
	Explanation   string             `json:"explanation"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Overlay       []OverlayPointJSON `json:"overlay,omitempty"`
}

// RenderJSON encodes the report. Overlay points are included only when withOverlay is set;
// a point whose window has not filled carries a null sma.
func RenderJSON(r *Report, withOverlay bool) ([]byte, error) {
	out := jsonReport{
		Ticker:        r.Ticker,
		Window:        r.Window,
		LookbackYears: r.LookbackYears,
		Provider:      string(r.Provider),
		Date:          r.Result.Date.Format(types.DateLayout),
		Close:         r.Result.Close,
		SMA:           r.Result.SMA,
		Signal:        r.Result.Signal,
		Explanation:   r.Explanation,
		GeneratedAt:   r.GeneratedAt.UTC(),
	}

	if withOverlay {
		out.Overlay = OverlayJSON(r.Overlay)
	}

	return json.MarshalIndent(out, "", "  ")
}

// OverlayJSON converts overlay points to their JSON form.
func OverlayJSON(overlay []types.OverlayPoint) []OverlayPointJSON {
	points := make([]OverlayPointJSON, len(overlay))
	for i, p := range overlay {
		points[i] = OverlayPointJSON{Date: p.Date.Format(types.DateLayout), Close: p.Close}
		if p.SMA.IsSome() {
			sma := p.SMA.Unwrap()
			points[i].SMA = &sma
		}
	}

	return points
}
