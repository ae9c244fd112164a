package dashboard

import "github.com/rxtech-lab/lrs-signal/internal/report"

// ReportMsg carries a freshly built report.
type ReportMsg struct {
	Report *report.Report
}

// FetchErrorMsg indicates that building the report for Window failed.
type FetchErrorMsg struct {
	Window int
	Err    error
}
