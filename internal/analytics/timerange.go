package analytics

import (
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

const (
	DefaultPeriod = "30d"

	// Largest window a single request may scan. Period presets stay inside
	// this; explicit ranges are rejected beyond it so an export can never
	// materialize years of samples.
	maxLookback = 366 * 24 * time.Hour
)

var periodDurations = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// TimeRange is a resolved half-open query window [Start, End). For explicit
// ranges the labels keep the caller's inclusive end date; End itself is
// pushed past it so queries can stay half-open.
type TimeRange struct {
	Start  time.Time
	End    time.Time
	Period string

	startLabel string
	endLabel   string
}

// StartLabel and EndLabel name the range in filenames and response echoes.
func (tr TimeRange) StartLabel() string {
	if tr.startLabel != "" {
		return tr.startLabel
	}
	return tr.Start.UTC().Format("2006-01-02")
}

func (tr TimeRange) EndLabel() string {
	if tr.endLabel != "" {
		return tr.endLabel
	}
	return tr.End.UTC().Format("2006-01-02")
}

// ResolveTimeRange turns request parameters into a concrete window.
// Explicit start/end dates win over the named period; a named period
// resolves to [now - period, now). Unrecognized or empty periods fall back
// to 30d rather than failing.
func ResolveTimeRange(startDate, endDate, period string, now time.Time) (TimeRange, error) {
	if startDate != "" || endDate != "" {
		return resolveExplicit(startDate, endDate)
	}

	d, ok := periodDurations[period]
	if !ok {
		period = DefaultPeriod
		d = periodDurations[DefaultPeriod]
	}
	return TimeRange{Start: now.Add(-d), End: now, Period: period}, nil
}

// ResolveExportRange is the stricter form for exports: both dates are
// required and must be ordered.
func ResolveExportRange(startDate, endDate string) (TimeRange, error) {
	if startDate == "" || endDate == "" {
		return TimeRange{}, shared.ErrValidation
	}
	return resolveExplicit(startDate, endDate)
}

func resolveExplicit(startDate, endDate string) (TimeRange, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return TimeRange{}, shared.ErrValidation
	}
	end, err := parseDate(endDate)
	if err != nil {
		return TimeRange{}, shared.ErrValidation
	}
	if end.Before(start) {
		return TimeRange{}, shared.ErrValidation
	}

	// A date-only end means "through that day": push the exclusive bound to
	// the next midnight.
	exclusiveEnd := end.AddDate(0, 0, 1)

	if exclusiveEnd.Sub(start) > maxLookback {
		return TimeRange{}, shared.ErrValidation
	}

	return TimeRange{
		Start:      start,
		End:        exclusiveEnd,
		Period:     "custom",
		startLabel: start.Format("2006-01-02"),
		endLabel:   end.Format("2006-01-02"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}
