package conversation

import (
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

const (
	MaxPageLimit     = 100
	DefaultPageLimit = 20
)

// Filter holds the optional criteria of a history query. The predicate each
// field contributes is a pure function of this struct; nothing mutates a
// query builder conditionally, so the scope of every bound stays visible.
// StartDate is inclusive, EndDate exclusive, matching the half-open ranges
// used everywhere else.
type Filter struct {
	Search          string
	StartDate       *time.Time
	EndDate         *time.Time
	MinSatisfaction *int
	MaxSatisfaction *int
}

// HasSatisfactionBound reports whether either satisfaction bound is set.
// When true, conversations without a metrics record are excluded.
func (f Filter) HasSatisfactionBound() bool {
	return f.MinSatisfaction != nil || f.MaxSatisfaction != nil
}

// DatePredicate returns the SQL fragment and args for the chatbot and date
// bound alone. The total-count query uses exactly this predicate: search and
// satisfaction filters are deliberately not part of the count, matching the
// shipped behavior the dashboard depends on.
func (f Filter) DatePredicate(chatbotID string) (string, []any) {
	query := "chatbot_id = ?"
	args := []any{chatbotID}
	if f.StartDate != nil {
		query += " AND started_at >= ?"
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		query += " AND started_at < ?"
		args = append(args, *f.EndDate)
	}
	return query, args
}

// MatchesSatisfaction applies the satisfaction bound to a metrics record.
// A nil record fails whenever any bound is set, as does a record without a
// satisfaction value.
func (f Filter) MatchesSatisfaction(m *Metrics) bool {
	if !f.HasSatisfactionBound() {
		return true
	}
	if m == nil || m.UserSatisfaction == nil {
		return false
	}
	if f.MinSatisfaction != nil && *m.UserSatisfaction < *f.MinSatisfaction {
		return false
	}
	if f.MaxSatisfaction != nil && *m.UserSatisfaction > *f.MaxSatisfaction {
		return false
	}
	return true
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type Sort struct {
	Field     string
	Direction SortDirection
}

var sortableFields = map[string]bool{
	"started_at": true,
	"ended_at":   true,
	"session_id": true,
}

// OrderClause maps the sort spec onto a whitelisted ORDER BY. Unknown fields
// and directions fall back to started_at desc.
func (s Sort) OrderClause() string {
	field := s.Field
	if !sortableFields[field] {
		field = "started_at"
	}
	dir := "DESC"
	if s.Direction == SortAsc {
		dir = "ASC"
	}
	return field + " " + dir
}

type Page struct {
	Page  int
	Limit int
}

// Normalize validates pagination and fills defaults. Page must be >= 1 and
// limit within [1, 100]; anything else is a validation error surfaced before
// any query runs.
func (p Page) Normalize() (Page, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 1 {
		return p, shared.ErrValidation
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return p, shared.ErrValidation
	}
	return p, nil
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Result is one page of the filtered history plus the pagination envelope.
type Result struct {
	Items []*Detail
	Total int64
	Page  int
	Limit int
	Pages int
}
