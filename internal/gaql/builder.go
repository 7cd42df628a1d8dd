package gaql

import (
	"fmt"
	"strings"
	"time"
)

// Condition is one WHERE clause fragment. Conditions are only built through
// the constructors below, so every rendered query is well-formed and values
// are always escaped.
type Condition struct {
	expr string
}

// Eq matches a string field against a quoted, escaped literal.
func Eq(field, value string) Condition {
	return Condition{expr: fmt.Sprintf("%s = '%s'", field, escape(value))}
}

// EqID matches a numeric identifier field. Non-digit characters are stripped
// so a malformed ID can never break out of the literal.
func EqID(field, id string) Condition {
	return Condition{expr: fmt.Sprintf("%s = %s", field, digitsOnly(id))}
}

// Is matches a field against an unquoted enum or boolean literal.
func Is(field, literal string) Condition {
	return Condition{expr: fmt.Sprintf("%s = %s", field, literal)}
}

// In matches a string field against a quoted list.
func In(field string, values ...string) Condition {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+escape(v)+"'")
	}
	return Condition{expr: fmt.Sprintf("%s IN (%s)", field, strings.Join(quoted, ", "))}
}

// During filters segments.date by a named GAQL preset.
func During(preset string) Condition {
	return Condition{expr: fmt.Sprintf("segments.date DURING %s", preset)}
}

// Between filters a date field by a closed range.
func Between(field string, start, end time.Time) Condition {
	return Condition{expr: fmt.Sprintf(
		"%s BETWEEN '%s' AND '%s'",
		field,
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
	)}
}

// GreaterThan filters a metric field by a numeric lower bound.
func GreaterThan(field string, value int64) Condition {
	return Condition{expr: fmt.Sprintf("%s > %d", field, value)}
}

// DateCondition turns a resolved window into its date condition. The second
// return is false for WindowNone, meaning no date filtering at all — which is
// a distinct outcome from the default window, not a fallback.
func DateCondition(w Window) (Condition, bool) {
	switch w.Kind {
	case WindowPreset:
		return During(w.Preset), true
	case WindowRange:
		return Between("segments.date", w.Start, w.End), true
	default:
		return Condition{}, false
	}
}

// CampaignCondition builds the optional campaign equality filter. The second
// return is false when no campaign filter was requested.
func CampaignCondition(campaignID string) (Condition, bool) {
	if strings.TrimSpace(campaignID) == "" {
		return Condition{}, false
	}
	return EqID("campaign.id", campaignID), true
}

// Query is an immutable GAQL expression tree. Every method returns a copy, so
// definitions can share partially built queries safely.
type Query struct {
	fields   []string
	resource string
	conds    []Condition
	orderBy  string
	limit    int
}

// Select starts a query with the given fields.
func Select(fields ...string) Query {
	return Query{fields: fields}
}

// From sets the resource the query reads.
func (q Query) From(resource string) Query {
	q.resource = resource
	return q
}

// Where appends conditions. Zero-valued conditions are skipped so optional
// filters can be passed through unconditionally.
func (q Query) Where(conds ...Condition) Query {
	kept := make([]Condition, 0, len(q.conds)+len(conds))
	kept = append(kept, q.conds...)
	for _, c := range conds {
		if c.expr != "" {
			kept = append(kept, c)
		}
	}
	q.conds = kept
	return q
}

// OrderBy sets the ordering expression, e.g. "metrics.cost_micros DESC".
func (q Query) OrderBy(expr string) Query {
	q.orderBy = expr
	return q
}

// Limit caps the number of returned rows. Zero means no LIMIT clause.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Build renders the query. This is the single serialization point for every
// GAQL string the service sends.
func (q Query) Build() string {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.resource)

	if len(q.conds) > 0 {
		exprs := make([]string, 0, len(q.conds))
		for _, c := range q.conds {
			exprs = append(exprs, c.expr)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(exprs, " AND "))
	}

	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}

	if q.limit > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d", q.limit))
	}

	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
