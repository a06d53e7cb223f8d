package utils

import (
	"fmt"
	"strings"
)

// WhereBuilder collects AND-ed conditions with positional pgx arguments.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
}

// Add appends a condition whose single placeholder is written as "?".
func (w *WhereBuilder) Add(condition string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, strings.Replace(condition, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// Clause renders "WHERE ..." or the empty string.
func (w *WhereBuilder) Clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conditions, " AND ")
}

// Args returns the collected arguments.
func (w *WhereBuilder) Args() []interface{} {
	return w.args
}

// NextArg returns the placeholder for an argument appended after the conditions.
func (w *WhereBuilder) NextArg(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s safe for use inside an ILIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern builds a case-insensitive substring pattern.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
