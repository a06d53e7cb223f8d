package model

import "strings"

// Ordering is a validated sort key for title lists.
type Ordering struct {
	Field string // name, year, rating or "" for insertion order
	Desc  bool
}

var orderColumns = map[string]string{
	"name":   "t.name",
	"year":   "t.year",
	"rating": "rating",
}

// ParseOrdering accepts "", "name", "-name", "year", "-year", "rating", "-rating".
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ordering{}, nil
	}

	o := Ordering{Field: strings.TrimPrefix(raw, "-"), Desc: strings.HasPrefix(raw, "-")}
	if _, ok := orderColumns[o.Field]; !ok {
		return Ordering{}, ErrInvalidOrdering
	}
	return o, nil
}

// SQL renders the ORDER BY body. Nulls (unrated titles) always sort last and
// id breaks ties so pages are stable.
func (o Ordering) SQL() string {
	column, ok := orderColumns[o.Field]
	if !ok {
		return "t.id ASC"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return column + " " + dir + " NULLS LAST, t.id ASC"
}
