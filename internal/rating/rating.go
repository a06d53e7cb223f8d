// Package rating derives a title's displayed rating from its review scores.
//
// The rating is the arithmetic mean rounded to the nearest integer, with exact
// halves rounded up (scores are positive, so this is also half away from zero).
// It is never stored: every read recomputes it from the reviews.
package rating

// SQLExpr computes the same value as FromTotals in Postgres. It expects the reviews
// table to be aliased r and evaluates to NULL when there are no reviews.
const SQLExpr = `((2 * SUM(r.score) + COUNT(r.score)) / NULLIF(2 * COUNT(r.score), 0))::int`

// FromTotals returns nil when count is zero.
func FromTotals(sum, count int64) *int {
	if count <= 0 {
		return nil
	}
	v := int((2*sum + count) / (2 * count))
	return &v
}

// Of is FromTotals over a slice of scores.
func Of(scores []int) *int {
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	return FromTotals(sum, int64(len(scores)))
}
