package model

// TermRef is the embedded view of a category or genre.
type TermRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is the read model. Rating is derived from reviews on every read and is
// nil when the title has none.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Description *string
	Category    *TermRef
	Genres      []TermRef
	Rating      *int
}

// Record is the write model: the row as stored plus its genre links.
type Record struct {
	ID          int64
	Name        string
	Year        int
	Description *string
	CategoryID  *int64
	GenreIDs    []int64
}
