package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"yamdb-backend/internal/shared/utils"
)

// Filter holds the list query filters. Empty fields do not filter.
type Filter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

type ListQuery struct {
	Filter   Filter
	Ordering Ordering
	Page     int
	Limit    int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// CreateTitleRequest references its category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

func (r *CreateTitleRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Genre = normalizeSlugs(r.Genre)
}

func (r CreateTitleRequest) Validate(now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 256)),
		validation.Field(&r.Year, validation.NotNil, validation.By(yearRule(now))),
		validation.Field(&r.Genre, validation.Each(validation.Match(utils.SlugPattern))),
	)
}

// UpdateTitleRequest is a partial update. Category may be set to null to clear it.
type UpdateTitleRequest struct {
	Name        *string                  `json:"name"`
	Year        *int                     `json:"year"`
	Description utils.Optional[string]   `json:"description"`
	Category    utils.Optional[string]   `json:"category"`
	Genre       utils.Optional[[]string] `json:"genre"`
}

func (r *UpdateTitleRequest) Normalize() {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	if r.Genre.Value != nil {
		slugs := normalizeSlugs(*r.Genre.Value)
		r.Genre.Value = &slugs
	}
}

func (r UpdateTitleRequest) Validate(now time.Time) error {
	var genres []string
	if r.Genre.Value != nil {
		genres = *r.Genre.Value
	}
	return validation.Errors{
		"name":  validation.Validate(r.Name, validation.NilOrNotEmpty, validation.RuneLength(1, 256)),
		"year":  validation.Validate(r.Year, validation.By(yearRule(now))),
		"genre": validation.Validate(genres, validation.Each(validation.Match(utils.SlugPattern))),
	}.Filter()
}

// yearRule rejects years after the current one. Past years down to 0 are allowed.
func yearRule(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		year, ok := value.(*int)
		if !ok || year == nil {
			return nil
		}
		if *year < 0 {
			return validation.NewError("validation_year_negative", "year must not be negative")
		}
		if *year > now.Year() {
			return validation.NewError("validation_year_future", "year must not be later than the current year")
		}
		return nil
	}
}

func normalizeSlugs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

type TitleResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Rating      *int      `json:"rating"`
	Description *string   `json:"description"`
	Genre       []TermRef `json:"genre"`
	Category    *TermRef  `json:"category"`
}

func ToResponse(t *Title) TitleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []TermRef{}
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    t.Category,
	}
}
