package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"yamdb-backend/internal/shared/utils"
)

type CreateTermRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Normalize trims input and derives a slug from the name when none was given.
func (r *CreateTermRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Slug == "" {
		r.Slug = utils.GenerateSlug(r.Name)
	}
}

func (r CreateTermRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 256)),
		validation.Field(&r.Slug,
			validation.Required.Error("slug is required and could not be derived from the name"),
			validation.RuneLength(1, 50),
			validation.Match(utils.SlugPattern).Error("slug may contain only latin letters, digits, '-' and '_'"),
		),
	)
}

type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type TermResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ListResponse struct {
	Items []TermResponse `json:"items"`
	Total int64          `json:"total"`
}

func ToResponse(t *Term) TermResponse {
	return TermResponse{Name: t.Name, Slug: t.Slug}
}
