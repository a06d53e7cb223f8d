package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CreateCommentRequest struct {
	Text string `json:"text"`
}

func (r *CreateCommentRequest) Normalize() { r.Text = strings.TrimSpace(r.Text) }

func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

type UpdateCommentRequest struct {
	Text *string `json:"text"`
}

func (r *UpdateCommentRequest) Normalize() {
	if r.Text != nil {
		trimmed := strings.TrimSpace(*r.Text)
		r.Text = &trimmed
	}
}

func (r UpdateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.NilOrNotEmpty),
	)
}

type ListQuery struct {
	Parent Parent
	Page   int
	Limit  int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func ToResponse(c *Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Text: c.Text, Author: c.Author, PubDate: c.PubDate}
}
