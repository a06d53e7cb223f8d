package model

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MinScore = 1
	MaxScore = 10
)

// scoreInRange rejects scores outside [MinScore, MaxScore]. The threshold rules
// skip zero values, so 0 would otherwise pass.
var scoreInRange = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	score, ok := v.(int)
	if isNil || !ok {
		return nil
	}
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("must be between %d and %d", MinScore, MaxScore)
	}
	return nil
})

type CreateReviewRequest struct {
	Text  string `json:"text"`
	Score *int   `json:"score"`
}

func (r *CreateReviewRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Score, validation.NotNil, scoreInRange),
	)
}

// UpdateReviewRequest changes text and score only; title, author and pub_date are fixed.
type UpdateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

func (r *UpdateReviewRequest) Normalize() {
	if r.Text != nil {
		trimmed := strings.TrimSpace(*r.Text)
		r.Text = &trimmed
	}
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.NilOrNotEmpty),
		validation.Field(&r.Score, scoreInRange),
	)
}

type ListQuery struct {
	TitleID int64
	Page    int
	Limit   int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ToResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
