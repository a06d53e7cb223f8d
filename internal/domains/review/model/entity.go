package model

import "time"

// Review is one user's scored opinion of a title. A user reviews a title at most once.
type Review struct {
	ID       int64
	TitleID  int64
	AuthorID int64
	Author   string
	Text     string
	Score    int
	PubDate  time.Time
}

func (r *Review) AuthoredBy() int64 { return r.AuthorID }
