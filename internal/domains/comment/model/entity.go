package model

import "time"

type Comment struct {
	ID       int64
	ReviewID int64
	AuthorID int64
	Author   string
	Text     string
	PubDate  time.Time
}

func (c *Comment) AuthoredBy() int64 { return c.AuthorID }

// Parent locates the review a comment hangs off. The review must belong to the title.
type Parent struct {
	TitleID  int64
	ReviewID int64
}
