package domain

import "time"

// Update is a post published by a collective to its backers. Unpublished and
// private updates are only visible to collective admins.
type Update struct {
	ID           int64      `json:"id"`
	CollectiveID int64      `json:"CollectiveId"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	HTML         string     `json:"html,omitempty"`
	IsPrivate    bool       `json:"isPrivate"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
