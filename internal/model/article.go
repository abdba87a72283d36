// Package model defines the data structures used throughout the application.
package model

import "time"

// Article is a blog article. PublishedAt doubles as the publication state:
// nil means draft, non-nil means published. Title is unique across articles;
// Slug is derived from it at write time and is the public lookup key.
type Article struct {
	ID          string     `json:"id"          db:"id"`
	AuthorID    string     `json:"authorId"    db:"author_id"`
	Title       string     `json:"title"       db:"title"`
	Slug        string     `json:"slug"        db:"slug"`
	Description string     `json:"description" db:"description"`
	Content     string     `json:"content"     db:"content"`
	ImageURL    string     `json:"imageUrl"    db:"image_url"` // empty until an illustration is uploaded
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`
	Tags        []Tag      `json:"tags"`
	LikeCount   int        `json:"likeCount"`
}

// Published reports whether the article is in the published state.
func (a *Article) Published() bool {
	return a.PublishedAt != nil
}
