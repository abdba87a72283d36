package model

import "time"

// Snippet is a shared code snippet awaiting or holding approval.
// Like Article, a nil PublishedAt means the snippet is not yet approved.
// Author is a display name, not a user reference; snippets can be
// submitted without an account and are approved by moderation.
type Snippet struct {
	ID          string     `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Slug        string     `json:"slug"        db:"slug"`
	Description string     `json:"description" db:"description"`
	Code        string     `json:"code"        db:"code"`
	Language    string     `json:"language"    db:"language"`
	Author      string     `json:"author"      db:"author"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`
	Tags        []Tag      `json:"tags"`
}

// Approved reports whether the snippet has been approved for publication.
func (s *Snippet) Approved() bool {
	return s.PublishedAt != nil
}
