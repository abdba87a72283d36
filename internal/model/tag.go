package model

// Tag labels articles and snippets. Names are unique (case-sensitive) and
// tags are shared between entities; created on first use, never deleted by
// content flows.
type Tag struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}
