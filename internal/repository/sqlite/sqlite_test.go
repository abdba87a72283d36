package sqlite

import (
	"context"
	"testing"

	"github.com/mkarpinski/blog-api/internal/model"
)

// newTestDB opens a fresh in-memory database per test; ":memory:" is fast,
// isolated, and destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$notarealhashbutlongenough",
		Active:       true,
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestArticle(t *testing.T, db *DB, authorID, title string) *model.Article {
	t.Helper()
	article := &model.Article{
		AuthorID:    authorID,
		Title:       title,
		Description: "a test article",
		Content:     "body",
	}
	if err := db.Articles.Create(context.Background(), article); err != nil {
		t.Fatalf("failed to create test article: %v", err)
	}
	return article
}

func createTestSnippet(t *testing.T, db *DB, title string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:       title,
		Description: "a test snippet",
		Code:        "fmt.Println(42)",
		Language:    "go",
		Author:      "tester",
	}
	if err := db.Snippets.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}
