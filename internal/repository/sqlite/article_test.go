package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
)

func createDraft(authorID, title string) *model.Article {
	return &model.Article{AuthorID: authorID, Title: title, Content: "body"}
}

func TestArticleCreate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")

	article := createTestArticle(t, db, author.ID, "Hello World")

	if article.ID == "" {
		t.Error("Create() did not set article.ID")
	}
	if article.CreatedAt.IsZero() {
		t.Error("Create() did not set article.CreatedAt")
	}
	if article.PublishedAt != nil {
		t.Error("new article should start as a draft")
	}
}

func TestArticleCreate_DuplicateTitle(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	createTestArticle(t, db, author.ID, "Hello World")

	err := db.Articles.Create(context.Background(), createDraft(author.ID, "Hello World"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create(duplicate title) error = %v, want ErrConflict", err)
	}
}

func TestArticleGetBySlug(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	created := createTestArticle(t, db, author.ID, "Hello World")

	for _, s := range []string{"hello-world", "Hello-World"} {
		found, err := db.Articles.GetBySlug(context.Background(), s)
		if err != nil {
			t.Fatalf("GetBySlug(%q) error = %v", s, err)
		}
		if found.ID != created.ID {
			t.Errorf("GetBySlug(%q) ID = %q, want %q", s, found.ID, created.ID)
		}
	}
}

func TestArticleGetBySlug_PunctuatedTitle(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	created := createTestArticle(t, db, author.ID, "Hello, World!")

	found, err := db.Articles.GetBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	// a longer title sharing the prefix must not be returned
	if _, err := db.Articles.GetBySlug(context.Background(), "hello"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBySlug(hello) error = %v, want ErrNotFound", err)
	}
}

func TestArticleGetBySlug_DiacriticTitle(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	created := createTestArticle(t, db, author.ID, "Zażółć gęślą jaźń")

	if created.Slug != "zazolc-gesla-jazn" {
		t.Fatalf("Slug = %q, want %q", created.Slug, "zazolc-gesla-jazn")
	}

	found, err := db.Articles.GetBySlug(context.Background(), "zazolc-gesla-jazn")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestArticleCreate_SlugCollision(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	createTestArticle(t, db, author.ID, "Hello World")

	// a different title slugging to the same public address is a conflict
	err := db.Articles.Create(context.Background(), createDraft(author.ID, "Hello, World!"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create(colliding slug) error = %v, want ErrConflict", err)
	}
}

func TestArticleUpdate_RecomputesSlug(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, author.ID, "Old Title")
	ctx := context.Background()

	article.Title = "New Title"
	if err := db.Articles.Update(ctx, article); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := db.Articles.GetBySlug(ctx, "new-title")
	if err != nil {
		t.Fatalf("GetBySlug(new-title) error = %v", err)
	}
	if found.ID != article.ID {
		t.Errorf("ID = %q, want %q", found.ID, article.ID)
	}
	if _, err := db.Articles.GetBySlug(ctx, "old-title"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBySlug(old-title) error = %v, want ErrNotFound", err)
	}
}

func TestArticleGetBySlug_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Articles.GetBySlug(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBySlug() error = %v, want ErrNotFound", err)
	}
}

func TestArticleList_SplitsByState(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	ctx := context.Background()

	draft := createTestArticle(t, db, author.ID, "Draft One")
	published := createTestArticle(t, db, author.ID, "Published One")
	now := time.Now()
	published.PublishedAt = &now
	if err := db.Articles.Update(ctx, published); err != nil {
		t.Fatalf("Update: %v", err)
	}

	live, err := db.Articles.List(ctx, true, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List(published) error = %v", err)
	}
	if len(live) != 1 || live[0].ID != published.ID {
		t.Errorf("List(published) = %d items, want just %q", len(live), published.Title)
	}

	drafts, err := db.Articles.List(ctx, false, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List(drafts) error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Errorf("List(drafts) = %d items, want just %q", len(drafts), draft.Title)
	}
}

func TestArticleUpdate_TitleConflict(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	createTestArticle(t, db, author.ID, "Taken")
	article := createTestArticle(t, db, author.ID, "Original")

	article.Title = "Taken"
	err := db.Articles.Update(context.Background(), article)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update(title onto taken) error = %v, want ErrConflict", err)
	}
}

func TestArticleReplaceTags(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, author.ID, "Tagged")
	ctx := context.Background()

	golang, _ := db.Tags.GetOrCreate(ctx, "go")
	systems, _ := db.Tags.GetOrCreate(ctx, "systems")
	if err := db.Articles.ReplaceTags(ctx, article.ID, []string{golang.ID, systems.ID}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	found, err := db.Articles.GetByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(found.Tags) != 2 {
		t.Fatalf("article has %d tags, want 2", len(found.Tags))
	}

	// replacement is wholesale, not a merge
	web, _ := db.Tags.GetOrCreate(ctx, "web")
	if err := db.Articles.ReplaceTags(ctx, article.ID, []string{web.ID}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}
	found, _ = db.Articles.GetByID(ctx, article.ID)
	if len(found.Tags) != 1 || found.Tags[0].Name != "web" {
		t.Errorf("tags after replace = %v, want just web", found.Tags)
	}
}

func TestArticleLikes_SetSemantics(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	reader := createTestUser(t, db, "bob")
	article := createTestArticle(t, db, author.ID, "Likeable")
	ctx := context.Background()

	has, err := db.Articles.HasLike(ctx, article.ID, reader.ID)
	if err != nil || has {
		t.Fatalf("HasLike before like = (%v, %v), want (false, nil)", has, err)
	}

	if err := db.Articles.AddLike(ctx, article.ID, reader.ID); err != nil {
		t.Fatalf("AddLike: %v", err)
	}
	if err := db.Articles.AddLike(ctx, article.ID, reader.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second AddLike error = %v, want ErrConflict", err)
	}

	found, _ := db.Articles.GetByID(ctx, article.ID)
	if found.LikeCount != 1 {
		t.Errorf("LikeCount = %d, want 1", found.LikeCount)
	}

	if err := db.Articles.RemoveLike(ctx, article.ID, reader.ID); err != nil {
		t.Fatalf("RemoveLike: %v", err)
	}
	if err := db.Articles.RemoveLike(ctx, article.ID, reader.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveLike of absent like error = %v, want ErrNotFound", err)
	}
}

func TestArticleDelete_Cascades(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "alice")
	reader := createTestUser(t, db, "bob")
	article := createTestArticle(t, db, author.ID, "Doomed")
	ctx := context.Background()

	tag, _ := db.Tags.GetOrCreate(ctx, "go")
	_ = db.Articles.ReplaceTags(ctx, article.ID, []string{tag.ID})
	_ = db.Articles.AddLike(ctx, article.ID, reader.ID)

	if err := db.Articles.Delete(ctx, article.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Articles.GetByID(ctx, article.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}
}
