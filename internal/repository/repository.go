// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage implements them; services never see SQL.
package repository

import (
	"context"
	"time"

	"github.com/mkarpinski/blog-api/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ArticleRepository persists articles, their tag sets, and the like ledger.
//
// Create and Update derive the slug from the title and persist it next to
// the title; GetBySlug resolves against that stored slug, normalizing the
// incoming segment the same way. A duplicate title or slug is reported as
// apperror.ErrConflict.
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	GetByID(ctx context.Context, id string) (*model.Article, error)
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	List(ctx context.Context, published bool, opts ListOptions) ([]model.Article, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id string) error

	// ReplaceTags swaps the article's tag set wholesale in one transaction.
	ReplaceTags(ctx context.Context, articleID string, tagIDs []string) error

	// Like ledger: set semantics keyed by (article, user).
	HasLike(ctx context.Context, articleID, userID string) (bool, error)
	AddLike(ctx context.Context, articleID, userID string) error
	RemoveLike(ctx context.Context, articleID, userID string) error
}

// SnippetRepository persists snippets and their tag sets. Same slug and
// conflict contracts as ArticleRepository.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetBySlug(ctx context.Context, slug string) (*model.Snippet, error)
	List(ctx context.Context, published bool, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
	ReplaceTags(ctx context.Context, snippetID string, tagIDs []string) error
}

// TagRepository resolves tag names to persisted tags.
//
// GetOrCreate is idempotent: an exact case-sensitive lookup, creating the
// tag on a miss. Two concurrent calls with the same unseen name may both
// attempt the INSERT; the unique constraint on name is the backstop and the
// loser retries the lookup instead of failing.
type TagRepository interface {
	GetOrCreate(ctx context.Context, name string) (*model.Tag, error)
	GetByName(ctx context.Context, name string) (*model.Tag, error)
}

// UserRepository persists accounts. Create reports a taken username or
// email as apperror.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// TokenRepository is the persisted denylist of revoked token ids. Entries
// carry the token's own expiry so the store stays bounded: once a token
// would no longer verify anyway, its denylist row is prunable.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
