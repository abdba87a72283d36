package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
	"github.com/mkarpinski/blog-api/internal/slug"
)

var _ repository.SnippetRepository = (*SnippetRepo)(nil)

// SnippetRepo implements repository.SnippetRepository.
type SnippetRepo struct {
	conn *sql.DB
}

const snippetColumns = `id, title, slug, description, code, language, author, created_at, published_at`

// Create inserts a new snippet awaiting approval. The slug is derived from
// the title here; duplicate titles or slugs are Conflicts.
func (db *SnippetRepo) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	snippet.Slug = slug.Make(snippet.Title)
	snippet.CreatedAt = time.Now()
	snippet.PublishedAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, slug, description, code, language, author, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Slug,
		snippet.Description,
		snippet.Code,
		snippet.Language,
		snippet.Author,
		snippet.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("snippet", snippet.Title)
		}
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}
	return nil
}

// GetBySlug resolves a public slug to its snippet against the stored slug
// column, normalizing the incoming path segment the same way titles are.
func (db *SnippetRepo) GetBySlug(ctx context.Context, slugStr string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE slug = ?`,
		slug.Make(slugStr))
	snippet, err := scanSnippet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", slugStr)
		}
		return nil, fmt.Errorf("sqlite: resolving snippet slug %q: %w", slugStr, err)
	}

	tags, err := tagsFor(ctx, db.conn, "snippet_tags", "snippet_id", snippet.ID)
	if err != nil {
		return nil, err
	}
	snippet.Tags = tags
	return snippet, nil
}

// List returns approved or not-yet-approved snippets, newest first.
func (db *SnippetRepo) List(ctx context.Context, published bool, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	cond := `published_at IS NOT NULL`
	if !published {
		cond = `published_at IS NULL`
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 WHERE `+cond+`
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	for i := range snippets {
		tags, err := tagsFor(ctx, db.conn, "snippet_tags", "snippet_id", snippets[i].ID)
		if err != nil {
			return nil, err
		}
		snippets[i].Tags = tags
	}
	return snippets, nil
}

// Update persists the mutable fields including approval transitions. The
// slug is recomputed from the title so a retitle moves the public address.
func (db *SnippetRepo) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.Slug = slug.Make(snippet.Title)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, slug = ?, description = ?, code = ?, language = ?, published_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Slug,
		snippet.Description,
		snippet.Code,
		snippet.Language,
		snippet.PublishedAt,
		snippet.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("snippet", snippet.Title)
		}
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}
	return nil
}

// Delete removes a snippet; tag links cascade.
func (db *SnippetRepo) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}

// ReplaceTags swaps the snippet's whole tag set inside one transaction.
func (db *SnippetRepo) ReplaceTags(ctx context.Context, snippetID string, tagIDs []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tag replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippetID); err != nil {
		return fmt.Errorf("sqlite: clearing snippet tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tagID); err != nil {
			return fmt.Errorf("sqlite: attaching tag %s: %w", tagID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing tag replace: %w", err)
	}
	return nil
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var (
		snippet     model.Snippet
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&snippet.ID,
		&snippet.Title,
		&snippet.Slug,
		&snippet.Description,
		&snippet.Code,
		&snippet.Language,
		&snippet.Author,
		&snippet.CreatedAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		snippet.PublishedAt = &t
	}
	return &snippet, nil
}
