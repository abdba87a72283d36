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

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implements repository.ArticleRepository.
type ArticleRepo struct {
	conn *sql.DB
}

const articleColumns = `id, author_id, title, slug, description, content, image_url, created_at, published_at`

// Create inserts a new article in the draft state. The slug is derived from
// the title here so lookups never have to reconstruct it. A duplicate title
// or slug is reported as a Conflict; the UNIQUE constraints are the authority.
func (db *ArticleRepo) Create(ctx context.Context, article *model.Article) error {
	article.ID = xid.New().String()
	article.Slug = slug.Make(article.Title)
	article.CreatedAt = time.Now()
	article.PublishedAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO articles (id, author_id, title, slug, description, content, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.AuthorID,
		article.Title,
		article.Slug,
		article.Description,
		article.Content,
		article.ImageURL,
		article.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("article", article.Title)
		}
		return fmt.Errorf("sqlite: creating article: %w", err)
	}
	return nil
}

// GetByID retrieves a single article with its tags and like count.
func (db *ArticleRepo) GetByID(ctx context.Context, id string) (*model.Article, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("article", id)
		}
		return nil, fmt.Errorf("sqlite: getting article %s: %w", id, err)
	}
	if err := db.hydrateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// GetBySlug resolves a public slug to its article. The incoming path
// segment is normalized the same way titles are, so "Hello-World" and
// "hello-world" hit the same stored slug.
func (db *ArticleRepo) GetBySlug(ctx context.Context, slugStr string) (*model.Article, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = ?`,
		slug.Make(slugStr))
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("article", slugStr)
		}
		return nil, fmt.Errorf("sqlite: resolving article slug %q: %w", slugStr, err)
	}
	if err := db.hydrateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// List returns published or draft articles, newest first.
func (db *ArticleRepo) List(ctx context.Context, published bool, opts repository.ListOptions) ([]model.Article, error) {
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
		`SELECT `+articleColumns+` FROM articles
		 WHERE `+cond+`
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating articles: %w", err)
	}

	for i := range articles {
		if err := db.hydrateArticle(ctx, &articles[i]); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

// Update persists the mutable fields, including title changes and
// publication transitions. The slug is recomputed from the title so a
// retitle moves the public address with it; retitling onto a taken title
// is a Conflict.
func (db *ArticleRepo) Update(ctx context.Context, article *model.Article) error {
	article.Slug = slug.Make(article.Title)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE articles
		 SET title = ?, slug = ?, description = ?, content = ?, image_url = ?, published_at = ?
		 WHERE id = ?`,
		article.Title,
		article.Slug,
		article.Description,
		article.Content,
		article.ImageURL,
		article.PublishedAt,
		article.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("article", article.Title)
		}
		return fmt.Errorf("sqlite: updating article %s: %w", article.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("article", article.ID)
	}
	return nil
}

// Delete removes an article; tag links and likes cascade.
func (db *ArticleRepo) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting article %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("article", id)
	}
	return nil
}

// ReplaceTags swaps the article's whole tag set inside one transaction, so
// readers never observe a half-replaced set.
func (db *ArticleRepo) ReplaceTags(ctx context.Context, articleID string, tagIDs []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tag replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("sqlite: clearing article tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)`,
			articleID, tagID); err != nil {
			return fmt.Errorf("sqlite: attaching tag %s: %w", tagID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing tag replace: %w", err)
	}
	return nil
}

// HasLike reports like-set membership for (article, user).
func (db *ArticleRepo) HasLike(ctx context.Context, articleID, userID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_likes WHERE article_id = ? AND user_id = ?`,
		articleID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like: %w", err)
	}
	return count > 0, nil
}

// AddLike inserts into the like set. The composite primary key makes a
// duplicate a Conflict, which callers treat as "already liked".
func (db *ArticleRepo) AddLike(ctx context.Context, articleID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO article_likes (article_id, user_id) VALUES (?, ?)`,
		articleID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("like", articleID)
		}
		return fmt.Errorf("sqlite: adding like: %w", err)
	}
	return nil
}

// RemoveLike deletes from the like set; removing an absent like is NotFound.
func (db *ArticleRepo) RemoveLike(ctx context.Context, articleID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM article_likes WHERE article_id = ? AND user_id = ?`,
		articleID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing like: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("like", articleID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		article     model.Article
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&article.ID,
		&article.AuthorID,
		&article.Title,
		&article.Slug,
		&article.Description,
		&article.Content,
		&article.ImageURL,
		&article.CreatedAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}

// hydrateArticle fills the tag set and like count.
func (db *ArticleRepo) hydrateArticle(ctx context.Context, article *model.Article) error {
	tags, err := tagsFor(ctx, db.conn, "article_tags", "article_id", article.ID)
	if err != nil {
		return err
	}
	article.Tags = tags

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_likes WHERE article_id = ?`, article.ID,
	).Scan(&article.LikeCount)
	if err != nil {
		return fmt.Errorf("sqlite: counting likes for article %s: %w", article.ID, err)
	}
	return nil
}
