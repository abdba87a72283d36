package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo implements repository.TagRepository.
type TagRepo struct {
	conn *sql.DB
}

// GetByName does an exact, case-sensitive lookup.
func (db *TagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name,
	).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", name)
		}
		return nil, fmt.Errorf("sqlite: getting tag %q: %w", name, err)
	}
	return &tag, nil
}

// GetOrCreate resolves a tag name to a persisted tag, creating it on first
// use. If a concurrent caller wins the INSERT race, the UNIQUE constraint
// fires and the lookup is retried; the violation is expected, not fatal.
func (db *TagRepo) GetOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	tag, err := db.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	created := &model.Tag{ID: xid.New().String(), Name: name}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`, created.ID, created.Name)
	if err != nil {
		if isUniqueViolation(err) {
			// lost the creation race; the tag exists now
			return db.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("sqlite: creating tag %q: %w", name, err)
	}
	return created, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

// tagsFor loads the tag set linked to an entity through a join table.
// table/column are compile-time constants at every call site, never input.
func tagsFor(ctx context.Context, conn *sql.DB, table, column, id string) ([]model.Tag, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN `+table+` j ON j.tag_id = t.id
		 WHERE j.`+column+` = ?
		 ORDER BY t.name`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}
