package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkarpinski/blog-api/internal/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo is the persisted denylist of revoked token ids. Each row keeps
// the token's own expiry, and expired rows are pruned opportunistically on
// every Revoke, so the table never grows past the set of still-live tokens.
type TokenRepo struct {
	conn *sql.DB
}

// Revoke records a token id as logged out until the token would have
// expired on its own. Revoking the same jti twice is a no-op.
func (db *TokenRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: revoking token: %w", err)
	}

	// prune entries whose tokens can no longer verify anyway
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now()); err != nil {
		return fmt.Errorf("sqlite: pruning revoked tokens: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is on the denylist. Entries past
// their expiry no longer count; the token itself is already invalid.
func (db *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ? AND expires_at >= ?`,
		jti, time.Now(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking revoked token: %w", err)
	}
	return count > 0, nil
}
