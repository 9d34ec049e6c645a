package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser resolves a tailnet login to a user ID, creating the
// row on first sight. Repeat calls bump last_seen and pick up display
// name changes from the tailnet; a blank display name keeps the stored
// one. The "local" login is pre-seeded by the initial migration as the
// dev identity used when Tailscale is disabled.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	const q = `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`
	var id int
	if err := db.Pool.QueryRow(ctx, q, login, displayName).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving user %q: %w", login, err)
	}
	return id, nil
}
