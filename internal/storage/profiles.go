package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/irontrack/internal/models"
)

// GetProfile returns the user's profile, or defaults (unit kg) when the
// user has never saved one. Absence is not an error.
func (db *DB) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	p := models.Profile{Unit: "kg"}

	var avatarURL *string
	err := db.Pool.QueryRow(ctx,
		`SELECT name, unit, avatar_url FROM profiles WHERE user_id = $1`,
		userID).Scan(&p.Name, &p.Unit, &avatarURL)
	if err != nil {
		if isNoRows(err) {
			return p, nil
		}
		return p, fmt.Errorf("querying profile: %w", err)
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}
	return p, nil
}

// UpdateProfile upserts the user's profile.
func (db *DB) UpdateProfile(ctx context.Context, userID int, p models.Profile) error {
	if p.Unit != "kg" && p.Unit != "lb" {
		return fmt.Errorf("invalid unit %q", p.Unit)
	}

	var avatarURL *string
	if p.AvatarURL != "" {
		avatarURL = &p.AvatarURL
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, name, unit, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET name = $2, unit = $3, avatar_url = $4, updated_at = NOW()
	`, userID, p.Name, p.Unit, avatarURL)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
