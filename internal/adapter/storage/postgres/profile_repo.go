package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetPinHash fetches the user's transaction PIN hash. An empty string
// means no PIN has been set.
func (r *ProfileRepo) GetPinHash(ctx context.Context, userID uuid.UUID) (string, error) {
	query := `SELECT COALESCE(pin_hash, '') FROM profiles WHERE user_id = $1`

	var hash string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}

// SetPinHash stores the user's transaction PIN hash.
func (r *ProfileRepo) SetPinHash(ctx context.Context, userID uuid.UUID, hash string) error {
	query := `INSERT INTO profiles (user_id, pin_hash, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET pin_hash = EXCLUDED.pin_hash, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("set pin hash: %w", err)
	}
	return nil
}
