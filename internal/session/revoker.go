// Package session tracks session tokens revoked by logout until they expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hms-server/internal/models"
)

// Revoker records revoked token IDs.
type Revoker interface {
	Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// New picks the Redis revoker when a client is available, else the database one.
func New(db *gorm.DB, rdb *redis.Client) Revoker {
	if rdb != nil {
		return NewRedisRevoker(rdb)
	}
	return NewDBRevoker(db)
}

const keyPrefix = "revoked_token:"

// RedisRevoker stores revoked IDs as keys that expire with the token.
type RedisRevoker struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisRevoker creates a RedisRevoker.
func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb, now: time.Now}
}

// Revoke stores tokenID until expiresAt. Already expired tokens are skipped.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now()).Truncate(time.Second)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, keyPrefix+tokenID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has a live revocation key.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// DBRevoker keeps revoked IDs in the revoked_tokens table.
type DBRevoker struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBRevoker creates a DBRevoker.
func NewDBRevoker(db *gorm.DB) *DBRevoker {
	return &DBRevoker{db: db, now: time.Now}
}

// Revoke inserts a row for tokenID. Revoking twice is not an error.
func (r *DBRevoker) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	row := models.RevokedToken{TokenID: tokenID, UserID: userID, ExpiresAt: expiresAt.UTC()}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has an unexpired row.
func (r *DBRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_id = ? AND expires_at > ?", tokenID, r.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return count > 0, nil
}

// Purge deletes rows for tokens that have expired anyway.
func (r *DBRevoker) Purge(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", r.now().UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
