package models

import (
	"time"
)

// RevokedToken records a session token invalidated by logout. Rows only
// matter until ExpiresAt, after which the token is rejected anyway.
type RevokedToken struct {
	BaseModel
	TokenID   string    `gorm:"size:36;uniqueIndex;not null" json:"tokenId"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
}
