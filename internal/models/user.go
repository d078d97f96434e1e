package models

import "time"

// User is a registered account holder.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null"`             // Display name.
	EmailID  string `gorm:"type:text;not null;uniqueIndex"` // Login email.
	Password string `gorm:"type:text;not null"`             // bcrypt hash.

	// AvailableBalance is a cash-like account balance, separate from the
	// per-group bookkeeping on GroupMember rows.
	AvailableBalance float64 `gorm:"not null;default:0"`
	IsAdmin          bool    `gorm:"not null;default:false"` // Application administrator.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
