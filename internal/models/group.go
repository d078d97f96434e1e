package models

import "time"

// Group is a named collection of members sharing expenses.
//
// TotalMembers and TotalExpense are denormalized counters; they are
// recomputed from live rows on the group-detail read path and may be stale
// in between.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupName   string    `gorm:"type:text;not null"` // Display name.
	Description string    `gorm:"type:text;not null"` // Free-form description.
	CreatedDate time.Time `gorm:"not null;autoCreateTime"`

	GroupAdminID uint64 `gorm:"not null;index"` // Owning user; auto-enrolled as a member.

	TotalMembers int     `gorm:"not null;default:0"` // Denormalized member count.
	TotalExpense float64 `gorm:"not null;default:0"` // Denormalized expense sum.

	Members  []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"` // Related memberships.
	Expenses []Expense     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"` // Related expenses.
}
