package models

import "time"

// ExpenseSplit is one non-payer member's share of an expense.
type ExpenseSplit struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ExpenseID       uint64  `gorm:"not null;index"` // Owning expense.
	SplitWithUserID uint64  `gorm:"not null;index"` // Member owing this share.
	SplitAmount     float64 `gorm:"not null"`       // ExpenseAmount / group size at creation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`

	User *User `gorm:"foreignKey:SplitWithUserID"` // Related user.
}
