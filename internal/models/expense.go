package models

import "time"

// Expense is one spending event recorded against a group, paid up front by
// one member. Splits are created for every other member at creation time and
// are cascade-deleted with the expense.
type Expense struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PaidByUserID uint64 `gorm:"not null;index"` // Paying member; must belong to the group.
	GroupID      uint64 `gorm:"not null;index"` // Owning group.

	Description   string  `gorm:"type:text;not null"`
	ExpenseAmount float64 `gorm:"not null"`
	IsSettled     bool    `gorm:"not null;default:false"` // Settlement state; no exposed way back to unsettled.

	ExpenseCreatedAt time.Time `gorm:"not null;autoCreateTime"`

	Splits []ExpenseSplit `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"` // Related splits.
}
