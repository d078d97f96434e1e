package models

// GroupMember joins a user to a group and carries that user's running
// balances within the group. At most one row exists per (UserID, GroupID)
// pair.
type GroupMember struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID uint64 `gorm:"not null;uniqueIndex:idx_group_members_group_user"` // Owning group.
	UserID  uint64 `gorm:"not null;index;uniqueIndex:idx_group_members_group_user"`

	// GivenAmount is the cumulative amount this member has fronted into the
	// group; TakenAmount is the cumulative amount reimbursed to or benefited
	// by this member. UserExpense is always GivenAmount - TakenAmount and is
	// recomputed whenever either changes, never set independently.
	GivenAmount float64 `gorm:"not null;default:0"`
	TakenAmount float64 `gorm:"not null;default:0"`
	UserExpense float64 `gorm:"not null;default:0"`

	User  *User  `gorm:"foreignKey:UserID"`  // Related user.
	Group *Group `gorm:"foreignKey:GroupID"` // Related group.
}

// Recompute refreshes the derived net position.
func (m *GroupMember) Recompute() {
	m.UserExpense = m.GivenAmount - m.TakenAmount
}
