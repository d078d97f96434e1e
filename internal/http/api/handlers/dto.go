package handlers

import (
	"time"

	"github.com/expenseshare/server/internal/models"
)

// userDTO defines the user response payload. The password hash never leaves
// the server.
type userDTO struct {
	ID               uint64  `json:"userId"`
	Name             string  `json:"name"`
	EmailID          string  `json:"emailId"`
	AvailableBalance float64 `json:"availableBalance"`
	IsAdmin          bool    `json:"isAdmin"`
}

func toUserDTO(user *models.User) userDTO {
	return userDTO{
		ID:               user.ID,
		Name:             user.Name,
		EmailID:          user.EmailID,
		AvailableBalance: user.AvailableBalance,
		IsAdmin:          user.IsAdmin,
	}
}

// groupDTO defines the group response payload.
type groupDTO struct {
	ID           uint64           `json:"groupId"`
	GroupName    string           `json:"groupName"`
	Description  string           `json:"description"`
	CreatedDate  time.Time        `json:"createdDate"`
	GroupAdminID uint64           `json:"groupAdminId"`
	TotalMembers int              `json:"totalMembers"`
	TotalExpense float64          `json:"totalExpense"`
	Members      []groupMemberDTO `json:"groupMembers,omitempty"`
	Expenses     []expenseDTO     `json:"expenses,omitempty"`
}

func toGroupDTO(group *models.Group) groupDTO {
	dto := groupDTO{
		ID:           group.ID,
		GroupName:    group.GroupName,
		Description:  group.Description,
		CreatedDate:  group.CreatedDate,
		GroupAdminID: group.GroupAdminID,
		TotalMembers: group.TotalMembers,
		TotalExpense: group.TotalExpense,
	}
	for i := range group.Members {
		dto.Members = append(dto.Members, toGroupMemberDTO(&group.Members[i]))
	}
	for i := range group.Expenses {
		dto.Expenses = append(dto.Expenses, toExpenseDTO(&group.Expenses[i]))
	}
	return dto
}

// groupMemberDTO defines the membership response payload with running
// balances.
type groupMemberDTO struct {
	ID          uint64   `json:"groupMemberId"`
	GroupID     uint64   `json:"groupId"`
	UserID      uint64   `json:"userId"`
	GivenAmount float64  `json:"givenAmount"`
	TakenAmount float64  `json:"takenAmount"`
	UserExpense float64  `json:"userExpense"`
	User        *userDTO `json:"user,omitempty"`
}

func toGroupMemberDTO(member *models.GroupMember) groupMemberDTO {
	dto := groupMemberDTO{
		ID:          member.ID,
		GroupID:     member.GroupID,
		UserID:      member.UserID,
		GivenAmount: member.GivenAmount,
		TakenAmount: member.TakenAmount,
		UserExpense: member.UserExpense,
	}
	if member.User != nil {
		user := toUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// expenseDTO defines the expense response payload.
type expenseDTO struct {
	ID               uint64            `json:"expenseId"`
	PaidByUserID     uint64            `json:"paidByUserId"`
	GroupID          uint64            `json:"groupId"`
	Description      string            `json:"description"`
	ExpenseAmount    float64           `json:"expenseAmount"`
	IsSettled        bool              `json:"isSettled"`
	ExpenseCreatedAt time.Time         `json:"expenseCreatedAt"`
	Splits           []expenseSplitDTO `json:"expenseSplits,omitempty"`
}

func toExpenseDTO(expense *models.Expense) expenseDTO {
	dto := expenseDTO{
		ID:               expense.ID,
		PaidByUserID:     expense.PaidByUserID,
		GroupID:          expense.GroupID,
		Description:      expense.Description,
		ExpenseAmount:    expense.ExpenseAmount,
		IsSettled:        expense.IsSettled,
		ExpenseCreatedAt: expense.ExpenseCreatedAt,
	}
	for i := range expense.Splits {
		dto.Splits = append(dto.Splits, toExpenseSplitDTO(&expense.Splits[i]))
	}
	return dto
}

// expenseSplitDTO defines the split response payload.
type expenseSplitDTO struct {
	ID              uint64    `json:"expenseSplitId"`
	ExpenseID       uint64    `json:"expenseId"`
	SplitWithUserID uint64    `json:"splitWithUserId"`
	SplitAmount     float64   `json:"splitAmount"`
	CreatedAt       time.Time `json:"createdAt"`
	User            *userDTO  `json:"user,omitempty"`
}

func toExpenseSplitDTO(split *models.ExpenseSplit) expenseSplitDTO {
	dto := expenseSplitDTO{
		ID:              split.ID,
		ExpenseID:       split.ExpenseID,
		SplitWithUserID: split.SplitWithUserID,
		SplitAmount:     split.SplitAmount,
		CreatedAt:       split.CreatedAt,
	}
	if split.User != nil {
		user := toUserDTO(split.User)
		dto.User = &user
	}
	return dto
}
