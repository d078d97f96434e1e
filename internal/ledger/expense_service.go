package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseshare/server/internal/db"
	"github.com/expenseshare/server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExpenseService owns the expense lifecycle and the balance accounting it
// drives. State machine per expense: created (unsettled) -> settled; either
// state -> deleted. There is no way back from settled to unsettled.
type ExpenseService struct {
	db *gorm.DB
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(conn *gorm.DB) *ExpenseService {
	return &ExpenseService{db: conn}
}

// Create persists an expense, credits the payer's GivenAmount by the full
// amount and writes one split row of amount/N for every other member, all in
// one transaction. The payer must be a current member of the group.
func (s *ExpenseService) Create(ctx context.Context, expense *models.Expense) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var members []models.GroupMember
		if errFind := db.LockForUpdate(tx).
			Where("group_id = ?", expense.GroupID).
			Find(&members).Error; errFind != nil {
			return errFind
		}

		var payer *models.GroupMember
		for i := range members {
			if members[i].UserID == expense.PaidByUserID {
				payer = &members[i]
				break
			}
		}
		if payer == nil {
			return ErrNotGroupMember
		}

		expense.IsSettled = false
		if errCreate := tx.Create(expense).Error; errCreate != nil {
			return errCreate
		}

		// The payer fronted the full amount at creation time, independent of
		// settlement.
		payer.GivenAmount += expense.ExpenseAmount
		payer.Recompute()
		if errUpdate := tx.Model(payer).Updates(map[string]any{
			"given_amount": payer.GivenAmount,
			"user_expense": payer.UserExpense,
		}).Error; errUpdate != nil {
			return errUpdate
		}

		// Even split across all N members; the payer's own 1/N share is
		// implicit in having paid, so no split row is written for them.
		splitAmount := expense.ExpenseAmount / float64(len(members))
		splits := make([]models.ExpenseSplit, 0, len(members)-1)
		for _, member := range members {
			if member.UserID == expense.PaidByUserID {
				continue
			}
			splits = append(splits, models.ExpenseSplit{
				ExpenseID:       expense.ID,
				SplitWithUserID: member.UserID,
				SplitAmount:     splitAmount,
			})
		}
		if len(splits) > 0 {
			if errCreate := tx.Create(&splits).Error; errCreate != nil {
				return errCreate
			}
		}
		expense.Splits = splits

		return refreshGroupTotalExpense(tx, expense.GroupID)
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotGroupMember) {
			return errTx
		}
		log.WithError(errTx).WithField("group_id", expense.GroupID).Error("create expense failed")
		return fmt.Errorf("ledger: create expense: %w", errTx)
	}
	return nil
}

// UpdateSettledStatus flips the settlement flag. Settling applies the
// settlement accounting for every split; settling an already-settled expense
// fails with ErrAlreadySettled rather than double-counting.
func (s *ExpenseService) UpdateSettledStatus(ctx context.Context, expenseID uint64, isSettled bool) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if errFind := tx.Preload("Splits").First(&expense, expenseID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		if isSettled && expense.IsSettled {
			return ErrAlreadySettled
		}

		if errUpdate := tx.Model(&expense).Update("is_settled", isSettled).Error; errUpdate != nil {
			return errUpdate
		}
		if isSettled {
			return applySettlement(tx, &expense)
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrAlreadySettled) {
			return errTx
		}
		log.WithError(errTx).WithField("expense_id", expenseID).Error("update settled status failed")
		return fmt.Errorf("ledger: update settled status: %w", errTx)
	}
	return nil
}

// UpdateDetails overwrites the mutable fields of an expense. When the update
// transitions the expense to settled, the settlement accounting runs against
// the current splits collection; an already-settled expense is left alone.
func (s *ExpenseService) UpdateDetails(ctx context.Context, expenseID uint64, updated *models.Expense) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if errFind := tx.Preload("Splits").First(&expense, expenseID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		wasSettled := expense.IsSettled

		expense.GroupID = updated.GroupID
		expense.Description = updated.Description
		expense.ExpenseAmount = updated.ExpenseAmount
		expense.PaidByUserID = updated.PaidByUserID
		if !updated.ExpenseCreatedAt.IsZero() {
			expense.ExpenseCreatedAt = updated.ExpenseCreatedAt
		}
		expense.IsSettled = updated.IsSettled
		if errUpdate := tx.Model(&expense).Updates(map[string]any{
			"group_id":           expense.GroupID,
			"description":        expense.Description,
			"expense_amount":     expense.ExpenseAmount,
			"paid_by_user_id":    expense.PaidByUserID,
			"expense_created_at": expense.ExpenseCreatedAt,
			"is_settled":         expense.IsSettled,
		}).Error; errUpdate != nil {
			return errUpdate
		}

		if expense.IsSettled && !wasSettled {
			return applySettlement(tx, &expense)
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) {
			return errTx
		}
		log.WithError(errTx).WithField("expense_id", expenseID).Error("update expense failed")
		return fmt.Errorf("ledger: update expense: %w", errTx)
	}
	return nil
}

// Settle marks an unsettled expense settled, applies the settlement
// accounting and debits each member's AvailableBalance by their net position,
// cashing the group balances out of the members' accounts.
func (s *ExpenseService) Settle(ctx context.Context, expenseID uint64) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if errFind := tx.Preload("Splits").First(&expense, expenseID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		if expense.IsSettled {
			return ErrAlreadySettled
		}

		if errUpdate := tx.Model(&expense).Update("is_settled", true).Error; errUpdate != nil {
			return errUpdate
		}
		if errApply := applySettlement(tx, &expense); errApply != nil {
			return errApply
		}

		// Cash out each member's net position from their account balance.
		var members []models.GroupMember
		if errFind := tx.Where("group_id = ?", expense.GroupID).Find(&members).Error; errFind != nil {
			return errFind
		}
		for _, member := range members {
			if errUpdate := tx.Model(&models.User{}).
				Where("id = ?", member.UserID).
				Update("available_balance", gorm.Expr("available_balance - ?", member.UserExpense)).
				Error; errUpdate != nil {
				return errUpdate
			}
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrAlreadySettled) {
			return errTx
		}
		log.WithError(errTx).WithField("expense_id", expenseID).Error("settle expense failed")
		return fmt.Errorf("ledger: settle expense: %w", errTx)
	}
	return nil
}

// Delete removes an expense and its splits. Deleting an absent expense is a
// no-op. Before deleting, each member's net position is credited back to
// their AvailableBalance and the member's counters are zeroed. The reversal
// is coarse: it zeroes whole counters instead of subtracting only this
// expense's contribution, so it is exact only when this is the member's sole
// expense in the group (see DESIGN.md).
func (s *ExpenseService) Delete(ctx context.Context, expenseID uint64) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if errFind := tx.First(&expense, expenseID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return nil
			}
			return errFind
		}

		var members []models.GroupMember
		if errFind := db.LockForUpdate(tx).
			Where("group_id = ?", expense.GroupID).
			Find(&members).Error; errFind != nil {
			return errFind
		}
		for i := range members {
			member := &members[i]
			if errUpdate := tx.Model(&models.User{}).
				Where("id = ?", member.UserID).
				Update("available_balance", gorm.Expr("available_balance + ?", member.UserExpense)).
				Error; errUpdate != nil {
				return errUpdate
			}
			if errUpdate := tx.Model(member).Updates(map[string]any{
				"given_amount": 0,
				"taken_amount": 0,
				"user_expense": 0,
			}).Error; errUpdate != nil {
				return errUpdate
			}
		}

		// Splits are removed explicitly so behavior does not depend on the
		// dialect honoring the FK cascade.
		if errDelete := tx.Where("expense_id = ?", expense.ID).
			Delete(&models.ExpenseSplit{}).Error; errDelete != nil {
			return errDelete
		}
		return tx.Delete(&expense).Error
	})
	if errTx != nil {
		log.WithError(errTx).WithField("expense_id", expenseID).Error("delete expense failed")
		return fmt.Errorf("ledger: delete expense: %w", errTx)
	}
	return nil
}

// GetByExpenseID returns an expense with its splits, or nil when absent.
func (s *ExpenseService) GetByExpenseID(ctx context.Context, expenseID uint64) (*models.Expense, error) {
	var expense models.Expense
	if errFind := s.db.WithContext(ctx).Preload("Splits").First(&expense, expenseID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: get expense: %w", errFind)
	}
	return &expense, nil
}

// GetByGroupID returns all expenses of a group with their splits; empty when
// none match.
func (s *ExpenseService) GetByGroupID(ctx context.Context, groupID uint64) ([]models.Expense, error) {
	var expenses []models.Expense
	if errFind := s.db.WithContext(ctx).Preload("Splits").
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&expenses).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list expenses: %w", errFind)
	}
	return expenses, nil
}

// applySettlement crystallizes an expense's splits into the members' running
// balances: the payer's TakenAmount grows by the sum of all splits and each
// recipient's GivenAmount grows by their own split. UserExpense is recomputed
// for every touched row.
func applySettlement(tx *gorm.DB, expense *models.Expense) error {
	var payer models.GroupMember
	if errFind := db.LockForUpdate(tx).
		Where("user_id = ? AND group_id = ?", expense.PaidByUserID, expense.GroupID).
		First(&payer).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return errFind
	}

	var total float64
	for _, split := range expense.Splits {
		total += split.SplitAmount
	}
	payer.TakenAmount += total
	payer.Recompute()
	if errUpdate := tx.Model(&payer).Updates(map[string]any{
		"taken_amount": payer.TakenAmount,
		"user_expense": payer.UserExpense,
	}).Error; errUpdate != nil {
		return errUpdate
	}

	for _, split := range expense.Splits {
		var recipient models.GroupMember
		if errFind := db.LockForUpdate(tx).
			Where("user_id = ? AND group_id = ?", split.SplitWithUserID, expense.GroupID).
			First(&recipient).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				// Recipient left the group since creation; their share stays
				// unaccounted.
				continue
			}
			return errFind
		}
		recipient.GivenAmount += split.SplitAmount
		recipient.Recompute()
		if errUpdate := tx.Model(&recipient).Updates(map[string]any{
			"given_amount": recipient.GivenAmount,
			"user_expense": recipient.UserExpense,
		}).Error; errUpdate != nil {
			return errUpdate
		}
	}
	return nil
}

// refreshGroupTotalExpense recomputes the denormalized expense sum.
func refreshGroupTotalExpense(tx *gorm.DB, groupID uint64) error {
	var total float64
	if errSum := tx.Model(&models.Expense{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(SUM(expense_amount), 0)").
		Scan(&total).Error; errSum != nil {
		return errSum
	}
	return tx.Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("total_expense", total).Error
}
