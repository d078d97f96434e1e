package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseshare/server/internal/models"
	"gorm.io/gorm"
)

// SplitService exposes direct reads and maintenance operations on split rows.
// Splits are normally created by ExpenseService.Create only.
type SplitService struct {
	db *gorm.DB
}

// NewSplitService constructs a SplitService.
func NewSplitService(conn *gorm.DB) *SplitService {
	return &SplitService{db: conn}
}

// GetByExpenseID returns the splits of an expense with users preloaded;
// empty when none match.
func (s *SplitService) GetByExpenseID(ctx context.Context, expenseID uint64) ([]models.ExpenseSplit, error) {
	var splits []models.ExpenseSplit
	if errFind := s.db.WithContext(ctx).Preload("User").
		Where("expense_id = ?", expenseID).
		Order("id ASC").
		Find(&splits).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list splits: %w", errFind)
	}
	return splits, nil
}

// Update overwrites a split's amount and recipient.
func (s *SplitService) Update(ctx context.Context, split *models.ExpenseSplit) error {
	var existing models.ExpenseSplit
	if errFind := s.db.WithContext(ctx).First(&existing, split.ID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ledger: get split: %w", errFind)
	}
	if errUpdate := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"split_with_user_id": split.SplitWithUserID,
		"split_amount":       split.SplitAmount,
	}).Error; errUpdate != nil {
		return fmt.Errorf("ledger: update split: %w", errUpdate)
	}
	return nil
}

// Delete removes a split row; deleting an absent split is a no-op.
func (s *SplitService) Delete(ctx context.Context, splitID uint64) error {
	if errDelete := s.db.WithContext(ctx).Delete(&models.ExpenseSplit{}, splitID).Error; errDelete != nil {
		return fmt.Errorf("ledger: delete split: %w", errDelete)
	}
	return nil
}
