package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseshare/server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxDisplayedMembers caps the denormalized member count shown on group
// detail, matching the product's ten-member group limit.
const maxDisplayedMembers = 10

// GroupService manages groups and the auto-enrollment of their admin.
type GroupService struct {
	db *gorm.DB
}

// NewGroupService constructs a GroupService.
func NewGroupService(conn *gorm.DB) *GroupService {
	return &GroupService{db: conn}
}

// Create persists a group and enrolls its admin as the first member, with
// zeroed balances, in one transaction.
func (s *GroupService) Create(ctx context.Context, group *models.Group) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		if errFind := tx.First(&admin, group.GroupAdminID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}

		if errCreate := tx.Create(group).Error; errCreate != nil {
			return errCreate
		}
		member := models.GroupMember{UserID: group.GroupAdminID, GroupID: group.ID}
		if errCreate := tx.Create(&member).Error; errCreate != nil {
			return errCreate
		}
		group.TotalMembers = 1
		return tx.Model(group).Update("total_members", 1).Error
	})
	if errTx != nil {
		if errors.Is(errTx, ErrUserNotFound) {
			return errTx
		}
		log.WithError(errTx).WithField("admin_id", group.GroupAdminID).Error("create group failed")
		return fmt.Errorf("ledger: create group: %w", errTx)
	}
	return nil
}

// GetByID returns a group, or nil when absent.
func (s *GroupService) GetByID(ctx context.Context, groupID uint64) (*models.Group, error) {
	var group models.Group
	if errFind := s.db.WithContext(ctx).First(&group, groupID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: get group: %w", errFind)
	}
	return &group, nil
}

// GetAll returns every group.
func (s *GroupService) GetAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&groups).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list groups: %w", errFind)
	}
	return groups, nil
}

// GetByAdminID returns the groups administered by a user.
func (s *GroupService) GetByAdminID(ctx context.Context, userID uint64) ([]models.Group, error) {
	var groups []models.Group
	if errFind := s.db.WithContext(ctx).
		Where("group_admin_id = ?", userID).
		Order("id ASC").
		Find(&groups).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list groups by admin: %w", errFind)
	}
	return groups, nil
}

// Update overwrites a group's mutable fields.
func (s *GroupService) Update(ctx context.Context, group *models.Group) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Group
		if errFind := tx.First(&existing, group.ID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		return tx.Model(&existing).Updates(map[string]any{
			"group_name":     group.GroupName,
			"description":    group.Description,
			"group_admin_id": group.GroupAdminID,
		}).Error
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) {
			return errTx
		}
		log.WithError(errTx).WithField("group_id", group.ID).Error("update group failed")
		return fmt.Errorf("ledger: update group: %w", errTx)
	}
	return nil
}

// Delete removes a group with its memberships, expenses and splits. Deleting
// an absent group is a no-op.
func (s *GroupService) Delete(ctx context.Context, groupID uint64) error {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if errFind := tx.First(&group, groupID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return nil
			}
			return errFind
		}

		// Children removed explicitly so behavior does not depend on the
		// dialect honoring FK cascades.
		if errDelete := tx.Where("expense_id IN (?)",
			tx.Model(&models.Expense{}).Select("id").Where("group_id = ?", groupID),
		).Delete(&models.ExpenseSplit{}).Error; errDelete != nil {
			return errDelete
		}
		if errDelete := tx.Where("group_id = ?", groupID).Delete(&models.Expense{}).Error; errDelete != nil {
			return errDelete
		}
		if errDelete := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; errDelete != nil {
			return errDelete
		}
		return tx.Delete(&group).Error
	})
	if errTx != nil {
		log.WithError(errTx).WithField("group_id", groupID).Error("delete group failed")
		return fmt.Errorf("ledger: delete group: %w", errTx)
	}
	return nil
}

// Details returns the full group graph: members with users, expenses with
// splits and split users. The denormalized TotalMembers and TotalExpense
// counters are recomputed from live rows and persisted on this path; the
// member count display is clamped at the group size limit.
func (s *GroupService) Details(ctx context.Context, groupID uint64) (*models.Group, error) {
	var group *models.Group
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Group
		if errFind := tx.First(&existing, groupID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return nil
			}
			return errFind
		}

		var memberCount int64
		if errCount := tx.Model(&models.GroupMember{}).
			Where("group_id = ?", groupID).
			Count(&memberCount).Error; errCount != nil {
			return errCount
		}
		totalMembers := int(memberCount)
		if totalMembers > maxDisplayedMembers {
			totalMembers = maxDisplayedMembers
		}

		var totalExpense float64
		if errSum := tx.Model(&models.Expense{}).
			Where("group_id = ?", groupID).
			Select("COALESCE(SUM(expense_amount), 0)").
			Scan(&totalExpense).Error; errSum != nil {
			return errSum
		}

		if errUpdate := tx.Model(&existing).Updates(map[string]any{
			"total_members": totalMembers,
			"total_expense": totalExpense,
		}).Error; errUpdate != nil {
			return errUpdate
		}

		var full models.Group
		if errFind := tx.
			Preload("Members.User").
			Preload("Expenses.Splits.User").
			First(&full, groupID).Error; errFind != nil {
			return errFind
		}
		group = &full
		return nil
	})
	if errTx != nil {
		log.WithError(errTx).WithField("group_id", groupID).Error("group details failed")
		return nil, fmt.Errorf("ledger: group details: %w", errTx)
	}
	return group, nil
}
