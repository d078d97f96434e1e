package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseshare/server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MemberService manages group membership and its cardinality invariant: at
// most one GroupMember row per (user, group) pair.
type MemberService struct {
	db *gorm.DB
}

// NewMemberService constructs a MemberService.
func NewMemberService(conn *gorm.DB) *MemberService {
	return &MemberService{db: conn}
}

// AddMember enrolls a user into a group with zeroed balances and refreshes
// the group's denormalized member count.
func (s *MemberService) AddMember(ctx context.Context, userID, groupID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := tx.First(&user, userID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}
		var group models.Group
		if errFind := tx.First(&group, groupID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return errFind
		}

		var existing models.GroupMember
		errExisting := tx.Where("user_id = ? AND group_id = ?", userID, groupID).First(&existing).Error
		if errExisting == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(errExisting, gorm.ErrRecordNotFound) {
			return errExisting
		}

		member = models.GroupMember{UserID: userID, GroupID: groupID}
		if errCreate := tx.Create(&member).Error; errCreate != nil {
			return errCreate
		}
		return refreshGroupTotalMembers(tx, groupID)
	})
	if errTx != nil {
		if errors.Is(errTx, ErrUserNotFound) || errors.Is(errTx, ErrGroupNotFound) || errors.Is(errTx, ErrAlreadyMember) {
			return nil, errTx
		}
		log.WithError(errTx).WithFields(log.Fields{"user_id": userID, "group_id": groupID}).Error("add member failed")
		return nil, fmt.Errorf("ledger: add member: %w", errTx)
	}
	return &member, nil
}

// GetByID returns one membership row, or nil when absent.
func (s *MemberService) GetByID(ctx context.Context, memberID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	if errFind := s.db.WithContext(ctx).First(&member, memberID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: get member: %w", errFind)
	}
	return &member, nil
}

// GetByGroupID returns all memberships of a group with users preloaded.
func (s *MemberService) GetByGroupID(ctx context.Context, groupID uint64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if errFind := s.db.WithContext(ctx).Preload("User").
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&members).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list members: %w", errFind)
	}
	return members, nil
}

// GetByUserID returns the user's memberships in groups they do NOT
// administer. This is a deliberate product filter (a "groups I'm a guest in"
// view), not an oversight.
func (s *MemberService) GetByUserID(ctx context.Context, userID uint64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if errFind := s.db.WithContext(ctx).Preload("Group").
		Joins("JOIN groups ON groups.id = group_members.group_id").
		Where("group_members.user_id = ? AND groups.group_admin_id <> ?", userID, userID).
		Order("group_members.id ASC").
		Find(&members).Error; errFind != nil {
		return nil, fmt.Errorf("ledger: list memberships: %w", errFind)
	}
	return members, nil
}

// GetByUserAndGroup returns the membership row for a (user, group) pair, or
// nil when absent.
func (s *MemberService) GetByUserAndGroup(ctx context.Context, userID, groupID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&member).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: get member: %w", errFind)
	}
	return &member, nil
}

// refreshGroupTotalMembers recounts a group's denormalized member total.
func refreshGroupTotalMembers(tx *gorm.DB, groupID uint64) error {
	var count int64
	if errCount := tx.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; errCount != nil {
		return errCount
	}
	return tx.Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("total_members", count).Error
}
