package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/expenseshare/server/internal/models"
)

func TestAddMemberRejectsDuplicates(t *testing.T) {
	conn := openLedgerTestDB(t)
	_, groupID := seedGroupWithMembers(t, conn, 1)
	svc := NewMemberService(conn)

	joiner := models.User{Name: "joiner", EmailID: fmt.Sprintf("joiner_%d@test.local", time.Now().UnixNano()), Password: "x"}
	if errCreate := conn.Create(&joiner).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	member, errAdd := svc.AddMember(context.Background(), joiner.ID, groupID)
	if errAdd != nil {
		t.Fatalf("add member: %v", errAdd)
	}
	if member.GivenAmount != 0 || member.TakenAmount != 0 || member.UserExpense != 0 {
		t.Fatalf("new member must start with zeroed balances")
	}

	if _, errAdd := svc.AddMember(context.Background(), joiner.ID, groupID); errAdd != ErrAlreadyMember {
		t.Fatalf("expected ErrAlreadyMember, got %v", errAdd)
	}

	var count int64
	conn.Model(&models.GroupMember{}).Where("user_id = ? AND group_id = ?", joiner.ID, groupID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single membership row, got %d", count)
	}

	var group models.Group
	if errFind := conn.First(&group, groupID).Error; errFind != nil {
		t.Fatalf("load group: %v", errFind)
	}
	if group.TotalMembers != 2 {
		t.Fatalf("expected TotalMembers 2, got %d", group.TotalMembers)
	}
}

func TestAddMemberValidatesUserAndGroup(t *testing.T) {
	conn := openLedgerTestDB(t)
	userIDs, groupID := seedGroupWithMembers(t, conn, 1)
	svc := NewMemberService(conn)

	if _, errAdd := svc.AddMember(context.Background(), 9999, groupID); errAdd != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", errAdd)
	}
	if _, errAdd := svc.AddMember(context.Background(), userIDs[0], 9999); errAdd != ErrGroupNotFound {
		t.Fatalf("expected ErrGroupNotFound, got %v", errAdd)
	}
}

func TestGetByUserIDExcludesAdministeredGroups(t *testing.T) {
	conn := openLedgerTestDB(t)
	svc := NewMemberService(conn)

	// alice administers one group, bob another; each is enrolled in both.
	alice := models.User{Name: "alice", EmailID: fmt.Sprintf("alice_%d@test.local", time.Now().UnixNano()), Password: "x"}
	bob := models.User{Name: "bob", EmailID: fmt.Sprintf("bob_%d@test.local", time.Now().UnixNano()), Password: "x"}
	for _, user := range []*models.User{&alice, &bob} {
		if errCreate := conn.Create(user).Error; errCreate != nil {
			t.Fatalf("create user: %v", errCreate)
		}
	}
	aliceGroup := models.Group{GroupName: "alice-group", GroupAdminID: alice.ID}
	bobGroup := models.Group{GroupName: "bob-group", GroupAdminID: bob.ID}
	for _, group := range []*models.Group{&aliceGroup, &bobGroup} {
		if errCreate := conn.Create(group).Error; errCreate != nil {
			t.Fatalf("create group: %v", errCreate)
		}
		for _, userID := range []uint64{alice.ID, bob.ID} {
			member := models.GroupMember{UserID: userID, GroupID: group.ID}
			if errCreate := conn.Create(&member).Error; errCreate != nil {
				t.Fatalf("create member: %v", errCreate)
			}
		}
	}

	memberships, errList := svc.GetByUserID(context.Background(), alice.ID)
	if errList != nil {
		t.Fatalf("list memberships: %v", errList)
	}
	if len(memberships) != 1 {
		t.Fatalf("expected 1 membership, got %d", len(memberships))
	}
	if memberships[0].GroupID != bobGroup.ID {
		t.Fatalf("expected membership in bob's group, got group %d", memberships[0].GroupID)
	}
	if memberships[0].Group == nil || memberships[0].Group.GroupName != "bob-group" {
		t.Fatalf("expected group preloaded")
	}
}

func TestGetByUserAndGroupAbsentReturnsNil(t *testing.T) {
	conn := openLedgerTestDB(t)
	userIDs, _ := seedGroupWithMembers(t, conn, 1)
	svc := NewMemberService(conn)

	member, errGet := svc.GetByUserAndGroup(context.Background(), userIDs[0], 9999)
	if errGet != nil {
		t.Fatalf("get member: %v", errGet)
	}
	if member != nil {
		t.Fatalf("expected nil for absent membership")
	}
}
