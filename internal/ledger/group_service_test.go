package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/expenseshare/server/internal/models"
)

func TestGroupCreateEnrollsAdmin(t *testing.T) {
	conn := openLedgerTestDB(t)
	svc := NewGroupService(conn)

	admin := models.User{Name: "admin", EmailID: fmt.Sprintf("admin_%d@test.local", time.Now().UnixNano()), Password: "x"}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	group := models.Group{GroupName: "flat", GroupAdminID: admin.ID}
	if errCreate := svc.Create(context.Background(), &group); errCreate != nil {
		t.Fatalf("create group: %v", errCreate)
	}
	if group.TotalMembers != 1 {
		t.Fatalf("expected TotalMembers 1, got %d", group.TotalMembers)
	}

	var member models.GroupMember
	if errFind := conn.Where("user_id = ? AND group_id = ?", admin.ID, group.ID).First(&member).Error; errFind != nil {
		t.Fatalf("expected admin enrolled as member: %v", errFind)
	}
	if member.GivenAmount != 0 || member.TakenAmount != 0 || member.UserExpense != 0 {
		t.Fatalf("admin membership must start with zeroed balances")
	}
}

func TestGroupCreateRequiresExistingAdmin(t *testing.T) {
	conn := openLedgerTestDB(t)
	svc := NewGroupService(conn)

	group := models.Group{GroupName: "ghost", GroupAdminID: 9999}
	if errCreate := svc.Create(context.Background(), &group); errCreate != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", errCreate)
	}
}

func TestGroupDetailsRecomputesCounters(t *testing.T) {
	conn := openLedgerTestDB(t)
	userIDs, groupID := seedGroupWithMembers(t, conn, 3)
	groupSvc := NewGroupService(conn)
	expenseSvc := NewExpenseService(conn)

	expense := models.Expense{GroupID: groupID, PaidByUserID: userIDs[0], ExpenseAmount: 60}
	if errCreate := expenseSvc.Create(context.Background(), &expense); errCreate != nil {
		t.Fatalf("create expense: %v", errCreate)
	}

	// Make the stored counters stale on purpose.
	if errUpdate := conn.Model(&models.Group{}).Where("id = ?", groupID).
		Updates(map[string]any{"total_members": 0, "total_expense": 0}).Error; errUpdate != nil {
		t.Fatalf("reset counters: %v", errUpdate)
	}

	details, errGet := groupSvc.Details(context.Background(), groupID)
	if errGet != nil {
		t.Fatalf("group details: %v", errGet)
	}
	if details == nil {
		t.Fatalf("expected group details")
	}
	if details.TotalMembers != 3 {
		t.Fatalf("expected TotalMembers 3, got %d", details.TotalMembers)
	}
	if details.TotalExpense != 60 {
		t.Fatalf("expected TotalExpense 60, got %v", details.TotalExpense)
	}
	if len(details.Members) != 3 {
		t.Fatalf("expected 3 members preloaded, got %d", len(details.Members))
	}
	for _, member := range details.Members {
		if member.User == nil {
			t.Fatalf("expected member users preloaded")
		}
	}
	if len(details.Expenses) != 1 || len(details.Expenses[0].Splits) != 2 {
		t.Fatalf("expected expense with splits preloaded")
	}
}

func TestGroupDetailsClampsMemberCount(t *testing.T) {
	conn := openLedgerTestDB(t)
	_, groupID := seedGroupWithMembers(t, conn, 12)
	svc := NewGroupService(conn)

	details, errGet := svc.Details(context.Background(), groupID)
	if errGet != nil {
		t.Fatalf("group details: %v", errGet)
	}
	if details.TotalMembers != 10 {
		t.Fatalf("expected member count clamped to 10, got %d", details.TotalMembers)
	}
	if len(details.Members) != 12 {
		t.Fatalf("clamp applies to the counter only, got %d members", len(details.Members))
	}
}

func TestGroupDetailsAbsentReturnsNil(t *testing.T) {
	conn := openLedgerTestDB(t)
	svc := NewGroupService(conn)

	details, errGet := svc.Details(context.Background(), 9999)
	if errGet != nil {
		t.Fatalf("group details: %v", errGet)
	}
	if details != nil {
		t.Fatalf("expected nil for absent group")
	}
}

func TestGroupDeleteRemovesChildren(t *testing.T) {
	conn := openLedgerTestDB(t)
	userIDs, groupID := seedGroupWithMembers(t, conn, 2)
	groupSvc := NewGroupService(conn)
	expenseSvc := NewExpenseService(conn)

	expense := models.Expense{GroupID: groupID, PaidByUserID: userIDs[0], ExpenseAmount: 20}
	if errCreate := expenseSvc.Create(context.Background(), &expense); errCreate != nil {
		t.Fatalf("create expense: %v", errCreate)
	}

	if errDelete := groupSvc.Delete(context.Background(), groupID); errDelete != nil {
		t.Fatalf("delete group: %v", errDelete)
	}

	var groups, members, expenses, splits int64
	conn.Model(&models.Group{}).Where("id = ?", groupID).Count(&groups)
	conn.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&members)
	conn.Model(&models.Expense{}).Where("group_id = ?", groupID).Count(&expenses)
	conn.Model(&models.ExpenseSplit{}).Count(&splits)
	if groups != 0 || members != 0 || expenses != 0 || splits != 0 {
		t.Fatalf("expected group graph removed, got %d/%d/%d/%d", groups, members, expenses, splits)
	}

	// Absent delete is a no-op.
	if errDelete := groupSvc.Delete(context.Background(), groupID); errDelete != nil {
		t.Fatalf("deleting an absent group must succeed, got %v", errDelete)
	}
}

func TestGroupUpdateAbsentFails(t *testing.T) {
	conn := openLedgerTestDB(t)
	svc := NewGroupService(conn)

	group := models.Group{ID: 9999, GroupName: "renamed"}
	if errUpdate := svc.Update(context.Background(), &group); errUpdate != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", errUpdate)
	}
}
