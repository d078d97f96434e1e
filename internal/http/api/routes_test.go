package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/config"
	"github.com/expenseshare/server/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:routes_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	engine := gin.New()
	RegisterRoutes(engine, conn, testJWTConfig, cache.NewInMemoryGroupDetails())
	return engine, conn
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account and returns its token and user ID.
func registerAndLogin(t *testing.T, engine *gin.Engine, name, email string) (string, uint64) {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"emailId":  email,
		"password": "changeme",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var registered struct {
		User struct {
			UserID uint64 `json:"userId"`
		} `json:"user"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &registered); errDecode != nil {
		t.Fatalf("decode register response: %v", errDecode)
	}

	w = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"emailId":  email,
		"password": "changeme",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var loggedIn struct {
		Token string `json:"token"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &loggedIn); errDecode != nil {
		t.Fatalf("decode login response: %v", errDecode)
	}
	if loggedIn.Token == "" {
		t.Fatalf("expected a token")
	}
	return loggedIn.Token, registered.User.UserID
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine, _ := setupRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/groups", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/groups", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	engine, _ := setupRouter(t)

	registerAndLogin(t, engine, "alice", "alice@test.local")
	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "alice2",
		"emailId":  "alice@test.local",
		"password": "changeme",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	engine, _ := setupRouter(t)

	registerAndLogin(t, engine, "bob", "bob@test.local")
	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"emailId":  "bob@test.local",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	engine, _ := setupRouter(t)

	token, adminID := registerAndLogin(t, engine, "payer", "payer@test.local")
	_, friendID := registerAndLogin(t, engine, "friend", "friend@test.local")

	// Create a group; the admin is auto-enrolled.
	w := doJSON(t, engine, http.MethodPost, "/api/groups", token, gin.H{
		"groupName":    "weekend",
		"description":  "weekend trip",
		"groupAdminId": adminID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Group struct {
			GroupID uint64 `json:"groupId"`
		} `json:"group"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &created); errDecode != nil {
		t.Fatalf("decode group response: %v", errDecode)
	}
	groupID := created.Group.GroupID

	// Enroll the second user; enrolling twice conflicts.
	w = doJSON(t, engine, http.MethodPost, "/api/members", token, gin.H{
		"userId":  friendID,
		"groupId": groupID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPost, "/api/members", token, gin.H{
		"userId":  friendID,
		"groupId": groupID,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate member: expected 409, got %d", w.Code)
	}

	// Record an expense paid by the admin.
	w = doJSON(t, engine, http.MethodPost, "/api/expenses", token, gin.H{
		"groupId":       groupID,
		"paidByUserId":  adminID,
		"description":   "fuel",
		"expenseAmount": 80,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var expenseResp struct {
		Expense struct {
			ExpenseID uint64 `json:"expenseId"`
			Splits    []struct {
				SplitWithUserID uint64  `json:"splitWithUserId"`
				SplitAmount     float64 `json:"splitAmount"`
			} `json:"expenseSplits"`
		} `json:"expense"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &expenseResp); errDecode != nil {
		t.Fatalf("decode expense response: %v", errDecode)
	}
	if len(expenseResp.Expense.Splits) != 1 {
		t.Fatalf("expected 1 split, got %d", len(expenseResp.Expense.Splits))
	}
	if expenseResp.Expense.Splits[0].SplitWithUserID != friendID || expenseResp.Expense.Splits[0].SplitAmount != 40 {
		t.Fatalf("unexpected split: %+v", expenseResp.Expense.Splits[0])
	}
	expenseID := expenseResp.Expense.ExpenseID

	// Settle it once, then reject the second attempt.
	w = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/expenses/%d/settle", expenseID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settle: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/expenses/%d/settle", expenseID), token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second settle: expected 400, got %d", w.Code)
	}

	// The detail view reflects the recomputed counters.
	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/groups/%d/details", groupID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("details: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var details struct {
		Group struct {
			TotalMembers int     `json:"totalMembers"`
			TotalExpense float64 `json:"totalExpense"`
		} `json:"group"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &details); errDecode != nil {
		t.Fatalf("decode details: %v", errDecode)
	}
	if details.Group.TotalMembers != 2 || details.Group.TotalExpense != 80 {
		t.Fatalf("unexpected counters: members=%d expense=%v", details.Group.TotalMembers, details.Group.TotalExpense)
	}

	// Delete the expense; a repeat delete still succeeds.
	w = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", expenseID), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete expense: expected 204, got %d", w.Code)
	}
	w = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", expenseID), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat delete: expected 204, got %d", w.Code)
	}
}

func TestExpenseUpdateValidatesAndSettles(t *testing.T) {
	engine, _ := setupRouter(t)

	token, adminID := registerAndLogin(t, engine, "payer", "payer2@test.local")
	_, friendID := registerAndLogin(t, engine, "friend", "friend2@test.local")

	w := doJSON(t, engine, http.MethodPost, "/api/groups", token, gin.H{
		"groupName":    "flat",
		"groupAdminId": adminID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Group struct {
			GroupID uint64 `json:"groupId"`
		} `json:"group"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &created); errDecode != nil {
		t.Fatalf("decode group response: %v", errDecode)
	}
	groupID := created.Group.GroupID

	w = doJSON(t, engine, http.MethodPost, "/api/members", token, gin.H{
		"userId":  friendID,
		"groupId": groupID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodPost, "/api/expenses", token, gin.H{
		"groupId":       groupID,
		"paidByUserId":  adminID,
		"description":   "rent",
		"expenseAmount": 100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var expenseResp struct {
		Expense struct {
			ExpenseID uint64 `json:"expenseId"`
		} `json:"expense"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &expenseResp); errDecode != nil {
		t.Fatalf("decode expense response: %v", errDecode)
	}
	expenseID := expenseResp.Expense.ExpenseID

	// A partial body must be rejected, not zero the overwritten columns.
	w = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/expenses/%d", expenseID), token, gin.H{
		"description": "rent updated",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("partial update: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/expenses/%d", expenseID), token, gin.H{
		"groupId":       groupID,
		"paidByUserId":  adminID,
		"description":   "rent",
		"expenseAmount": 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero amount update: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// A full settled payload settles the expense through the update endpoint.
	w = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/expenses/%d", expenseID), token, gin.H{
		"groupId":       groupID,
		"paidByUserId":  adminID,
		"description":   "rent",
		"expenseAmount": 100,
		"isSettled":     true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("settled update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/expenses/%d", expenseID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get expense: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var fetched struct {
		Expense struct {
			GroupID   uint64 `json:"groupId"`
			IsSettled bool   `json:"isSettled"`
		} `json:"expense"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &fetched); errDecode != nil {
		t.Fatalf("decode expense: %v", errDecode)
	}
	if !fetched.Expense.IsSettled {
		t.Fatalf("expected expense settled via update")
	}
	if fetched.Expense.GroupID != groupID {
		t.Fatalf("expected groupId preserved, got %d", fetched.Expense.GroupID)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	engine, _ := setupRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
