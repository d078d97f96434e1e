package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/ledger"
	"github.com/expenseshare/server/internal/models"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles the expense lifecycle endpoints.
type ExpenseHandler struct {
	expenses *ledger.ExpenseService
	details  cache.GroupDetails
}

// NewExpenseHandler constructs an ExpenseHandler.
func NewExpenseHandler(expenses *ledger.ExpenseService, details cache.GroupDetails) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, details: details}
}

// createExpenseRequest defines the request body for expense creation.
type createExpenseRequest struct {
	GroupID       uint64  `json:"groupId"`
	PaidByUserID  uint64  `json:"paidByUserId"`
	Description   string  `json:"description"`
	ExpenseAmount float64 `json:"expenseAmount"`
}

// Create records an expense, splitting it evenly across the group.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var body createExpenseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.GroupID == 0 || body.PaidByUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupId and paidByUserId are required"})
		return
	}
	if body.ExpenseAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expenseAmount must be positive"})
		return
	}

	expense := models.Expense{
		GroupID:       body.GroupID,
		PaidByUserID:  body.PaidByUserID,
		Description:   strings.TrimSpace(body.Description),
		ExpenseAmount: body.ExpenseAmount,
	}
	if errCreate := h.expenses.Create(c.Request.Context(), &expense); errCreate != nil {
		respondLedgerError(c, errCreate)
		return
	}
	h.details.Invalidate(c.Request.Context(), body.GroupID)
	c.JSON(http.StatusCreated, gin.H{"expense": toExpenseDTO(&expense)})
}

// Get returns one expense with its splits.
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	expense, errGet := h.expenses.GetByExpenseID(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}
	if expense == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": toExpenseDTO(expense)})
}

// ListByGroup returns all expenses of a group.
func (h *ExpenseHandler) ListByGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	expenses, errList := h.expenses.GetByGroupID(c.Request.Context(), groupID)
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]expenseDTO, 0, len(expenses))
	for i := range expenses {
		resp = append(resp, toExpenseDTO(&expenses[i]))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": resp})
}

// updateExpenseRequest defines the request body for expense updates.
type updateExpenseRequest struct {
	ExpenseID        uint64    `json:"expenseId"`
	GroupID          uint64    `json:"groupId"`
	PaidByUserID     uint64    `json:"paidByUserId"`
	Description      string    `json:"description"`
	ExpenseAmount    float64   `json:"expenseAmount"`
	IsSettled        bool      `json:"isSettled"`
	ExpenseCreatedAt time.Time `json:"expenseCreatedAt"`
}

// Update overwrites an expense's mutable fields. A transition to settled
// applies the settlement accounting against the current splits.
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateExpenseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ExpenseID != 0 && body.ExpenseID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expense id mismatch"})
		return
	}
	if body.GroupID == 0 || body.PaidByUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupId and paidByUserId are required"})
		return
	}
	if body.ExpenseAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expenseAmount must be positive"})
		return
	}

	updated := models.Expense{
		GroupID:          body.GroupID,
		PaidByUserID:     body.PaidByUserID,
		Description:      strings.TrimSpace(body.Description),
		ExpenseAmount:    body.ExpenseAmount,
		IsSettled:        body.IsSettled,
		ExpenseCreatedAt: body.ExpenseCreatedAt,
	}
	if errUpdate := h.expenses.UpdateDetails(c.Request.Context(), id, &updated); errUpdate != nil {
		respondLedgerError(c, errUpdate)
		return
	}
	h.details.Invalidate(c.Request.Context(), body.GroupID)
	c.JSON(http.StatusOK, gin.H{"message": "expense updated"})
}

// Settle marks an expense settled and cashes out member balances. Settling
// twice is rejected.
func (h *ExpenseHandler) Settle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	expense, errGet := h.expenses.GetByExpenseID(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}
	if expense == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}

	if errSettle := h.expenses.Settle(c.Request.Context(), id); errSettle != nil {
		respondLedgerError(c, errSettle)
		return
	}
	h.details.Invalidate(c.Request.Context(), expense.GroupID)
	c.JSON(http.StatusOK, gin.H{"message": "expense settled"})
}

// Delete removes an expense with its splits; deleting an absent expense
// succeeds without effect.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	expense, errGet := h.expenses.GetByExpenseID(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}

	if errDelete := h.expenses.Delete(c.Request.Context(), id); errDelete != nil {
		respondLedgerError(c, errDelete)
		return
	}
	if expense != nil {
		h.details.Invalidate(c.Request.Context(), expense.GroupID)
	}
	c.Status(http.StatusNoContent)
}
