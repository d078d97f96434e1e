package handlers

import (
	"net/http"

	"github.com/expenseshare/server/internal/ledger"
	"github.com/expenseshare/server/internal/models"
	"github.com/gin-gonic/gin"
)

// SplitHandler handles direct expense-split endpoints.
type SplitHandler struct {
	splits *ledger.SplitService
}

// NewSplitHandler constructs a SplitHandler.
func NewSplitHandler(splits *ledger.SplitService) *SplitHandler {
	return &SplitHandler{splits: splits}
}

// ListByExpense returns the splits of one expense.
func (h *SplitHandler) ListByExpense(c *gin.Context) {
	expenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	splits, errList := h.splits.GetByExpenseID(c.Request.Context(), expenseID)
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]expenseSplitDTO, 0, len(splits))
	for i := range splits {
		resp = append(resp, toExpenseSplitDTO(&splits[i]))
	}
	c.JSON(http.StatusOK, gin.H{"expenseSplits": resp})
}

// updateSplitRequest defines the request body for split maintenance.
type updateSplitRequest struct {
	ExpenseSplitID  uint64  `json:"expenseSplitId"`
	SplitWithUserID uint64  `json:"splitWithUserId"`
	SplitAmount     float64 `json:"splitAmount"`
}

// Update overwrites a split's recipient and amount.
func (h *SplitHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateSplitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ExpenseSplitID != 0 && body.ExpenseSplitID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expense split id mismatch"})
		return
	}

	split := models.ExpenseSplit{
		ID:              id,
		SplitWithUserID: body.SplitWithUserID,
		SplitAmount:     body.SplitAmount,
	}
	if errUpdate := h.splits.Update(c.Request.Context(), &split); errUpdate != nil {
		respondLedgerError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense split updated"})
}

// Delete removes a split row.
func (h *SplitHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errDelete := h.splits.Delete(c.Request.Context(), id); errDelete != nil {
		respondLedgerError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}
