package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/expenseshare/server/internal/ledger"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a numeric path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param(name), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondLedgerError maps ledger sentinels onto HTTP statuses. Persistence
// failures surface as a generic 500; diagnostic detail stays in the logs.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotGroupMember),
		errors.Is(err, ledger.ErrAlreadySettled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
