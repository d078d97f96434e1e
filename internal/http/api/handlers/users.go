package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/expenseshare/server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles user read and update endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Get returns one user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserDTO(&user)})
}

// List returns all users.
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&users).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	resp := make([]userDTO, 0, len(users))
	for i := range users {
		resp = append(resp, toUserDTO(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// updateUserRequest defines the request body for user updates.
type updateUserRequest struct {
	UserID           uint64  `json:"userId"`
	Name             string  `json:"name"`
	EmailID          string  `json:"emailId"`
	AvailableBalance float64 `json:"availableBalance"`
}

// Update overwrites a user's profile fields and balance.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID != 0 && body.UserID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id mismatch"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	user.AvailableBalance = body.AvailableBalance
	updates := map[string]any{
		"available_balance": body.AvailableBalance,
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		user.Name = name
		updates["name"] = name
	}
	if email := strings.TrimSpace(body.EmailID); email != "" {
		user.EmailID = email
		updates["email_id"] = email
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserDTO(&user)})
}
