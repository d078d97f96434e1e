package handlers

import (
	"net/http"
	"strings"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/ledger"
	"github.com/expenseshare/server/internal/models"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles group CRUD and the aggregated detail view.
type GroupHandler struct {
	groups  *ledger.GroupService
	details cache.GroupDetails
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups *ledger.GroupService, details cache.GroupDetails) *GroupHandler {
	return &GroupHandler{groups: groups, details: details}
}

// createGroupRequest defines the request body for group creation.
type createGroupRequest struct {
	GroupName    string `json:"groupName"`
	Description  string `json:"description"`
	GroupAdminID uint64 `json:"groupAdminId"`
}

// Create creates a group and enrolls its admin as the first member.
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.GroupName)
	if name == "" || body.GroupAdminID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupName and groupAdminId are required"})
		return
	}

	group := models.Group{
		GroupName:    name,
		Description:  strings.TrimSpace(body.Description),
		GroupAdminID: body.GroupAdminID,
	}
	if errCreate := h.groups.Create(c.Request.Context(), &group); errCreate != nil {
		respondLedgerError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": toGroupDTO(&group)})
}

// List returns all groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, errList := h.groups.GetAll(c.Request.Context())
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]groupDTO, 0, len(groups))
	for i := range groups {
		resp = append(resp, toGroupDTO(&groups[i]))
	}
	c.JSON(http.StatusOK, gin.H{"groups": resp})
}

// Get returns one group without its relations.
func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	group, errGet := h.groups.GetByID(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": toGroupDTO(group)})
}

// Details returns the full group graph, served from the cache when fresh.
// The underlying read also rewrites the group's denormalized counters.
func (h *GroupHandler) Details(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if cached, hit := h.details.Get(c.Request.Context(), id); hit {
		c.JSON(http.StatusOK, gin.H{"group": toGroupDTO(cached)})
		return
	}

	group, errGet := h.groups.Details(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	h.details.Set(c.Request.Context(), group)
	c.JSON(http.StatusOK, gin.H{"group": toGroupDTO(group)})
}

// updateGroupRequest defines the request body for group updates.
type updateGroupRequest struct {
	GroupID      uint64 `json:"groupId"`
	GroupName    string `json:"groupName"`
	Description  string `json:"description"`
	GroupAdminID uint64 `json:"groupAdminId"`
}

// Update overwrites a group's mutable fields.
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body updateGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.GroupID != 0 && body.GroupID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group id mismatch"})
		return
	}

	group := models.Group{
		ID:           id,
		GroupName:    strings.TrimSpace(body.GroupName),
		Description:  strings.TrimSpace(body.Description),
		GroupAdminID: body.GroupAdminID,
	}
	if errUpdate := h.groups.Update(c.Request.Context(), &group); errUpdate != nil {
		respondLedgerError(c, errUpdate)
		return
	}
	h.details.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"message": "group updated"})
}

// Delete removes a group and everything under it.
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errDelete := h.groups.Delete(c.Request.Context(), id); errDelete != nil {
		respondLedgerError(c, errDelete)
		return
	}
	h.details.Invalidate(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// ListByAdmin returns the groups a user administers.
func (h *GroupHandler) ListByAdmin(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	groups, errList := h.groups.GetByAdminID(c.Request.Context(), userID)
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]groupDTO, 0, len(groups))
	for i := range groups {
		resp = append(resp, toGroupDTO(&groups[i]))
	}
	c.JSON(http.StatusOK, gin.H{"groups": resp})
}
