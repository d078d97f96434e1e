package handlers

import (
	"net/http"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/ledger"
	"github.com/gin-gonic/gin"
)

// MemberHandler handles group membership endpoints.
type MemberHandler struct {
	members *ledger.MemberService
	details cache.GroupDetails
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(members *ledger.MemberService, details cache.GroupDetails) *MemberHandler {
	return &MemberHandler{members: members, details: details}
}

// addMemberRequest defines the request body for enrollment.
type addMemberRequest struct {
	UserID  uint64 `json:"userId"`
	GroupID uint64 `json:"groupId"`
}

// Add enrolls a user into a group.
func (h *MemberHandler) Add(c *gin.Context) {
	var body addMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 || body.GroupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and groupId are required"})
		return
	}

	member, errAdd := h.members.AddMember(c.Request.Context(), body.UserID, body.GroupID)
	if errAdd != nil {
		respondLedgerError(c, errAdd)
		return
	}
	h.details.Invalidate(c.Request.Context(), body.GroupID)
	c.JSON(http.StatusCreated, gin.H{"groupMember": toGroupMemberDTO(member)})
}

// Get returns one membership row.
func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	member, errGet := h.members.GetByID(c.Request.Context(), id)
	if errGet != nil {
		respondLedgerError(c, errGet)
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groupMember": toGroupMemberDTO(member)})
}

// ListByGroup returns all memberships of a group.
func (h *MemberHandler) ListByGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, errList := h.members.GetByGroupID(c.Request.Context(), groupID)
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]groupMemberDTO, 0, len(members))
	for i := range members {
		resp = append(resp, toGroupMemberDTO(&members[i]))
	}
	c.JSON(http.StatusOK, gin.H{"groupMembers": resp})
}

// ListByUser returns the user's memberships in groups they do not
// administer.
func (h *MemberHandler) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, errList := h.members.GetByUserID(c.Request.Context(), userID)
	if errList != nil {
		respondLedgerError(c, errList)
		return
	}
	resp := make([]groupMemberDTO, 0, len(members))
	for i := range members {
		resp = append(resp, toGroupMemberDTO(&members[i]))
	}
	c.JSON(http.StatusOK, gin.H{"groupMembers": resp})
}
