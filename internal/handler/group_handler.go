package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/service"
)

// GroupHandler handles recipient groups and the connection ledger endpoints
type GroupHandler struct {
	groupService *service.GroupService
	connService  *service.ConnectionService
}

func NewGroupHandler(groupService *service.GroupService, connService *service.ConnectionService) *GroupHandler {
	return &GroupHandler{groupService: groupService, connService: connService}
}

// CreateGroup makes a new empty recipient group
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req model.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	group, err := h.groupService.Create(userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// AddGroupMember appends a person to a group
func (h *GroupHandler) AddGroupMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid group ID"})
		return
	}

	var req model.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	member, err := h.groupService.AddMember(userID, groupID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetGroups lists the user's groups with members
func (h *GroupHandler) GetGroups(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	groups, err := h.groupService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreateConnection records a pending ledger entry (the "enter name" flow)
func (h *GroupHandler) CreateConnection(c *gin.Context) {
	var req model.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	conn, err := h.connService.CreatePending(userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

// GetConnections lists the user's connection ledger
func (h *GroupHandler) GetConnections(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	conns, err := h.connService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conns)
}
