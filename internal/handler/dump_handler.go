package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/service"
)

// DumpHandler handles the sender-facing dump endpoints
type DumpHandler struct {
	dumpService     *service.DumpService
	activityService *service.ActivityService
}

func NewDumpHandler(dumpService *service.DumpService, activityService *service.ActivityService) *DumpHandler {
	return &DumpHandler{dumpService: dumpService, activityService: activityService}
}

// CreateDump starts a new draft
func (h *DumpHandler) CreateDump(c *gin.Context) {
	var req model.CreateDumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	dump, err := h.dumpService.Create(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dump)
}

// GetDumps lists the sender's dumps
func (h *DumpHandler) GetDumps(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	dumps, err := h.dumpService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dumps)
}

// GetDump returns one owned dump with memes and recipients
func (h *DumpHandler) GetDump(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	dump, err := h.dumpService.Get(userID, dumpID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dump)
}

// UpdateDump overwrites the sender's note
func (h *DumpHandler) UpdateDump(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	var req model.UpdateDumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.dumpService.UpdateNote(userID, dumpID, req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Dump updated"})
}

// AppendMemes adds memes to the end of a dump
func (h *DumpHandler) AppendMemes(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	var req model.AppendMemesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.dumpService.AppendMemes(userID, dumpID, req.MemeIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Memes added"})
}

// AddCollection appends a whole collection to a dump
func (h *DumpHandler) AddCollection(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	var req model.AddCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.dumpService.AddCollection(userID, dumpID, req.CollectionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Collection added"})
}

// SendDump resolves recipients and distributes the dump
func (h *DumpHandler) SendDump(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	var req model.SendDumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	resp, err := h.dumpService.Send(c.Request.Context(), userID, dumpID, req.Recipients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShareDump returns the dump's public share token, minting it on first call
func (h *DumpHandler) ShareDump(c *gin.Context) {
	dumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid dump ID"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	shareToken, err := h.dumpService.GenerateShareToken(userID, dumpID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ShareTokenResponse{ShareToken: shareToken})
}

// GetActivity returns the sender's merged activity feed
func (h *DumpHandler) GetActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	userID := c.MustGet("user_id").(uuid.UUID)
	feed, err := h.activityService.Feed(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
