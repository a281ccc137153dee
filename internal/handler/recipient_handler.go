package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/service"
)

// RecipientHandler handles the recipient-facing surface: the capability-token
// view routes, the public share preview, and claim-code redemption
type RecipientHandler struct {
	engagementService *service.EngagementService
	claimService      *service.ClaimService
	dumpService       *service.DumpService
}

func NewRecipientHandler(
	engagementService *service.EngagementService,
	claimService *service.ClaimService,
	dumpService *service.DumpService,
) *RecipientHandler {
	return &RecipientHandler{
		engagementService: engagementService,
		claimService:      claimService,
		dumpService:       dumpService,
	}
}

// ViewDump records a view and returns the recipient's private dump page.
// Bearer of the token is the recipient; no further authentication.
func (h *RecipientHandler) ViewDump(c *gin.Context) {
	resp, err := h.engagementService.View(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// React sets or clears the recipient's emoji on one meme
func (h *RecipientHandler) React(c *gin.Context) {
	var req model.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.engagementService.React(c.Param("token"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Reaction saved"})
}

// UpdateNote overwrites the recipient's note back to the sender
func (h *RecipientHandler) UpdateNote(c *gin.Context) {
	var req model.RecipientNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.engagementService.Note(c.Param("token"), req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Note saved"})
}

// SharePreview returns the public recipient-agnostic preview of a dump
func (h *RecipientHandler) SharePreview(c *gin.Context) {
	resp, err := h.dumpService.SharePreview(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Claim redeems a claim code for the authenticated user
func (h *RecipientHandler) Claim(c *gin.Context) {
	var req model.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	resp, err := h.claimService.Claim(userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
