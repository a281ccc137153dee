package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/storage"
)

const maxMemeSize = 25 << 20 // 25 MB

// MemeHandler handles meme media upload and listing. Thin wrapper over
// object storage; the interesting state lives on dumps.
type MemeHandler struct {
	storage  *storage.MinIOStorage
	memeRepo *repository.MemeRepository
}

func NewMemeHandler(storage *storage.MinIOStorage, memeRepo *repository.MemeRepository) *MemeHandler {
	return &MemeHandler{storage: storage, memeRepo: memeRepo}
}

// Upload stores one media file and creates its meme row
func (h *MemeHandler) Upload(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Upload is not available"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxMemeSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File too large (max 25MB)"})
		return
	}

	result, err := h.storage.Upload(c.Request.Context(), file, header)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Upload failed"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	meme := &model.Meme{
		OwnerID:   userID,
		URL:       result.URL,
		ObjectKey: result.Key,
		MimeType:  result.MimeType,
		FileSize:  result.FileSize,
	}
	if err := h.memeRepo.Create(meme); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to save meme"})
		return
	}
	c.JSON(http.StatusCreated, meme)
}

// List returns the user's memes, newest first
func (h *MemeHandler) List(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	memes, err := h.memeRepo.ListByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list memes"})
		return
	}
	c.JSON(http.StatusOK, memes)
}
