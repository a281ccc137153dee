package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/pkg/apperr"
)

// respondError maps an apperr code to an HTTP status. Unknown errors come
// back as a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case apperr.CodeNotFound:
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
	case apperr.CodeConflict:
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
	case apperr.CodeUnauthenticated:
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	case apperr.CodeForbidden:
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal error"})
	}
}
