package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged server-side and returned as an opaque 500.
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsBadInput(err):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, apperr.ErrDuplicateBilling),
		errors.Is(err, apperr.ErrDuplicateLocation),
		errors.Is(err, apperr.ErrSourceNotApproved):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
	}
}
