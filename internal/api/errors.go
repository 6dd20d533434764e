package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"landmarket/server/internal/apperr"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var errorKinds = []struct {
	kind   error
	name   string
	status int
}{
	{apperr.ErrInvalidGeometry, "invalid_geometry", http.StatusBadRequest},
	{apperr.ErrValidation, "validation", http.StatusBadRequest},
	{apperr.ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
	{apperr.ErrForbidden, "forbidden", http.StatusForbidden},
	{apperr.ErrNotFound, "not_found", http.StatusNotFound},
	{apperr.ErrConflict, "conflict", http.StatusConflict},
	{apperr.ErrUnavailable, "unavailable", http.StatusServiceUnavailable},
}

// respondError writes the error body for err and aborts the chain.
// Unclassified errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperr.KindOf(err)
	for _, k := range errorKinds {
		if k.kind == kind {
			c.AbortWithStatusJSON(k.status, errorResponse{
				Error:   k.name,
				Message: messageOf(err),
				Field:   apperr.FieldOf(err),
			})
			return
		}
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Error:   "internal",
		Message: "internal server error",
	})
}

func messageOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func badRequest(reason string) error {
	return apperr.Validation("", "%s", reason)
}
