package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

// StatusFor maps a rules-engine error kind to an HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidStatus:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err in the common {"ok": false, "error": ...} shape. Upstream failures
// are logged and reported without their internal detail.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	body := gin.H{"ok": false, "error": err.Error(), "code": kind.String()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
		body["code"] = ve.Code
	}

	if kind == domain.KindUpstream || kind == domain.KindUnknown {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		body["error"] = "internal server error"
	}

	c.JSON(StatusFor(kind), body)
}
