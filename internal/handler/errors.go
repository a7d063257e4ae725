package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/decode"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/storage"
	"github.com/fleveque/ficha-service/internal/studio"
	"github.com/fleveque/ficha-service/internal/video"
)

// statusFor maps domain errors to HTTP status codes. Anything unrecognized
// is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, studio.ErrUnknownSession),
		errors.Is(err, studio.ErrUnknownItem),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSuchFrame):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientInput),
		errors.Is(err, decode.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrExportNotReady):
		return http.StatusConflict
	case errors.Is(err, video.ErrEncoderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, video.ErrEncodeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON body. Internal errors are logged and
// their message hidden from the client. A failed export is named in the
// X-Export-Id header and the body so its history entry can be looked up.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var failed *service.ExportError
	if errors.As(err, &failed) {
		c.Header("X-Export-Id", failed.ID)
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		body := gin.H{"error": "internal error"}
		if failed != nil {
			body["export_id"] = failed.ID
		}
		c.JSON(status, body)
		return
	}

	body := gin.H{"error": err.Error()}
	if failed != nil {
		body["export_id"] = failed.ID
	}
	var insufficient *service.InsufficientInputError
	if errors.As(err, &insufficient) {
		body["required"] = insufficient.Required
		body["got"] = insufficient.Got
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
