package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/studio"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	exports *service.ExportService
	studio  *studio.Studio
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(exports *service.ExportService, st *studio.Studio, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		exports: exports,
		studio:  st,
		logger:  logger,
	}
}

// Stats returns export counts and the number of open sessions.
// Route: GET /api/v1/admin/stats?recent=10
func (h *AdminHandler) Stats(c *gin.Context) {
	recent, err := strconv.Atoi(c.DefaultQuery("recent", "10"))
	if err != nil || recent < 0 || recent > 100 {
		badRequest(c, "recent must be between 0 and 100")
		return
	}

	st, err := h.exports.Stats(c.Request.Context(), recent)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exports":  st,
		"sessions": h.studio.Len(),
	})
}
