package handler

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/studio"
	"github.com/fleveque/ficha-service/internal/templates"
)

// ExportHandler turns a session into a downloadable archive or slideshow.
type ExportHandler struct {
	studio  *studio.Studio
	exports *service.ExportService
	logger  *zap.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(st *studio.Studio, exports *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		studio:  st,
		exports: exports,
		logger:  logger,
	}
}

// batch snapshots the :id session, writing the error response when there
// is nothing to export.
func (h *ExportHandler) batch(c *gin.Context) (studio.Batch, bool) {
	s, err := h.studio.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return studio.Batch{}, false
	}
	b := s.Snapshot()
	if len(b.Items) == 0 {
		badRequest(c, "no items to export")
		return studio.Batch{}, false
	}
	return b, true
}

// Archive renders every item of the session into a zip.
// Route: POST /api/v1/sessions/:id/exports/archive
func (h *ExportHandler) Archive(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}

	exp, err := h.exports.Archive(c.Request.Context(), b.ExportRequest())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.deliver(c, exp)
}

// Video encodes the session's slides into an MP4.
// Route: POST /api/v1/sessions/:id/exports/video
func (h *ExportHandler) Video(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	if b.Template != templates.VideoSlide {
		badRequest(c, fmt.Sprintf("only %s sessions can be exported as video", templates.VideoSlide))
		return
	}

	sessionID := c.Param("id")
	exp, err := h.exports.Video(c.Request.Context(), b.ExportRequest(), func(line string) {
		h.logger.Debug("video progress", zap.String("session", sessionID), zap.String("line", line))
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.deliver(c, exp)
}

// Download serves a finished export. ?meta=1 answers the export record
// instead of the file.
// Route: GET /api/v1/exports/:id
func (h *ExportHandler) Download(c *gin.Context) {
	if c.Query("meta") != "" {
		exp, _, err := h.exports.Open(c.Request.Context(), c.Param("id"))
		if exp != nil {
			c.JSON(http.StatusOK, exp)
			return
		}
		respondError(c, h.logger, err)
		return
	}
	exp, data, err := h.exports.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.write(c, exp, data)
}

// deliver streams a just-finished export back to the caller. The stored
// copy stays available under GET /exports/:id.
func (h *ExportHandler) deliver(c *gin.Context, exp *model.Export) {
	// The export is stored; a client that went away should not turn it into
	// an error here.
	exp, data, err := h.exports.Open(context.WithoutCancel(c.Request.Context()), exp.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.write(c, exp, data)
}

func (h *ExportHandler) write(c *gin.Context, exp *model.Export, data []byte) {
	name := path.Base(*exp.Filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Export-Id", exp.ID)
	c.Header("X-Unused-Photos", strconv.Itoa(exp.UnusedCount))
	c.Data(http.StatusOK, contentType(exp.Kind), data)
}

func contentType(k model.ExportKind) string {
	if k == model.KindVideo {
		return "video/mp4"
	}
	return "application/zip"
}
