package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/studio"
	"github.com/fleveque/ficha-service/internal/templates"
)

// SessionHandler exposes the editing commands of a studio session.
type SessionHandler struct {
	studio         *studio.Studio
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewSessionHandler creates a SessionHandler. maxUploadBytes bounds the
// whole multipart body of a photo upload; <= 0 means unbounded.
func NewSessionHandler(st *studio.Studio, maxUploadBytes int64, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		studio:         st,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type sessionResponse struct {
	ID       string               `json:"id"`
	Template templates.Kind       `json:"template"`
	Width    int                  `json:"width"`
	Height   int                  `json:"height"`
	Arity    int                  `json:"photos_per_item"`
	Vehicle  model.VehicleData    `json:"vehicle"`
	Settings model.ExportSettings `json:"settings"`
	Items    []studio.ItemView    `json:"items"`
}

func describe(s *studio.Session) sessionResponse {
	d, _ := templates.Lookup(s.Template)
	data, settings := s.Data()
	return sessionResponse{
		ID:       s.ID,
		Template: s.Template,
		Width:    d.Width,
		Height:   d.Height,
		Arity:    d.Arity,
		Vehicle:  data,
		Settings: settings,
		Items:    s.Items(),
	}
}

// session resolves the :id path parameter, writing a 404 when unknown.
func (h *SessionHandler) session(c *gin.Context) (*studio.Session, bool) {
	s, err := h.studio.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return s, true
}

// Create opens a session for one template.
// Route: POST /api/v1/sessions {"template": "portada"}
func (h *SessionHandler) Create(c *gin.Context) {
	var req struct {
		Template string `json:"template" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "template is required")
		return
	}
	k, err := templates.Parse(req.Template)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	s, err := h.studio.Create(k)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, describe(s))
}

// Get returns the session state.
// Route: GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, describe(s))
}

// Delete closes a session and drops its items.
// Route: DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	h.studio.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type vehicleRequest struct {
	Vehicle  model.VehicleData     `json:"vehicle"`
	Settings *model.ExportSettings `json:"settings"`
}

// UpdateVehicle replaces the vehicle fields and, when given, the export
// settings. Every item is re-rendered.
// Route: PUT /api/v1/sessions/:id/vehicle
func (h *SessionHandler) UpdateVehicle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}

	_, settings := s.Data()
	if req.Settings != nil {
		settings = *req.Settings
		if settings.Format != "" {
			f, ok := model.ParseFormat(string(settings.Format))
			if !ok {
				badRequest(c, fmt.Sprintf("unknown format %q: must be png or jpg", settings.Format))
				return
			}
			settings.Format = f
		}
	}

	s.UpdateData(req.Vehicle, settings)
	c.JSON(http.StatusOK, describe(s))
}

// UploadPhotos groups the uploaded photos into items and renders their
// previews. Files are taken in the order the client sent them.
// Route: POST /api/v1/sessions/:id/photos (multipart, field "photos[]")
func (h *SessionHandler) UploadPhotos(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		badRequest(c, "expected multipart form with photos[]")
		return
	}
	files := form.File["photos[]"]
	if len(files) == 0 {
		files = form.File["photos"]
	}

	inputs := make([]service.PhotoInput, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			badRequest(c, fmt.Sprintf("reading %s: %v", fh.Filename, err))
			return
		}
		inputs = append(inputs, service.PhotoInput{Filename: fh.Filename, Data: data})
	}

	g, views, err := s.AddItems(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	unused := make([]string, len(g.Unused))
	for i, u := range g.Unused {
		unused[i] = u.Filename
	}
	h.logger.Info("photos uploaded",
		zap.String("session", s.ID),
		zap.Int("photos", len(inputs)),
		zap.Int("items", len(views)),
		zap.Int("unused", len(unused)),
	)
	c.JSON(http.StatusCreated, gin.H{
		"items":   views,
		"unused":  unused,
		"summary": g.Summary(),
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Items lists the session's items in export order.
// Route: GET /api/v1/sessions/:id/items
func (h *SessionHandler) Items(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": s.Items()})
}

// ClearItems removes every item.
// Route: DELETE /api/v1/sessions/:id/items
func (h *SessionHandler) ClearItems(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearAll()
	c.Status(http.StatusNoContent)
}

// Preview serves the latest rendered image of an item. With
// ?encoding=dataurl it answers JSON carrying a data URL instead.
// Route: GET /api/v1/sessions/:id/items/:item/preview
func (h *SessionHandler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	p, err := s.Preview(c.Param("item"))
	if err == nil {
		err = p.Err
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	res := p.Result
	c.Header("Cache-Control", "no-store")
	c.Header("X-Preview-Revision", strconv.FormatUint(p.Revision, 10))
	if c.Query("encoding") == "dataurl" {
		c.JSON(http.StatusOK, gin.H{
			"data_url": res.DataURL(),
			"revision": p.Revision,
			"width":    res.Width,
			"height":   res.Height,
			"format":   res.Format,
		})
		return
	}
	c.Data(http.StatusOK, res.Mime, res.Data)
}

// SetFrame selects which photo slot later pan/zoom edits apply to.
// Route: POST /api/v1/sessions/:id/items/:item/frame {"frame": "bottomLeft"}
func (h *SessionHandler) SetFrame(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Frame string `json:"frame" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "frame is required")
		return
	}
	frame, err := templates.ParseFrame(req.Frame)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := s.SetActiveFrame(c.Param("item"), frame)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Pan drags the active frame by a pointer delta measured on a preview
// display_width pixels wide.
// Route: POST /api/v1/sessions/:id/items/:item/pan {"dx", "dy", "display_width"}
func (h *SessionHandler) Pan(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		DX           float64 `json:"dx"`
		DY           float64 `json:"dy"`
		DisplayWidth float64 `json:"display_width"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}

	view, err := s.ApplyPan(c.Param("item"), req.DX, req.DY, req.DisplayWidth)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Zoom applies one wheel step to the active frame. Negative delta_y zooms in.
// Route: POST /api/v1/sessions/:id/items/:item/zoom {"delta_y": -100}
func (h *SessionHandler) Zoom(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		DeltaY float64 `json:"delta_y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}

	view, err := s.ApplyZoom(c.Param("item"), req.DeltaY)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
