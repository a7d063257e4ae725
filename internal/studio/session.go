// Package studio holds the editing state: sessions owning their items, the
// vehicle data and export settings, mutated only through named commands.
// Each command that changes what an item looks like re-renders exactly that
// item through a PreviewQueue.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/templates"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownItem    = errors.New("unknown item")
)

// Session is one editing workspace for a single template.
type Session struct {
	ID       string
	Template templates.Kind

	renderer *service.Renderer
	decoder  service.Decoder
	queue    *PreviewQueue

	mu       sync.Mutex
	items    []*service.Item
	byID     map[string]*service.Item
	data     model.VehicleData
	settings model.ExportSettings
	unused   int
	touched  time.Time
}

func newSession(id string, k templates.Kind, renderer *service.Renderer, dec service.Decoder, settings model.ExportSettings) *Session {
	s := &Session{
		ID:       id,
		Template: k,
		renderer: renderer,
		decoder:  dec,
		byID:     make(map[string]*service.Item),
		settings: settings,
		touched:  time.Now(),
	}
	s.queue = NewPreviewQueue(s.renderItem)
	return s
}

// renderItem snapshots the item under the lock and renders outside it, so
// edits to other items are never blocked by a render.
func (s *Session) renderItem(itemID string) (*model.RenderResult, error) {
	s.mu.Lock()
	it, ok := s.byID[itemID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownItem
	}
	snap := it.Snapshot()
	data, settings := s.data, s.settings
	s.mu.Unlock()

	return s.renderer.Render(snap, data, service.RenderOptions{Settings: settings})
}

// ItemView is the read-only state of an item for API responses.
type ItemView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Template    templates.Kind     `json:"template"`
	ActiveFrame string             `json:"active_frame"`
	Transforms  []layout.Transform `json:"transforms"`
	Sources     []string           `json:"sources"`
}

func viewOf(it *service.Item) ItemView {
	sources := make([]string, len(it.Slots))
	for i, sl := range it.Slots {
		sources[i] = sl.Source
	}
	return ItemView{
		ID:          it.ID,
		Name:        it.Name,
		Template:    it.Template,
		ActiveFrame: it.Active.String(),
		Transforms:  it.Transforms(),
		Sources:     sources,
	}
}

// AddItems groups, decodes and appends a batch of uploads, then renders a
// preview for each new item. A decode failure adds nothing.
func (s *Session) AddItems(ctx context.Context, inputs []service.PhotoInput) (service.Grouping, []ItemView, error) {
	g, err := service.GroupInputs(s.Template, inputs)
	if err != nil {
		return service.Grouping{}, nil, err
	}
	items, err := service.BuildItems(ctx, g, s.decoder)
	if err != nil {
		return g, nil, err
	}

	s.mu.Lock()
	views := make([]ItemView, len(items))
	for i, it := range items {
		s.items = append(s.items, it)
		s.byID[it.ID] = it
		views[i] = viewOf(it)
	}
	s.unused += len(g.Unused)
	s.touch()
	s.mu.Unlock()

	for _, it := range items {
		s.queue.Request(it.ID)
	}
	return g, views, nil
}

// SetActiveFrame routes later pan/zoom edits of itemID to frame. It changes
// no transform and triggers no render.
func (s *Session) SetActiveFrame(itemID string, frame templates.Frame) (ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[itemID]
	if !ok {
		return ItemView{}, ErrUnknownItem
	}
	if err := it.SetActive(frame); err != nil {
		return ItemView{}, err
	}
	s.touch()
	return viewOf(it), nil
}

// ApplyPan moves the active frame of itemID by a pointer delta measured on
// a preview displayedWidth pixels wide.
func (s *Session) ApplyPan(itemID string, dx, dy, displayedWidth float64) (ItemView, error) {
	d, _ := templates.Lookup(s.Template)
	return s.edit(itemID, func(t layout.Transform) layout.Transform {
		return t.Pan(
			layout.DisplayToOutput(dx, d.Width, displayedWidth),
			layout.DisplayToOutput(dy, d.Width, displayedWidth),
		)
	})
}

// ApplyZoom steps the active frame's zoom for one wheel event.
func (s *Session) ApplyZoom(itemID string, wheelDeltaY float64) (ItemView, error) {
	return s.edit(itemID, func(t layout.Transform) layout.Transform {
		return t.Wheel(wheelDeltaY)
	})
}

// edit applies fn to the active transform and re-renders the item.
func (s *Session) edit(itemID string, fn func(layout.Transform) layout.Transform) (ItemView, error) {
	s.mu.Lock()
	it, ok := s.byID[itemID]
	if !ok {
		s.mu.Unlock()
		return ItemView{}, ErrUnknownItem
	}
	it.SetActiveTransform(fn(it.ActiveTransform()))
	view := viewOf(it)
	s.touch()
	s.mu.Unlock()

	s.queue.Request(itemID)
	return view, nil
}

// UpdateData replaces the vehicle fields and export settings and re-renders
// every item.
func (s *Session) UpdateData(data model.VehicleData, settings model.ExportSettings) {
	s.mu.Lock()
	s.data = data
	s.settings = settings
	ids := s.itemIDs()
	s.touch()
	s.mu.Unlock()

	for _, id := range ids {
		s.queue.Request(id)
	}
}

// ClearAll removes every item and its preview.
func (s *Session) ClearAll() {
	s.mu.Lock()
	ids := s.itemIDs()
	s.items = nil
	s.byID = make(map[string]*service.Item)
	s.unused = 0
	s.touch()
	s.mu.Unlock()

	for _, id := range ids {
		s.queue.Forget(id)
	}
}

// Preview returns the latest preview of itemID, rendering one if none
// exists yet.
func (s *Session) Preview(itemID string) (Preview, error) {
	s.mu.Lock()
	_, ok := s.byID[itemID]
	s.mu.Unlock()
	if !ok {
		return Preview{}, ErrUnknownItem
	}

	if p, ok := s.queue.Latest(itemID); ok {
		return p, nil
	}
	s.queue.Request(itemID)
	if p, ok := s.queue.Latest(itemID); ok {
		return p, nil
	}
	return Preview{}, fmt.Errorf("preview of %s not ready", itemID)
}

// Items lists the items in export order.
func (s *Session) Items() []ItemView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]ItemView, len(s.items))
	for i, it := range s.items {
		views[i] = viewOf(it)
	}
	return views
}

// Batch is everything an export needs, copied at one instant.
type Batch struct {
	Template templates.Kind
	Items    []service.ItemSnapshot
	Data     model.VehicleData
	Settings model.ExportSettings
	Unused   int
}

// ExportRequest converts the batch for the export service.
func (b Batch) ExportRequest() service.ExportRequest {
	return service.ExportRequest{
		Template: b.Template,
		Items:    b.Items,
		Data:     b.Data,
		Settings: b.Settings,
		Unused:   b.Unused,
	}
}

// Snapshot copies the session's current state for an export.
func (s *Session) Snapshot() Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps := make([]service.ItemSnapshot, len(s.items))
	for i, it := range s.items {
		snaps[i] = it.Snapshot()
	}
	return Batch{
		Template: s.Template,
		Items:    snaps,
		Data:     s.data,
		Settings: s.settings,
		Unused:   s.unused,
	}
}

// Data returns the current vehicle fields and export settings.
func (s *Session) Data() (model.VehicleData, model.ExportSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.settings
}

func (s *Session) itemIDs() []string {
	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID
	}
	return ids
}

// touch must be called with s.mu held.
func (s *Session) touch() {
	s.touched = time.Now()
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
