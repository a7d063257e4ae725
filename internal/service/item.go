package service

import (
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/templates"
)

// ErrNoSuchFrame is returned when a frame is outside the item's template.
var ErrNoSuchFrame = errors.New("no such frame")

// Slot is one photo position of an item and the user's pan/zoom for it.
type Slot struct {
	Image     image.Image
	Transform layout.Transform
	Source    string // original filename, for logs
}

// Item is the unit of export. Template is the variant tag; Slots has exactly
// the template's arity (1 for Portada and VideoSlide, 3 for Historia,
// indexed by templates.Frame).
//
// Items are not safe for concurrent use; the studio serializes access.
type Item struct {
	ID       string
	Template templates.Kind
	Name     string
	Slots    []Slot
	Active   templates.Frame
}

// NewItem builds an item for template k from decoded photos.
func NewItem(k templates.Kind, name string, slots []Slot) (*Item, error) {
	d, ok := templates.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", k)
	}
	if len(slots) != d.Arity {
		return nil, fmt.Errorf("%s items take %d photo(s), got %d", k, d.Arity, len(slots))
	}
	for i := range slots {
		if slots[i].Transform.Zoom == 0 {
			slots[i].Transform = layout.Identity()
		}
	}
	return &Item{
		ID:       uuid.NewString(),
		Template: k,
		Name:     name,
		Slots:    slots,
		Active:   templates.FrameMain,
	}, nil
}

// SetActive routes later edits to frame f. Transforms are left untouched.
func (it *Item) SetActive(f templates.Frame) error {
	if f < 0 || int(f) >= len(it.Slots) {
		return fmt.Errorf("%s items have no %s frame: %w", it.Template, f, ErrNoSuchFrame)
	}
	it.Active = f
	return nil
}

// ActiveTransform returns the transform edits currently apply to.
func (it *Item) ActiveTransform() layout.Transform {
	return it.Slots[it.Active].Transform
}

// SetActiveTransform replaces the active slot's transform.
func (it *Item) SetActiveTransform(t layout.Transform) {
	it.Slots[it.Active].Transform = t
}

// Transforms copies every slot's transform, in frame order.
func (it *Item) Transforms() []layout.Transform {
	out := make([]layout.Transform, len(it.Slots))
	for i, s := range it.Slots {
		out[i] = s.Transform
	}
	return out
}

// ItemSnapshot is an immutable copy of what a render reads. Images are
// shared (they are never mutated after decode); transforms are copied.
type ItemSnapshot struct {
	ID       string
	Template templates.Kind
	Name     string
	Photos   []templates.Photo
}

// Snapshot copies the item's render inputs.
func (it *Item) Snapshot() ItemSnapshot {
	photos := make([]templates.Photo, len(it.Slots))
	for i, s := range it.Slots {
		photos[i] = templates.Photo{Image: s.Image, Transform: s.Transform}
	}
	return ItemSnapshot{
		ID:       it.ID,
		Template: it.Template,
		Name:     it.Name,
		Photos:   photos,
	}
}
