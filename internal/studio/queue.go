package studio

import (
	"fmt"
	"sync"

	"github.com/fleveque/ficha-service/internal/model"
)

// Preview is the latest render of an item.
type Preview struct {
	Result *model.RenderResult
	Err    error
	// Revision counts completed renders of the item, starting at 1.
	Revision uint64
}

// RenderFunc renders the current state of an item. It must take its own
// snapshot of the item's transforms when called.
type RenderFunc func(itemID string) (*model.RenderResult, error)

// PreviewQueue serializes re-renders per item with "latest edit wins":
// at most one render per item is in flight, and requests arriving while it
// runs collapse into a single follow-up render that sees the newest state.
// Renders of different items never wait on each other.
type PreviewQueue struct {
	render RenderFunc

	mu    sync.Mutex
	slots map[string]*previewSlot
}

type previewSlot struct {
	running bool
	dirty   bool
	latest  Preview
}

// NewPreviewQueue creates a queue rendering with fn.
func NewPreviewQueue(fn RenderFunc) *PreviewQueue {
	return &PreviewQueue{render: fn, slots: make(map[string]*previewSlot)}
}

// Request asks for a fresh preview of itemID. If a render for the item is
// already running, the request is folded into it and Request returns false
// immediately. Otherwise the caller runs renders until no newer request is
// pending and Request returns true.
func (q *PreviewQueue) Request(itemID string) bool {
	q.mu.Lock()
	slot, ok := q.slots[itemID]
	if !ok {
		slot = &previewSlot{}
		q.slots[itemID] = slot
	}
	if slot.running {
		slot.dirty = true
		q.mu.Unlock()
		return false
	}
	slot.running = true
	q.mu.Unlock()

	for {
		res, err := q.renderSafe(itemID)

		q.mu.Lock()
		if q.slots[itemID] != slot {
			// Forgotten while rendering; drop the result.
			q.mu.Unlock()
			return true
		}
		slot.latest = Preview{Result: res, Err: err, Revision: slot.latest.Revision + 1}
		if !slot.dirty {
			slot.running = false
			q.mu.Unlock()
			return true
		}
		slot.dirty = false
		q.mu.Unlock()
	}
}

// renderSafe turns a panicking render into an error so the slot is never
// left running.
func (q *PreviewQueue) renderSafe(itemID string) (res *model.RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("rendering %s: panic: %v", itemID, r)
		}
	}()
	return q.render(itemID)
}

// Latest returns the newest completed preview of itemID.
func (q *PreviewQueue) Latest(itemID string) (Preview, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	slot, ok := q.slots[itemID]
	if !ok || slot.latest.Revision == 0 {
		return Preview{}, false
	}
	return slot.latest, true
}

// Forget drops all state for itemID. A render in flight finishes but its
// result is discarded.
func (q *PreviewQueue) Forget(itemID string) {
	q.mu.Lock()
	delete(q.slots, itemID)
	q.mu.Unlock()
}
