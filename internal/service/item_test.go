package service

import (
	"errors"
	"image"
	"testing"

	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/templates"
)

func historiaItem(t *testing.T) *Item {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	it, err := NewItem(templates.Historia, "auto", []Slot{{Image: img}, {Image: img}, {Image: img}})
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}
	return it
}

func TestNewItem_Arity(t *testing.T) {
	if _, err := NewItem(templates.Historia, "x", []Slot{{}}); err == nil {
		t.Error("historia with one slot should be rejected")
	}
	if _, err := NewItem(templates.Portada, "x", []Slot{{}, {}}); err == nil {
		t.Error("portada with two slots should be rejected")
	}

	it := historiaItem(t)
	if it.ID == "" {
		t.Error("expected an id")
	}
	if it.Active != templates.FrameMain {
		t.Errorf("expected main frame active, got %s", it.Active)
	}
	for i, tr := range it.Transforms() {
		if tr != layout.Identity() {
			t.Errorf("slot %d should start at identity, got %+v", i, tr)
		}
	}
}

func TestItem_SetActiveKeepsTransforms(t *testing.T) {
	it := historiaItem(t)
	it.SetActiveTransform(layout.Transform{Zoom: 1.5, PanX: 12, PanY: -4})
	before := it.Transforms()

	for _, f := range []templates.Frame{templates.FrameBottomRight, templates.FrameBottomLeft, templates.FrameMain} {
		if err := it.SetActive(f); err != nil {
			t.Fatalf("SetActive(%s): %v", f, err)
		}
		after := it.Transforms()
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("switching to %s changed slot %d: %+v -> %+v", f, i, before[i], after[i])
			}
		}
	}

	if err := it.SetActive(templates.FrameBottomLeft); err != nil {
		t.Fatal(err)
	}
	it.SetActiveTransform(layout.Transform{Zoom: 2, PanX: 1})
	got := it.Transforms()
	if got[templates.FrameMain] != before[templates.FrameMain] {
		t.Error("edit after switching should not touch the main frame")
	}
	if got[templates.FrameBottomLeft].Zoom != 2 {
		t.Error("edit after switching should land on the new active frame")
	}
}

func TestItem_SetActiveOutOfRange(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	it, err := NewItem(templates.Portada, "x", []Slot{{Image: img}})
	if err != nil {
		t.Fatal(err)
	}
	if err := it.SetActive(templates.FrameBottomLeft); !errors.Is(err, ErrNoSuchFrame) {
		t.Errorf("portada has no bottom-left frame, got %v", err)
	}
}

func TestItem_SnapshotIsACopy(t *testing.T) {
	it := historiaItem(t)
	snap := it.Snapshot()

	it.SetActiveTransform(layout.Transform{Zoom: 2.2, PanX: 50})

	if snap.Photos[0].Transform != layout.Identity() {
		t.Errorf("snapshot changed after edit: %+v", snap.Photos[0].Transform)
	}
	if snap.Name != "auto" || snap.Template != templates.Historia || len(snap.Photos) != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
