package text

import (
	"image/color"
	"testing"

	"github.com/fogleman/gg"
)

// linearMeasurer pretends every rune is 0.6em wide and records the sizes it
// was asked about.
type linearMeasurer struct {
	calls []float64
}

func (m *linearMeasurer) Measure(s string, spec FaceSpec) float64 {
	m.calls = append(m.calls, spec.Size)
	return float64(len([]rune(s))) * 0.6 * spec.Size
}

func TestFitText_LargestFittingSize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		maxSize  int
		minSize  int
		want     int
	}{
		// 10 runes * 0.6 = 6px per size unit
		{"fits at max", "ABCDEFGHIJ", 1000, 120, 64, 120},
		{"fits in between", "ABCDEFGHIJ", 500, 120, 64, 83},
		{"nothing fits", "ABCDEFGHIJ", 100, 120, 64, 64},
		{"exact boundary", "ABCDEFGHIJ", 600, 120, 64, 100},
		{"single size range", "AB", 10, 44, 44, 44},
		{"empty text uses a space", "", 30, 78, 44, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &linearMeasurer{}
			got := FitText(m, tt.text, tt.maxWidth, tt.maxSize, tt.minSize, "", WeightBlack)
			if got != tt.want {
				t.Errorf("FitText = %d, want %d", got, tt.want)
			}
			if got < tt.minSize || got > tt.maxSize {
				t.Errorf("FitText = %d outside [%d, %d]", got, tt.minSize, tt.maxSize)
			}
		})
	}
}

func TestFitText_ResultIsMaximalAmongTested(t *testing.T) {
	m := &linearMeasurer{}
	s := "VOLKSWAGEN AMAROK V6 HIGHLINE"
	maxWidth := 920.0
	got := FitText(m, s, maxWidth, 120, 64, "", WeightBlack)

	if w := m.Measure(s, FaceSpec{Size: float64(got)}); w > maxWidth && got != 64 {
		t.Fatalf("returned size %d measures %.1f > %.1f", got, w, maxWidth)
	}
	for _, size := range m.calls {
		if int(size) > got && m.Measure(s, FaceSpec{Size: size}) <= maxWidth {
			t.Errorf("tested size %v fits but a smaller %d was returned", size, got)
		}
	}
}

func TestFitText_BinarySearchIsLogarithmic(t *testing.T) {
	m := &linearMeasurer{}
	FitText(m, "HILUX", 300, 120, 64, "", WeightBlack)
	if len(m.calls) > 7 {
		t.Errorf("expected at most 7 measurements for 57 candidates, got %d", len(m.calls))
	}
}

func TestFontManager_MeasureIsMonotonic(t *testing.T) {
	fm, err := NewFontManager(FontPaths{}, nil)
	if err != nil {
		t.Fatalf("creating font manager: %v", err)
	}

	prev := 0.0
	for size := 10; size <= 130; size++ {
		w := fm.Measure("Toyota Corolla 2.0 XEI", FaceSpec{Weight: WeightBlack, Size: float64(size)})
		if w < prev {
			t.Fatalf("width decreased from %.2f to %.2f at size %d", prev, w, size)
		}
		prev = w
	}
}

func TestFontManager_FitTextWithRealFont(t *testing.T) {
	fm, err := NewFontManager(FontPaths{}, nil)
	if err != nil {
		t.Fatalf("creating font manager: %v", err)
	}

	const maxWidth = 920.0
	s := "CHEVROLET S10 HIGH COUNTRY 4X4"
	size := FitText(fm, s, maxWidth, 120, 64, "", WeightBlack)
	if size < 64 || size > 120 {
		t.Fatalf("size %d out of range", size)
	}
	if size > 64 && fm.Measure(s, FaceSpec{Weight: WeightBlack, Size: float64(size)}) > maxWidth {
		t.Errorf("size %d does not fit", size)
	}
	if size < 120 && fm.Measure(s, FaceSpec{Weight: WeightBlack, Size: float64(size + 1)}) <= maxWidth {
		t.Errorf("size %d is not the largest fitting size", size)
	}
}

func TestFontManager_MissingCustomFontFallsBack(t *testing.T) {
	fm, err := NewFontManager(FontPaths{Bold: "/does/not/exist.ttf"}, nil)
	if err != nil {
		t.Fatalf("expected fallback to embedded font, got error: %v", err)
	}
	if w := fm.Measure("abc", FaceSpec{Weight: WeightBold, Size: 40}); w <= 0 {
		t.Errorf("expected positive width from fallback font, got %v", w)
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		w    Weight
		want Style
	}{
		{WeightRegular, StyleRegular},
		{WeightSemibold, StyleMedium},
		{WeightBold, StyleBold},
		{WeightBlack, StyleBold},
	}
	for _, tt := range tests {
		if got := StyleFor(tt.w); got != tt.want {
			t.Errorf("StyleFor(%d) = %v, want %v", tt.w, got, tt.want)
		}
	}
}

func TestStrokeFill_DrawsOutlineAndFill(t *testing.T) {
	fm, err := NewFontManager(FontPaths{}, nil)
	if err != nil {
		t.Fatalf("creating font manager: %v", err)
	}
	face, err := fm.Face(FaceSpec{Weight: WeightBlack, Size: 48})
	if err != nil {
		t.Fatalf("creating face: %v", err)
	}
	defer face.Close()

	dc := gg.NewContext(400, 120)
	dc.SetColor(color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	dc.Clear()

	StrokeFill(dc, face, "HILUX", 200, 80, DefaultStrokeFill())

	var white, dark int
	img := dc.Image()
	for y := 0; y < 120; y++ {
		for x := 0; x < 400; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			switch {
			case r > 0xF000 && g > 0xF000 && b > 0xF000:
				white++
			case r < 0x3000 && g < 0x3000 && b < 0x3000:
				dark++
			}
		}
	}
	if white == 0 {
		t.Error("expected white fill pixels")
	}
	if dark == 0 {
		t.Error("expected dark outline pixels")
	}
}

func TestAnchor(t *testing.T) {
	if ax, ay := Anchor(AlignRight, BaselineMiddle); ax != 1 || ay != 0.5 {
		t.Errorf("right/middle: got (%v,%v)", ax, ay)
	}
	if ax, ay := Anchor(AlignCenter, BaselineAlphabetic); ax != 0.5 || ay != 0 {
		t.Errorf("center/alphabetic: got (%v,%v)", ax, ay)
	}
}
