package text

// Weight is a CSS-style numeric font weight (400 regular, 700 bold, 900 black).
type Weight int

const (
	WeightRegular  Weight = 400
	WeightSemibold Weight = 650
	WeightBold     Weight = 700
	WeightBlack    Weight = 900
)

// DefaultFamily is the family used when a layout doesn't ask for one.
const DefaultFamily = "sans"

// FaceSpec identifies a concrete font face at a pixel size.
type FaceSpec struct {
	Family string
	Weight Weight
	Size   float64
}

// Measurer returns the advance width of text drawn with the given face.
//
// Implementations must be monotonic: for fixed text, family and weight the
// width never decreases as Size grows. FitText's binary search relies on it.
type Measurer interface {
	Measure(text string, spec FaceSpec) float64
}

// FitText finds the largest integer font size in [minSize, maxSize] whose
// rendered width fits maxWidth. If not even minSize fits, minSize is returned.
func FitText(m Measurer, s string, maxWidth float64, maxSize, minSize int, family string, weight Weight) int {
	if s == "" {
		s = " "
	}
	if family == "" {
		family = DefaultFamily
	}

	lo, hi := minSize, maxSize
	best := minSize
	for lo <= hi {
		mid := lo + (hi-lo)/2
		w := m.Measure(s, FaceSpec{Family: family, Weight: weight, Size: float64(mid)})
		if w <= maxWidth {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}
