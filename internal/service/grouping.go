package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fleveque/ficha-service/internal/templates"
)

// ErrInsufficientInput matches any InsufficientInputError with errors.Is.
var ErrInsufficientInput = errors.New("not enough photos")

// InsufficientInputError means a batch had fewer photos than the template
// needs for a single item. Nothing is rendered.
type InsufficientInputError struct {
	Template templates.Kind
	Required int
	Got      int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("%s needs at least %d photo(s), got %d", e.Template, e.Required, e.Got)
}

// Is lets errors.Is(err, ErrInsufficientInput) match.
func (e *InsufficientInputError) Is(target error) bool {
	return target == ErrInsufficientInput
}

// PhotoInput is a raw upload: its original filename and undecoded bytes.
type PhotoInput struct {
	Filename string
	Data     []byte
}

// Grouping is the result of splitting a batch into items.
type Grouping struct {
	Template templates.Kind
	Groups   [][]PhotoInput
	Unused   []PhotoInput
}

// Used returns how many inputs ended up in a group.
func (g Grouping) Used() int {
	n := 0
	for _, grp := range g.Groups {
		n += len(grp)
	}
	return n
}

// Summary is the status line shown after an upload.
func (g Grouping) Summary() string {
	total := g.Used() + len(g.Unused)
	if g.Template != templates.Historia {
		return fmt.Sprintf("%d image(s) loaded, %d item(s)", total, len(g.Groups))
	}
	s := fmt.Sprintf("%d image(s) loaded, historia uses 3 per banner: %d banner(s)", total, len(g.Groups))
	if len(g.Unused) > 0 {
		s += fmt.Sprintf(" (%d left unused)", len(g.Unused))
	}
	return s
}

// GroupInputs splits inputs into runs of the template's arity, in arrival
// order. A trailing partial run is reported as unused, not rendered.
func GroupInputs(k templates.Kind, inputs []PhotoInput) (Grouping, error) {
	d, ok := templates.Lookup(k)
	if !ok {
		return Grouping{}, fmt.Errorf("unknown template %q", k)
	}
	if len(inputs) < d.Arity || len(inputs) == 0 {
		return Grouping{}, &InsufficientInputError{Template: k, Required: d.Arity, Got: len(inputs)}
	}

	n := len(inputs) / d.Arity
	g := Grouping{Template: k, Groups: make([][]PhotoInput, 0, n)}
	for i := 0; i < n; i++ {
		g.Groups = append(g.Groups, inputs[i*d.Arity:(i+1)*d.Arity])
	}
	if rest := inputs[n*d.Arity:]; len(rest) > 0 {
		g.Unused = rest
	}
	return g, nil
}

const (
	maxNameLength = 60
	fallbackName  = "imagen"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9\-_]+`)
	underscoreRun   = regexp.MustCompile(`_+`)
)

// SafeName derives an output base name from an upload's filename: the
// extension is dropped, the rest lowercased and reduced to [a-z0-9_-].
func SafeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	s := strings.ToLower(base)
	s = unsafeNameChars.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.TrimPrefix(s, "_")
	s = strings.TrimSuffix(s, "_")
	if len(s) > maxNameLength {
		s = s[:maxNameLength]
	}
	if s == "" {
		return fallbackName
	}
	return s
}
