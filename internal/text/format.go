// Package text measures and draws the vehicle copy on a template: adaptive
// font sizing, outlined text, and the small formatting rules for the fields.
package text

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Upper trims and uppercases a free-form field.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CleanSpaces collapses whitespace runs to a single space and trims.
func CleanSpaces(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// FormatKm renders an odometer value with "." thousands separators:
// 165000 -> "165.000". Non-positive or non-finite values render as "".
func FormatKm(km float64) string {
	if math.IsNaN(km) || math.IsInf(km, 0) || km <= 0 {
		return ""
	}
	digits := strconv.FormatFloat(math.Round(km), 'f', 0, 64)

	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := max(0, i-3)
		groups = append([]string{digits[start:i]}, groups...)
	}
	return strings.Join(groups, ".")
}

// FormatKmPtr is FormatKm for an optional value; nil renders as "".
func FormatKmPtr(km *float64) string {
	if km == nil {
		return ""
	}
	return FormatKm(*km)
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// OrBlank returns s, or a single space when s is empty. Empty lines still
// occupy their slot so the vertical rhythm of a layout never shifts.
func OrBlank(s string) string {
	if s == "" {
		return " "
	}
	return s
}
