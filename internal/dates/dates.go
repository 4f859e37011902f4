// Package dates is the single conversion point between the canonical
// stored date form (ISO 2006-01-02) and the locale display form
// (02/01/2006). Storage and display formats must never mix outside it.
package dates

import (
	"fmt"
	"time"
)

const (
	// Canonical is the storage layout for every date-kind field.
	Canonical = "2006-01-02"
	// Display is the UK locale layout used on forms, views, and exports.
	Display = "02/01/2006"
)

// ParseInput normalises a user-entered date to the canonical form.
// Both the display layout and an already-canonical value are accepted;
// the empty string passes through unchanged.
func ParseInput(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(Display, s); err == nil {
		return t.Format(Canonical), nil
	}
	if t, err := time.Parse(Canonical, s); err == nil {
		return t.Format(Canonical), nil
	}
	return "", fmt.Errorf("dates: unrecognised date %q", s)
}

// Format renders a canonical value in the display layout. Values that do
// not parse (historic free-text data) are returned as-is rather than lost.
func Format(canonical string) string {
	if canonical == "" {
		return ""
	}
	t, err := time.Parse(Canonical, canonical)
	if err != nil {
		return canonical
	}
	return t.Format(Display)
}

// Today returns the current date in canonical form.
func Today() string {
	return time.Now().Format(Canonical)
}
