package card

import (
	"fmt"
	"slices"
	"strings"
)

// ColorIdentity is the comma-joined set of color letters from an export row,
// e.g. "B, G". The empty identity is colorless.
type ColorIdentity string

var colorLetters = map[string]struct{}{
	"W": {}, "U": {}, "B": {}, "R": {}, "G": {},
}

// IsColorLetter reports whether s is one of W, U, B, R, G.
func IsColorLetter(s string) bool {
	_, ok := colorLetters[s]
	return ok
}

// ParseColorIdentity validates a raw identity cell. Letters outside WUBRG are
// rejected; surrounding whitespace is ignored.
func ParseColorIdentity(s string) (ColorIdentity, error) {
	for _, l := range SplitList(s) {
		if !IsColorLetter(l) {
			return "", fmt.Errorf("invalid color %q in identity %q", l, s)
		}
	}
	return ColorIdentity(strings.TrimSpace(s)), nil
}

// Letters returns the distinct color letters of the identity in input order.
func (c ColorIdentity) Letters() []string {
	var out []string
	for _, l := range SplitList(string(c)) {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}

// Key returns the canonical form used by the label tables: distinct letters
// sorted alphabetically and joined with ", " ("W, U" and "U,W" both become
// "U, W"). Colorless is "".
func (c ColorIdentity) Key() string {
	letters := c.Letters()
	slices.Sort(letters)
	return strings.Join(letters, ListSeparator)
}
