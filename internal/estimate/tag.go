// Package estimate derives chromosome size estimates from the areas of
// segmented karyotype regions.
package estimate

import (
	"strconv"

	"kics/internal/chromosome"
)

// Tag identifies what a region shows. It is either a chromosome label or
// free text, e.g. "X" or "debris".
type Tag struct {
	label   chromosome.Label
	text    string
	isLabel bool
}

// LabelTag wraps a chromosome label.
func LabelTag(l chromosome.Label) Tag {
	return Tag{label: l, isLabel: true}
}

// TextTag wraps free text.
func TextTag(s string) Tag {
	return Tag{text: s}
}

// ParseTag returns a label tag if s parses as a chromosome label and a text
// tag otherwise.
func ParseTag(s string) Tag {
	if l, err := chromosome.ParseLabel(s); err == nil {
		return LabelTag(l)
	}
	return TextTag(s)
}

// Label returns the chromosome label, if the tag holds one.
func (t Tag) Label() (chromosome.Label, bool) {
	return t.label, t.isLabel
}

// String renders the label or returns the text.
func (t Tag) String() string {
	if t.isLabel {
		return t.label.String()
	}
	return t.text
}

// Key groups regions belonging to the same chromosome: the undecorated
// major number for labels, the text otherwise.
func (t Tag) Key() string {
	if t.isLabel {
		return strconv.Itoa(t.label.Major)
	}
	return t.text
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	*t = ParseTag(string(b))
	return nil
}
