// Package naming turns extracted media metadata into filenames.
//
// It covers three stages of the rename engine:
//   - Normalization: typed photo/video records → ordered, formatted name parts
//   - Synthesis: joining parts with a separator token and sanitizing the result
//   - Collision resolution: picking a final name that is free in the directory
//
// Everything here is pure apart from Resolver, which reads the live directory
// listing on every call.
package naming

import (
	"fmt"
	"sort"
	"strings"
)

// Field identifies one semantic component of a synthesized filename.
// The numeric order of the constants is the canonical order of the parts.
type Field int

const (
	FieldDateTime Field = iota
	FieldDevice
	FieldLens
	FieldFocalLength
	FieldExposure
	FieldAperture
	FieldISO
	FieldResolution
	FieldFrameRate
	FieldCodec
	FieldDescription

	numFields
)

var fieldNames = [numFields]string{
	FieldDateTime:    "datetime",
	FieldDevice:      "device",
	FieldLens:        "lens",
	FieldFocalLength: "focal",
	FieldExposure:    "exposure",
	FieldAperture:    "aperture",
	FieldISO:         "iso",
	FieldResolution:  "resolution",
	FieldFrameRate:   "framerate",
	FieldCodec:       "codec",
	FieldDescription: "description",
}

// String returns the flag-friendly name of the field.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField looks up a field by its name (case-insensitive).
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q (valid: %s)", name, strings.Join(fieldNames[:], ", "))
}

// Selection is the set of fields a user wants in the filename.
// It says nothing about whether the metadata for a field is present.
type Selection uint16

// NewSelection returns a Selection containing the given fields.
func NewSelection(fields ...Field) Selection {
	var s Selection
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// Default selections mirror the fields each media kind can produce.
// Description is opt-in and never part of a default.
var (
	PhotoFields = NewSelection(FieldDateTime, FieldDevice, FieldLens, FieldFocalLength,
		FieldExposure, FieldAperture, FieldISO)
	VideoFields = NewSelection(FieldDateTime, FieldDevice, FieldResolution, FieldFrameRate, FieldCodec)
)

// Has reports whether f is enabled.
func (s Selection) Has(f Field) bool {
	if f < 0 || f >= numFields {
		return false
	}
	return s&(1<<uint(f)) != 0
}

// With returns a copy of s with f enabled.
func (s Selection) With(f Field) Selection {
	if f < 0 || f >= numFields {
		return s
	}
	return s | 1<<uint(f)
}

// Without returns a copy of s with f disabled.
func (s Selection) Without(f Field) Selection {
	if f < 0 || f >= numFields {
		return s
	}
	return s &^ (1 << uint(f))
}

// Fields lists the enabled fields in canonical order.
func (s Selection) Fields() []Field {
	var out []Field
	for f := Field(0); f < numFields; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the selection as a comma-separated list of field names.
func (s Selection) String() string {
	fields := s.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

// ParseSelection parses a comma-separated list of field names.
// Blank entries are ignored so "datetime,,device" is accepted.
func ParseSelection(list string) (Selection, error) {
	var s Selection
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := ParseField(name)
		if err != nil {
			return 0, err
		}
		s = s.With(f)
	}
	return s, nil
}

// Part is one formatted filename component.
type Part struct {
	Field Field
	Value string
}

// Parts is an ordered list of filename components, kept in canonical field
// order so that the same metadata always yields the same base name.
type Parts []Part

// Add inserts a part at its canonical position. Empty values are dropped.
func (p Parts) Add(f Field, value string) Parts {
	if value == "" {
		return p
	}
	i := sort.Search(len(p), func(i int) bool { return p[i].Field > f })
	p = append(p, Part{})
	copy(p[i+1:], p[i:])
	p[i] = Part{Field: f, Value: value}
	return p
}

// Values returns the formatted strings in order.
func (p Parts) Values() []string {
	out := make([]string, len(p))
	for i, part := range p {
		out[i] = part.Value
	}
	return out
}

// Warning records a metadata field that was present but could not be
// formatted. Warnings are informational; the field is simply left out.
type Warning struct {
	Field Field
	Raw   string
	Err   error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s %q: %v", w.Field, w.Raw, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}
