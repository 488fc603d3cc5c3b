package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ExifTimeLayout is the timestamp layout used by EXIF DateTimeOriginal.
const ExifTimeLayout = "2006:01:02 15:04:05"

// NameTimeLayout is the layout of the datetime part of a synthesized name.
const NameTimeLayout = "2006-01-02_15.04.05"

// PhotoRecord holds the still-image attributes that feed a filename.
// A nil field means the attribute was absent from the file.
type PhotoRecord struct {
	DateTimeOriginal *string
	Model            *string
	LensModel        *string
	LensType         *string
	FocalLength      *string
	ExposureTime     *string
	FNumber          *string
	ISOSpeedRatings  *string
	ISO              *string
}

// PhotoRecordFromAttributes builds a PhotoRecord from an exiftool-style
// attribute map. Values may be strings or numbers; anything that renders to
// an empty string is treated as absent.
func PhotoRecordFromAttributes(attrs map[string]any) PhotoRecord {
	return PhotoRecord{
		DateTimeOriginal: attrString(attrs, "DateTimeOriginal"),
		Model:            attrString(attrs, "Model"),
		LensModel:        attrString(attrs, "LensModel"),
		LensType:         attrString(attrs, "LensType"),
		FocalLength:      attrString(attrs, "FocalLength"),
		ExposureTime:     attrString(attrs, "ExposureTime"),
		FNumber:          attrString(attrs, "FNumber"),
		ISOSpeedRatings:  attrString(attrs, "ISOSpeedRatings"),
		ISO:              attrString(attrs, "ISO"),
	}
}

func attrString(attrs map[string]any, key string) *string {
	v, ok := attrs[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizePhoto formats the selected photo fields in canonical order.
// Fields that are absent are skipped silently; fields that are present but
// malformed are skipped and reported as warnings.
func NormalizePhoto(rec PhotoRecord, sel Selection) (Parts, []Warning) {
	var parts Parts
	var warnings []Warning

	add := func(f Field, raw *string, format func(string) (string, error)) {
		if !sel.Has(f) || raw == nil {
			return
		}
		v, err := format(*raw)
		if err != nil {
			warnings = append(warnings, Warning{Field: f, Raw: *raw, Err: err})
			return
		}
		parts = parts.Add(f, v)
	}

	add(FieldDateTime, rec.DateTimeOriginal, FormatExifTime)
	add(FieldDevice, rec.Model, formatCompact)
	add(FieldLens, firstPresent(rec.LensModel, rec.LensType), formatCompact)
	add(FieldFocalLength, rec.FocalLength, FormatFocalLength)
	add(FieldExposure, rec.ExposureTime, FormatExposure)
	add(FieldAperture, rec.FNumber, FormatAperture)
	add(FieldISO, firstPresent(rec.ISOSpeedRatings, rec.ISO), FormatISO)

	return parts, warnings
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

// FormatExifTime converts "2006:01:02 15:04:05" into "2006-01-02_15.04.05".
func FormatExifTime(raw string) (string, error) {
	t, err := time.Parse(ExifTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse capture time: %w", err)
	}
	return FormatTime(t), nil
}

// FormatTime renders t as the datetime name part.
func FormatTime(t time.Time) string {
	return t.Format(NameTimeLayout)
}

// CompactName trims a device or lens name and drops all whitespace inside it.
func CompactName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func formatCompact(raw string) (string, error) {
	return CompactName(raw), nil
}

// FormatFocalLength turns "50.0 mm" into "50mm" and "4.25 mm" into "4.2mm".
func FormatFocalLength(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", errors.New("empty focal length")
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "mm"), 64)
	if err != nil {
		return "", fmt.Errorf("parse focal length: %w", err)
	}
	return trimDecimal(strconv.FormatFloat(v, 'f', 1, 64)) + "mm", nil
}

// FormatExposure renders an exposure time:
//   - "1/250" → "1:250s"
//   - "2.0"   → "2s"
//   - "0.0025" → "0.003s"
func FormatExposure(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if num, den, ok := strings.Cut(raw, "/"); ok {
		num, den = strings.TrimSpace(num), strings.TrimSpace(den)
		if num == "" || den == "" || strings.Contains(den, "/") {
			return "", fmt.Errorf("malformed fraction")
		}
		return num + ":" + den + "s", nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("parse exposure time: %w", err)
	}
	if v >= 1.0 {
		return strconv.FormatFloat(v, 'f', 0, 64) + "s", nil
	}
	return trimDecimal(strconv.FormatFloat(v, 'f', 3, 64)) + "s", nil
}

// FormatAperture prefixes the f-number with "F", keeping its source precision.
func FormatAperture(raw string) (string, error) {
	return "F" + strings.TrimSpace(raw), nil
}

// FormatISO prefixes the sensitivity with "ISO".
func FormatISO(raw string) (string, error) {
	return "ISO" + strings.TrimSpace(raw), nil
}

// trimDecimal strips trailing zeros and then a trailing point from a
// fixed-point number string.
func trimDecimal(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
