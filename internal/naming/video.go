package naming

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Stream is the subset of a probed video stream used for naming.
type Stream struct {
	CodecName  string
	Profile    string
	Width      int
	Height     int
	RFrameRate string
}

// VideoRecord holds the probed attributes of a video file.
// ModTime is the file's modification time: container capture times are too
// unreliable across vendors to be used for naming.
type VideoRecord struct {
	ModTime     time.Time
	FormatTags  map[string]string
	VideoStream *Stream
}

// deviceModelTags are the container tags checked, in order, for the
// recording device.
var deviceModelTags = []string{"model", "Make", "DeviceModelName", "CameraModelName", "ProductModel"}

// PanasonicMetadataTag carries an XML document with the camera model on
// Panasonic pro camcorders.
const PanasonicMetadataTag = "com.panasonic.Semi-Pro.metadata.xml"

// NormalizeVideo formats the selected video fields in canonical order.
func NormalizeVideo(rec VideoRecord, sel Selection) (Parts, []Warning) {
	var parts Parts
	var warnings []Warning

	if sel.Has(FieldDateTime) && !rec.ModTime.IsZero() {
		parts = parts.Add(FieldDateTime, FormatTime(rec.ModTime))
	}

	if sel.Has(FieldDevice) {
		model, warn := VideoDevice(rec.FormatTags)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		parts = parts.Add(FieldDevice, CompactName(model))
	}

	s := rec.VideoStream
	if s == nil {
		return parts, warnings
	}

	if sel.Has(FieldResolution) && s.Width > 0 && s.Height > 0 {
		parts = parts.Add(FieldResolution, fmt.Sprintf("%dx%d", s.Width, s.Height))
	}

	if sel.Has(FieldFrameRate) && s.RFrameRate != "" {
		rate, err := FormatFrameRate(s.RFrameRate)
		if err != nil {
			warnings = append(warnings, Warning{Field: FieldFrameRate, Raw: s.RFrameRate, Err: err})
		} else {
			parts = parts.Add(FieldFrameRate, rate)
		}
	}

	if sel.Has(FieldCodec) {
		parts = parts.Add(FieldCodec, VideoCodec(s, rec.FormatTags))
	}

	return parts, warnings
}

// VideoDevice finds the recording device among the container tags, falling
// back to any element named like "*Model*" inside an embedded XML document.
// A non-nil warning means an embedded document existed but was unreadable.
func VideoDevice(tags map[string]string) (string, *Warning) {
	for _, tag := range deviceModelTags {
		if v := strings.TrimSpace(tags[tag]); v != "" {
			return v, nil
		}
	}

	for _, key := range xmlTagKeys(tags) {
		model, err := ModelFromXML(tags[key])
		if err != nil {
			return "", &Warning{Field: FieldDevice, Raw: key, Err: err}
		}
		if model != "" {
			return model, nil
		}
	}
	return "", nil
}

// xmlTagKeys returns the known XML metadata tag first, then any other tag
// whose key ends in ".xml", sorted.
func xmlTagKeys(tags map[string]string) []string {
	var keys []string
	if _, ok := tags[PanasonicMetadataTag]; ok {
		keys = append(keys, PanasonicMetadataTag)
	}
	var others []string
	for k := range tags {
		if k != PanasonicMetadataTag && strings.HasSuffix(strings.ToLower(k), ".xml") {
			others = append(others, k)
		}
	}
	sort.Strings(others)
	return append(keys, others...)
}

// ModelFromXML returns the text of the first element whose name contains
// "Model" and whose text is not blank.
func ModelFromXML(doc string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	inModel := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("parse embedded xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inModel = strings.Contains(t.Name.Local, "Model")
		case xml.CharData:
			if inModel {
				if text := strings.TrimSpace(string(t)); text != "" {
					return text, nil
				}
			}
		case xml.EndElement:
			inModel = false
		}
	}
}

// FormatFrameRate renders an ffprobe rational such as "30000/1001" as
// "29.97". A zero rate or zero denominator yields "" and no error.
func FormatFrameRate(raw string) (string, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return "", fmt.Errorf("not a rational")
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", fmt.Errorf("parse numerator: %w", err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return "", fmt.Errorf("parse denominator: %w", err)
	}
	if d == 0 || n == 0 {
		return "", nil
	}
	return strconv.FormatFloat(float64(n)/float64(d), 'f', 2, 64), nil
}

// VideoCodec prefers "<codec>_<profile>", then a container tag mentioning
// "codec" or "encoding", then the bare codec name.
func VideoCodec(s *Stream, tags map[string]string) string {
	if s.CodecName != "" && s.Profile != "" {
		return s.CodecName + "_" + s.Profile
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, keyword := range []string{"codec", "encoding"} {
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), keyword) {
				if v := strings.TrimSpace(tags[k]); v != "" {
					return v
				}
			}
		}
	}

	return s.CodecName
}
