package naming

import (
	"reflect"
	"testing"
	"time"
)

func TestFormatFrameRate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"30/1", "30.00", false},
		{"30000/1001", "29.97", false},
		{"24000/1001", "23.98", false},
		{"60/1", "60.00", false},
		{"25/0", "", false},
		{"0/0", "", false},
		{"0/1", "", false},
		{"30", "", true},
		{"a/b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := FormatFrameRate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("FormatFrameRate(%q) expected error, got %q", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFrameRate(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("FormatFrameRate(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestVideoDevice(t *testing.T) {
	panasonicXML := `<?xml version="1.0" encoding="UTF-8"?>
<NonRealTimeMeta xmlns="urn:schemas-professionalDisc:nonRealTimeMeta:ver.2.00">
  <Device manufacturer="Panasonic">
    <ModelName>AG-CX10</ModelName>
  </Device>
</NonRealTimeMeta>`

	tests := []struct {
		name     string
		tags     map[string]string
		expected string
		wantWarn bool
	}{
		{
			name:     "model tag",
			tags:     map[string]string{"model": "Pixel 8", "Make": "Google"},
			expected: "Pixel 8",
		},
		{
			name:     "make used when model missing",
			tags:     map[string]string{"Make": "DJI"},
			expected: "DJI",
		},
		{
			name:     "camera model name",
			tags:     map[string]string{"CameraModelName": "ILCE-7M4"},
			expected: "ILCE-7M4",
		},
		{
			name:     "embedded panasonic xml",
			tags:     map[string]string{PanasonicMetadataTag: panasonicXML},
			expected: "AG-CX10",
		},
		{
			name:     "tag wins over xml",
			tags:     map[string]string{PanasonicMetadataTag: panasonicXML, "ProductModel": "HC-X2000"},
			expected: "HC-X2000",
		},
		{
			name:     "malformed xml",
			tags:     map[string]string{PanasonicMetadataTag: "<Root><Model></Other></Root>"},
			expected: "",
			wantWarn: true,
		},
		{
			name:     "nothing",
			tags:     map[string]string{"encoder": "Lavf60"},
			expected: "",
		},
		{
			name:     "nil tags",
			tags:     nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := VideoDevice(tt.tags)
			if got != tt.expected {
				t.Errorf("VideoDevice() = %q, want %q", got, tt.expected)
			}
			if (warn != nil) != tt.wantWarn {
				t.Errorf("VideoDevice() warning = %v, wantWarn %v", warn, tt.wantWarn)
			}
		})
	}
}

func TestVideoCodec(t *testing.T) {
	tests := []struct {
		name     string
		stream   Stream
		tags     map[string]string
		expected string
	}{
		{
			name:     "codec and profile",
			stream:   Stream{CodecName: "h264", Profile: "High"},
			expected: "h264_High",
		},
		{
			name:     "codec tag",
			stream:   Stream{CodecName: "hevc"},
			tags:     map[string]string{"com.apple.quicktime.codec": "HEVC Main10"},
			expected: "HEVC Main10",
		},
		{
			name:     "encoding tag is case-insensitive",
			stream:   Stream{CodecName: "prores"},
			tags:     map[string]string{"ENCODING_SETTINGS": "ProRes 422 HQ"},
			expected: "ProRes 422 HQ",
		},
		{
			name:     "codec keyword beats encoding keyword",
			stream:   Stream{CodecName: "h264"},
			tags:     map[string]string{"encoding": "x", "videocodec": "y"},
			expected: "y",
		},
		{
			name:     "bare codec name",
			stream:   Stream{CodecName: "mpeg4"},
			tags:     map[string]string{"encoder": "Lavf"},
			expected: "mpeg4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VideoCodec(&tt.stream, tt.tags); got != tt.expected {
				t.Errorf("VideoCodec() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeVideo(t *testing.T) {
	mod := time.Date(2024, 3, 9, 18, 5, 7, 0, time.Local)
	rec := VideoRecord{
		ModTime:    mod,
		FormatTags: map[string]string{"model": "Pixel 8 Pro"},
		VideoStream: &Stream{
			CodecName:  "hevc",
			Profile:    "Main",
			Width:      3840,
			Height:     2160,
			RFrameRate: "30000/1001",
		},
	}

	parts, warnings := NormalizeVideo(rec, VideoFields)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	want := []string{"2024-03-09_18.05.07", "Pixel8Pro", "3840x2160", "29.97", "hevc_Main"}
	if got := parts.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeVideo() = %v, want %v", got, want)
	}
}

func TestNormalizeVideo_MissingPieces(t *testing.T) {
	rec := VideoRecord{
		ModTime: time.Date(2024, 3, 9, 18, 5, 7, 0, time.Local),
		VideoStream: &Stream{
			CodecName:  "h264",
			Width:      1920,
			RFrameRate: "0/0",
		},
	}

	parts, warnings := NormalizeVideo(rec, VideoFields)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	want := []string{"2024-03-09_18.05.07", "h264"}
	if got := parts.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeVideo() = %v, want %v", got, want)
	}
}

func TestNormalizeVideo_NoStream(t *testing.T) {
	rec := VideoRecord{FormatTags: map[string]string{"Make": "GoPro"}}
	parts, _ := NormalizeVideo(rec, VideoFields)
	want := []string{"GoPro"}
	if got := parts.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeVideo() = %v, want %v", got, want)
	}
}

func TestNormalizeVideo_SelectionRespected(t *testing.T) {
	rec := VideoRecord{
		ModTime:     time.Now(),
		FormatTags:  map[string]string{"model": "X"},
		VideoStream: &Stream{CodecName: "h264", Width: 1280, Height: 720, RFrameRate: "25/1"},
	}
	parts, _ := NormalizeVideo(rec, NewSelection(FieldFrameRate, FieldResolution))
	want := []string{"1280x720", "25.00"}
	if got := parts.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeVideo() = %v, want %v", got, want)
	}
}
