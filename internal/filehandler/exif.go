package filehandler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/evanoberholster/imagemeta"
	"github.com/evanoberholster/imagemeta/exif2"
	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/fpang/media-rename/internal/naming"
)

// ErrNoMetadata is returned when no extractor could produce usable metadata
// for a file. The batch driver counts such files as skipped.
var ErrNoMetadata = errors.New("no usable metadata")

// PhotoExtractor reads the photo attribute map for a single file. Keys follow
// exiftool tag names (DateTimeOriginal, Model, LensModel, ...).
type PhotoExtractor interface {
	Name() string
	Extract(path string) (map[string]any, error)
}

// ExtractPhotoRecord runs ext against path and converts the result into a
// naming.PhotoRecord.
func ExtractPhotoRecord(ext PhotoExtractor, path string) (naming.PhotoRecord, error) {
	attrs, err := ext.Extract(path)
	if err != nil {
		return naming.PhotoRecord{}, err
	}
	return naming.PhotoRecordFromAttributes(attrs), nil
}

// --- exiftool ---

// ExifToolExtractor wraps a long-lived exiftool process. Calls are
// serialized because the process handles one request at a time.
type ExifToolExtractor struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewExifToolExtractor starts the exiftool process. It fails when exiftool is
// not installed.
func NewExifToolExtractor() (*ExifToolExtractor, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	return &ExifToolExtractor{et: et}, nil
}

func (e *ExifToolExtractor) Name() string { return "exiftool" }

// Extract returns exiftool's field map for path.
func (e *ExifToolExtractor) Extract(path string) (map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fileInfos := e.et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("exiftool returned no result for %s: %w", path, ErrNoMetadata)
	}
	fi := fileInfos[0]
	if fi.Err != nil {
		if errors.Is(fi.Err, os.ErrNotExist) || errors.Is(fi.Err, os.ErrPermission) {
			return nil, fi.Err
		}
		return nil, fmt.Errorf("exiftool: %v: %w", fi.Err, ErrNoMetadata)
	}
	return fi.Fields, nil
}

// Close terminates the exiftool process.
func (e *ExifToolExtractor) Close() error {
	return e.et.Close()
}

// --- goexif ---

// GoExifExtractor decodes EXIF in-process with goexif. It handles JPEG and
// TIFF-based files and needs no external tools.
type GoExifExtractor struct{}

func (GoExifExtractor) Name() string { return "goexif" }

var goexifFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.Model,
	exif.LensModel,
	exif.FocalLength,
	exif.ExposureTime,
	exif.FNumber,
	exif.ISOSpeedRatings,
}

// Extract decodes the EXIF block of path.
func (GoExifExtractor) Extract(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("goexif: %v: %w", err, ErrNoMetadata)
	}

	attrs := make(map[string]any)
	for _, field := range goexifFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if v, ok := goexifValue(field, tag); ok {
			attrs[string(field)] = v
		}
	}
	return attrs, nil
}

// goexifValue renders a tag the way exiftool prints it: exposure stays a
// fraction, other rationals become decimals.
func goexifValue(field exif.FieldName, tag *tiff.Tag) (string, bool) {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return "", false
		}
		s = strings.TrimRight(s, "\x00 ")
		return s, s != ""
	case tiff.RatVal:
		r, err := tag.Rat(0)
		if err != nil {
			return "", false
		}
		if field == exif.ExposureTime {
			return r.RatString(), true
		}
		f, _ := r.Float64()
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case tiff.IntVal:
		n, err := tag.Int(0)
		if err != nil {
			return "", false
		}
		return strconv.Itoa(n), true
	case tiff.FloatVal:
		f, err := tag.Float(0)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// --- imagemeta ---

// ImageMetaExtractor is the last-resort pure Go decoder. It understands more
// containers than goexif (HEIC, most RAW) but only the date and camera
// fields are read from it.
type ImageMetaExtractor struct{}

func (ImageMetaExtractor) Name() string { return "imagemeta" }

// Extract decodes path with imagemeta.
func (ImageMetaExtractor) Extract(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	ex, err := decodeExifSafe(f, path)
	if err != nil {
		return nil, fmt.Errorf("imagemeta: %v: %w", err, ErrNoMetadata)
	}

	attrs := make(map[string]any)
	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !ex.DateTimeOriginal().IsZero():
		attrs["DateTimeOriginal"] = ex.DateTimeOriginal().Format(naming.ExifTimeLayout)
	case !ex.CreateDate().IsZero():
		attrs["DateTimeOriginal"] = ex.CreateDate().Format(naming.ExifTimeLayout)
	case !ex.ModifyDate().IsZero():
		attrs["DateTimeOriginal"] = ex.ModifyDate().Format(naming.ExifTimeLayout)
	}
	if model := strings.TrimSpace(ex.Model); model != "" {
		attrs["Model"] = model
	}
	return attrs, nil
}

// decodeExifSafe protects against panics from the decoder on malformed files.
func decodeExifSafe(r io.ReadSeeker, path string) (ex exif2.Exif, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while decoding %s: %v", path, rec)
		}
	}()

	ex, err = imagemeta.Decode(r)
	return ex, err
}

// --- chain ---

// ChainExtractor tries each extractor in order and returns the first
// non-empty attribute map. Filesystem errors stop the chain immediately.
type ChainExtractor []PhotoExtractor

func (c ChainExtractor) Name() string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name()
	}
	return strings.Join(names, ">")
}

// Extract returns the first usable result, or an error wrapping
// ErrNoMetadata when every extractor came up empty.
func (c ChainExtractor) Extract(path string) (map[string]any, error) {
	var lastErr error
	for _, e := range c {
		attrs, err := e.Extract(path)
		if err != nil {
			if !errors.Is(err, ErrNoMetadata) {
				return nil, err
			}
			log.Debug().Err(err).Str("extractor", e.Name()).Str("path", path).Msg("Extractor found nothing, trying next")
			lastErr = err
			continue
		}
		if len(attrs) == 0 {
			continue
		}
		return attrs, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoMetadata)
}

// NewPhotoExtractor builds the default chain. exiftool leads when it is
// installed; the returned closer stops its process.
func NewPhotoExtractor() (PhotoExtractor, func()) {
	chain := ChainExtractor{}
	closer := func() {}

	et, err := NewExifToolExtractor()
	if err != nil {
		log.Warn().Err(err).Msg("exiftool unavailable, using built-in EXIF decoders only")
	} else {
		chain = append(chain, et)
		closer = func() {
			if err := et.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close exiftool")
			}
		}
	}

	chain = append(chain, GoExifExtractor{}, ImageMetaExtractor{})
	return chain, closer
}
