package filehandler

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

type fakeExtractor struct {
	name  string
	attrs map[string]any
	err   error
	calls int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(string) (map[string]any, error) {
	f.calls++
	return f.attrs, f.err
}

func TestChainExtractor_FirstUsableWins(t *testing.T) {
	first := &fakeExtractor{name: "a", err: fmt.Errorf("nothing: %w", ErrNoMetadata)}
	second := &fakeExtractor{name: "b", attrs: map[string]any{"Model": "X100V"}}
	third := &fakeExtractor{name: "c", attrs: map[string]any{"Model": "other"}}

	attrs, err := ChainExtractor{first, second, third}.Extract("p.jpg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if attrs["Model"] != "X100V" {
		t.Errorf("Model = %v, want X100V", attrs["Model"])
	}
	if third.calls != 0 {
		t.Error("chain continued after a usable result")
	}
}

func TestChainExtractor_EmptyResultFallsThrough(t *testing.T) {
	first := &fakeExtractor{name: "a", attrs: map[string]any{}}
	second := &fakeExtractor{name: "b", attrs: map[string]any{"ISO": "200"}}

	attrs, err := ChainExtractor{first, second}.Extract("p.jpg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if attrs["ISO"] != "200" {
		t.Errorf("ISO = %v", attrs["ISO"])
	}
}

func TestChainExtractor_AllEmpty(t *testing.T) {
	chain := ChainExtractor{
		&fakeExtractor{name: "a", err: ErrNoMetadata},
		&fakeExtractor{name: "b", attrs: nil},
	}
	if _, err := chain.Extract("p.jpg"); !errors.Is(err, ErrNoMetadata) {
		t.Errorf("err = %v, want ErrNoMetadata", err)
	}
	if _, err := (ChainExtractor{}).Extract("p.jpg"); !errors.Is(err, ErrNoMetadata) {
		t.Errorf("empty chain err = %v, want ErrNoMetadata", err)
	}
}

func TestChainExtractor_FilesystemErrorStops(t *testing.T) {
	denied := &fakeExtractor{name: "a", err: os.ErrPermission}
	next := &fakeExtractor{name: "b", attrs: map[string]any{"Model": "x"}}

	_, err := ChainExtractor{denied, next}.Extract("p.jpg")
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("err = %v, want ErrPermission", err)
	}
	if errors.Is(err, ErrNoMetadata) {
		t.Error("filesystem error must not be reported as missing metadata")
	}
	if next.calls != 0 {
		t.Error("chain continued after filesystem error")
	}
}

func TestChainExtractor_Name(t *testing.T) {
	chain := ChainExtractor{GoExifExtractor{}, ImageMetaExtractor{}}
	if chain.Name() != "goexif>imagemeta" {
		t.Errorf("Name() = %q", chain.Name())
	}
}

func TestExtractPhotoRecord(t *testing.T) {
	ext := &fakeExtractor{name: "a", attrs: map[string]any{
		"Model":           "NIKON Z 6_2",
		"ISOSpeedRatings": float64(800),
	}}
	rec, err := ExtractPhotoRecord(ext, "p.nef")
	if err != nil {
		t.Fatalf("ExtractPhotoRecord: %v", err)
	}
	if rec.Model == nil || *rec.Model != "NIKON Z 6_2" {
		t.Errorf("Model = %v", rec.Model)
	}
	if rec.ISOSpeedRatings == nil || *rec.ISOSpeedRatings != "800" {
		t.Errorf("ISOSpeedRatings = %v", rec.ISOSpeedRatings)
	}
}

func writePlainJPEG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plain.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGoExifExtractor_NoExif(t *testing.T) {
	_, err := GoExifExtractor{}.Extract(writePlainJPEG(t))
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("err = %v, want ErrNoMetadata", err)
	}
}

func TestGoExifExtractor_MissingFile(t *testing.T) {
	_, err := GoExifExtractor{}.Extract(filepath.Join(t.TempDir(), "gone.jpg"))
	if err == nil || errors.Is(err, ErrNoMetadata) {
		t.Errorf("err = %v, want a filesystem error", err)
	}
}

func TestImageMetaExtractor_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dng")
	if err := os.WriteFile(path, []byte("definitely not a raw file"), 0o644); err != nil {
		t.Fatal(err)
	}
	attrs, err := ImageMetaExtractor{}.Extract(path)
	if err == nil && len(attrs) != 0 {
		t.Errorf("attrs = %v, want none", attrs)
	}
	if err != nil && !errors.Is(err, ErrNoMetadata) {
		t.Errorf("err = %v, want ErrNoMetadata", err)
	}
}
