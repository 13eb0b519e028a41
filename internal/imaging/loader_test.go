package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImageFile writes a PNG with a pattern into dir and returns its path.
func createTestImageFile(t *testing.T, dir string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "test-image.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, createPatternImage(width, height)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := createTestImageFile(t, t.TempDir(), 64, 48)

	img, info, err := LoadFile(path, DefaultSizeLimits())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.Pixels != 64*48 {
		t.Errorf("Pixels: got %d, want %d", info.Pixels, 64*48)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
	if want := createPatternImage(64, 48).NRGBAAt(5, 7); img.NRGBAAt(5, 7) != want {
		t.Errorf("pixel (5,7): got %v, want %v", img.NRGBAAt(5, 7), want)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	gifPath := filepath.Join(dir, "anim.gif")
	f, err := os.Create(gifPath)
	if err != nil {
		t.Fatal(err)
	}
	pal := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	if err := gif.Encode(f, pal, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	big := createTestImageFile(t, dir, 30, 30)

	tests := []struct {
		name    string
		path    string
		limits  SizeLimits
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "nope.png"), DefaultSizeLimits(), ErrUnreadable},
		{"directory", dir, DefaultSizeLimits(), ErrUnreadable},
		{"not an image", garbage, DefaultSizeLimits(), ErrUnsupportedFormat},
		{"gif not accepted", gifPath, DefaultSizeLimits(), ErrUnsupportedFormat},
		{"oversize", big, SizeLimits{MaxPixels: 100}, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadFile(tt.path, tt.limits)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := createPatternImage(16, 12)

	for _, name := range []string{"out.png", "out.bmp", "out.tiff", "nested/deeper/out.png"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveFile(src, path); err != nil {
				t.Fatalf("SaveFile failed: %v", err)
			}
			got, _, err := LoadFile(path, DefaultSizeLimits())
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if got.NRGBAAt(3, 4) != src.NRGBAAt(3, 4) {
				t.Errorf("lossless round trip changed pixel: got %v, want %v", got.NRGBAAt(3, 4), src.NRGBAAt(3, 4))
			}
		})
	}
}

func TestSaveFile_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	if err := SaveFile(createPatternImage(16, 12), path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	_, info, err := LoadFile(path, DefaultSizeLimits())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", info.Format)
	}
}

func TestSaveFile_Errors(t *testing.T) {
	dir := t.TempDir()
	img := createPatternImage(4, 4)

	if err := SaveFile(img, filepath.Join(dir, "out.webp")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("webp: got %v, want ErrUnsupportedFormat", err)
	}
	if err := SaveFile(img, filepath.Join(dir, "out")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("no extension: got %v, want ErrUnsupportedFormat", err)
	}

	// A regular file where a parent directory is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SaveFile(img, filepath.Join(blocker, "out.png")); !errors.Is(err, ErrDestination) {
		t.Errorf("blocked parent: got %v, want ErrDestination", err)
	}

	if err := SaveFile(nil, filepath.Join(dir, "nil.png")); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil image: got %v, want ErrEmpty", err)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe(createPatternImage(10, 10), SizeLimits{MaxPixels: 1000, WarnPixels: 50})
	if info.Width != 10 || info.Height != 10 || info.Pixels != 100 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Warning == "" {
		t.Error("expected warning above WarnPixels")
	}
}
