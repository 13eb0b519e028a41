package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Errors reported by the file boundary.
var (
	// ErrUnreadable means the path could not be opened or its contents decoded.
	ErrUnreadable = errors.New("image unreadable")

	// ErrUnsupportedFormat means the file or destination uses a format the engine
	// does not handle.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDestination means the save destination could not be created or opened
	// (missing permissions, invalid path).
	ErrDestination = errors.New("destination not writable")

	// ErrWrite means the destination was opened but encoding or writing failed.
	ErrWrite = errors.New("failed to write image")
)

// loadFormats lists the decoder names accepted by LoadFile.
var loadFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"bmp":  true,
	"tiff": true,
	"webp": true,
}

// saveFormats lists the encoders accepted by SaveFile.
var saveFormats = map[imaging.Format]bool{
	imaging.PNG:  true,
	imaging.JPEG: true,
	imaging.BMP:  true,
	imaging.TIFF: true,
}

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

// ImageInfo contains metadata about an image file or a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "bmp", "tiff" or "webp".
	// Empty for images that did not come from a file.
	Format string `json:"format,omitempty"`

	// Pixels is Width*Height.
	Pixels int64 `json:"pixels"`

	// FileSizeBytes is the size of the source file on disk, if any.
	FileSizeBytes int64 `json:"file_size_bytes,omitempty"`

	// Warning is set when the image is large enough to make processing slow.
	Warning string `json:"warning,omitempty"`
}

// Describe returns the dimensions of img with the size warning from limits.
func Describe(img image.Image, limits SizeLimits) *ImageInfo {
	b := img.Bounds()
	check := limits.Check(b.Dx(), b.Dy())
	info := &ImageInfo{Width: b.Dx(), Height: b.Dy(), Pixels: check.Pixels}
	if check.Warn {
		info.Warning = check.Reason
	}
	return info
}

// LoadFile reads and decodes an image file into the canonical representation.
//
// Parameters:
//   - path: Path to the image file.
//   - limits: Size limits checked against the header dimensions before decoding.
//
// Returns:
//   - *image.NRGBA: The decoded, opaque image with EXIF orientation applied.
//   - *ImageInfo: Dimensions, format and file size.
//   - error: Wraps ErrUnreadable, ErrUnsupportedFormat or ErrTooLarge.
func LoadFile(path string, limits SizeLimits) (*image.NRGBA, *ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if !loadFormats[format] {
		return nil, nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, format)
	}

	check := limits.Check(cfg.Width, cfg.Height)
	if !check.OK {
		return nil, nil, fmt.Errorf("%w: %s", ErrTooLarge, check.Reason)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	decoded, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to decode %s: %v", ErrUnreadable, path, err)
	}

	img := ToCanonical(decoded)
	info := Describe(img, limits)
	info.Format = format
	info.FileSizeBytes = stat.Size()
	return img, info, nil
}

// SaveFile encodes img to path, choosing the format from the file extension.
//
// Missing parent directories are created. Failures to create directories or open the
// destination wrap ErrDestination; encoding and write failures wrap ErrWrite and
// remove the partially written file.
func SaveFile(img image.Image, path string) error {
	if img == nil {
		return ErrEmpty
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil || !saveFormats[format] {
		return fmt.Errorf("%w: cannot save %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrDestination, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestination, err)
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	return nil
}
