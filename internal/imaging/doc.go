// Package imaging owns image state and the file boundary of the enhancement engine.
//
// It provides the ImageBuffer (pristine original plus mutable working copy), the size
// guard that bounds pixel counts before loads and expensive operations, and the
// load/save functions that move images between disk and the canonical in-memory form.
//
// # Canonical Representation
//
// Every image held by a Buffer is an *image.NRGBA whose bounds start at (0,0) and whose
// alpha channel is fully opaque. Only the red, green and blue channels carry data; they
// are always 8-bit values, so clamping to [0,255] is implicit in the storage type.
// Use ToCanonical to convert any decoded image.Image.
//
// # Supported Formats
//
// Loading accepts PNG, JPEG, BMP, TIFF and WebP. Format detection is based on file
// contents, not the extension. EXIF orientation is applied on load.
// Saving supports PNG, JPEG, BMP and TIFF, selected by the destination extension.
//
// # Size Limits
//
// SizeLimits rejects images above MaxPixels (default 50,000,000, about 8000x6000) and
// flags images above WarnPixels (default 10,000,000) as slow to process. Loads check the
// header dimensions before decoding pixel data, so oversize files are rejected without
// allocating their pixels.
//
// # Comparison
//
// Compare reports how far the working image has moved from a reference: the share of
// visibly changed pixels, the mean channel difference and PSNR. A reference of another
// size is resampled first.
//
// # Thread Safety
//
// Buffer holds no locks. The caller must ensure at most one operation mutates a given
// Buffer at a time. Images returned by Current and Original must be treated as read-only.
package imaging
