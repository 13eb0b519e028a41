// Package filters implements the stateless pixel operations of the enhancement engine.
//
// Every exported filter takes an opaque *image.NRGBA (see imaging.ToCanonical) and
// returns a new image; inputs are never modified. Channel values are clamped to
// [0,255] by construction.
//
// # Operations
//
//   - Sharpen: 3x3 kernel (center 9, neighbours -1) scaled by strength
//   - Denoise: bilateral filter, window 5+10*strength, sigmas 50+50*strength
//   - AdjustContrast, AdjustBrightness, AdjustSaturation: linear blends against a
//     degenerate image (mean grey, black, per-pixel luma); factor 1.0 is identity
//   - EnhanceDetails: Lab luminance unsharp mask followed by CLAHE
//
// Building blocks used by the upscaling chain are exported as well: Convolve3x3,
// UnsharpMask, EdgePreserve, EqualizeLuminance, SplitLab and CLAHE.
//
// # Failure Isolation
//
// Safe runs a filter and converts a panic into an error wrapping ErrTransform, so a
// caller can treat a failing stage as a no-op and keep its previous image.
package filters
