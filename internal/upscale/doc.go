// Package upscale enlarges images without external tools.
//
// Two methods are provided. BasicResample is a plain Lanczos resize. FilterChain is
// the classical enhancement used when the Real-ESRGAN binary is unavailable: a
// Lanczos resize followed by edge-preserving smoothing, an unsharp mask, luminance
// CLAHE and a final 3x3 sharpening pass.
//
// Both functions are deterministic: the same input, scale and strength always
// produce bit-identical output.
package upscale
