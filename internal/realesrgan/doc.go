// Package realesrgan runs the Real-ESRGAN super-resolution executable
// (realesrgan-ncnn-vulkan) as a subprocess.
//
// The working image is written to a per-call scratch directory as PNG, the tool is
// invoked as
//
//	<tool> -i <input.png> -o <output.png> -s <scale> -f png
//
// and the result is read back into the canonical in-memory form. A 4x request runs
// as two chained 2x passes unless the installed tool is configured as natively
// supporting 4x.
//
// # Cleanup
//
// Every temporary file lives in the scratch directory, which is removed on every
// exit path. Removal failures are logged and never reported as errors.
//
// # Cancellation
//
// The context passed to Runner.Run is checked before each pass. A pass that has
// already started is not interrupted by cancellation; it runs until it exits or the
// per-pass timeout (300 seconds by default) kills it.
package realesrgan
