// Package engine is the enhancement facade: it owns one image buffer and applies
// filters, resampling and super-resolution to it.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Callers run at most one operation at a
// time per Engine; the MCP server guarantees this by handling requests
// sequentially.
//
// # Missing image
//
// Mutating operations called before anything is loaded do nothing and return nil.
// Use Loaded to distinguish that case when a caller wants to report it.
//
// # Atomicity
//
// Every operation computes a new image and installs it only on success, so a
// failed filter, upscale or super-resolution call leaves the working image exactly
// as it was.
package engine
