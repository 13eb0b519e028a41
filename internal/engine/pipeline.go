package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// Params is a bundle of independent enhancement controls. A field at its no-op
// value (0 for strengths, 1 for factors) skips that stage.
type Params struct {
	Sharpen    float64 `json:"sharpen"`    // [0, 2]
	Denoise    float64 `json:"denoise"`    // [0, 1]
	Contrast   float64 `json:"contrast"`   // [0.5, 2]
	Brightness float64 `json:"brightness"` // [0.5, 2]
	Saturation float64 `json:"saturation"` // [0, 2]
	Details    float64 `json:"details"`    // [0, 1]

	// Reset restores the original image before applying anything, so repeated
	// calls with new settings do not compound.
	Reset bool `json:"reset"`
}

// DefaultParams returns parameters that change nothing.
func DefaultParams() Params {
	return Params{Contrast: 1, Brightness: 1, Saturation: 1}
}

type phase struct {
	percent int
	message string
	ops     []Operation
}

func (p Params) phases() []phase {
	return []phase{
		{10, "Applying enhancements...", []Operation{Sharpen{p.Sharpen}}},
		{30, "Denoising...", []Operation{Denoise{p.Denoise}}},
		{50, "Adjusting colors...", []Operation{Contrast{p.Contrast}, Brightness{p.Brightness}, Saturation{p.Saturation}}},
		{80, "Enhancing details...", []Operation{Details{p.Details}}},
	}
}

// Operations returns the stages p would run, in order, omitting no-ops.
func (p Params) Operations() []Operation {
	var ops []Operation
	if p.Reset {
		ops = append(ops, Reset{})
	}
	for _, ph := range p.phases() {
		for _, op := range ph.ops {
			if !IsNoOp(op) {
				ops = append(ops, op)
			}
		}
	}
	return ops
}

// Validate checks every field's range.
func (p Params) Validate() error {
	var errs []error
	for _, ph := range p.phases() {
		for _, op := range ph.ops {
			if err := Validate(op); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Enhance applies p to the working image: sharpen, denoise, colour adjustments,
// then detail enhancement, with progress 10, 30, 50, 80 and 100.
//
// A failing stage is skipped and named in the returned slice; the remaining stages
// still run. ctx is checked between phases; when it is cancelled Enhance returns
// ErrCancelled and the phases already applied remain in the working image.
//
// Nothing happens if no image is loaded.
func (e *Engine) Enhance(ctx context.Context, p Params, report progress.Func) (skipped []string, err error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !e.buffer.Loaded() {
		return nil, nil
	}
	report = progress.Monotonic(report)

	if p.Reset {
		e.Reset()
	}
	for _, ph := range p.phases() {
		if err := ctx.Err(); err != nil {
			return skipped, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		report.Report(ph.percent, ph.message)
		for _, op := range ph.ops {
			if IsNoOp(op) {
				continue
			}
			if err := e.Apply(op); err != nil {
				skipped = append(skipped, Name(op))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return skipped, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	if len(skipped) > 0 {
		log.Warn().Strs("skipped", skipped).Msg("Enhancement finished with skipped stages")
	}
	report.Report(100, progress.Complete)
	return skipped, nil
}
