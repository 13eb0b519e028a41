package engine

import (
	"context"
	"errors"
	"io/fs"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/realesrgan"
	"github.com/ironsheep/image-enhance-mcp/internal/upscale"
)

var (
	// ErrNoImage is returned by non-mutating operations that need a loaded image.
	ErrNoImage = imaging.ErrEmpty

	// ErrInvalidScale is returned for scale factors the selected method cannot do.
	ErrInvalidScale = upscale.ErrInvalidScale

	// ErrInvalidParameter is returned for out-of-range operation parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrCancelled is returned when the context was cancelled between stages.
	ErrCancelled = errors.New("operation cancelled")
)

// Kind classifies a failure for presentation.
type Kind string

const (
	KindNone            Kind = ""
	KindValidation      Kind = "validation"
	KindToolUnavailable Kind = "tool_unavailable"
	KindToolExecution   Kind = "tool_execution"
	KindToolTimeout     Kind = "tool_timeout"
	KindTransform       Kind = "transform"
	KindIO              Kind = "io"
	KindCancelled       Kind = "cancelled"
)

// Classify maps err to its Kind. A nil error is KindNone.
func Classify(err error) Kind {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, realesrgan.ErrTimeout):
		return KindToolTimeout
	case errors.Is(err, realesrgan.ErrExecution):
		return KindToolExecution
	case errors.Is(err, realesrgan.ErrUnavailable):
		return KindToolUnavailable
	case errors.Is(err, imaging.ErrEmpty),
		errors.Is(err, imaging.ErrTooLarge),
		errors.Is(err, imaging.ErrUnreadable),
		errors.Is(err, imaging.ErrUnsupportedFormat),
		errors.Is(err, ErrInvalidScale),
		errors.Is(err, ErrInvalidParameter),
		errors.Is(err, realesrgan.ErrUnsupportedScale):
		return KindValidation
	case errors.Is(err, imaging.ErrDestination),
		errors.Is(err, imaging.ErrWrite),
		errors.As(err, &pathErr):
		return KindIO
	default:
		// filters.ErrTransform and anything unexpected inside a stage.
		return KindTransform
	}
}

// Outcome is the presentable result of an operation.
type Outcome struct {
	Success bool   `json:"success"`
	Kind    Kind   `json:"kind,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// OutcomeOf converts an operation's error into an Outcome.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Outcome{Success: true}
	}
	return Outcome{Kind: Classify(err), Reason: err.Error()}
}

// WithWarning returns o with a non-fatal warning attached.
func (o Outcome) WithWarning(warning string) Outcome {
	o.Warning = warning
	return o
}
