package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/ironsheep/image-enhance-mcp/internal/filters"
	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/realesrgan"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{fmt.Errorf("load: %w", imaging.ErrTooLarge), KindValidation},
		{imaging.ErrUnsupportedFormat, KindValidation},
		{imaging.ErrUnreadable, KindValidation},
		{ErrNoImage, KindValidation},
		{ErrInvalidScale, KindValidation},
		{realesrgan.ErrUnsupportedScale, KindValidation},
		{realesrgan.ErrUnavailable, KindToolUnavailable},
		{fmt.Errorf("%w: boom", realesrgan.ErrExecution), KindToolExecution},
		{realesrgan.ErrTimeout, KindToolTimeout},
		{fmt.Errorf("%w: sharpen", filters.ErrTransform), KindTransform},
		{imaging.ErrDestination, KindIO},
		{imaging.ErrWrite, KindIO},
		{&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, KindIO},
		{ErrCancelled, KindCancelled},
		{context.Canceled, KindCancelled},
		{errors.New("something else"), KindTransform},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v): got %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestOutcomeOf(t *testing.T) {
	ok := OutcomeOf(nil).WithWarning("large image")
	if !ok.Success || ok.Kind != KindNone || ok.Warning != "large image" {
		t.Errorf("success outcome: %+v", ok)
	}

	failed := OutcomeOf(fmt.Errorf("%w: unsupported scale", realesrgan.ErrExecution))
	if failed.Success || failed.Kind != KindToolExecution || failed.Reason == "" {
		t.Errorf("failure outcome: %+v", failed)
	}
}
