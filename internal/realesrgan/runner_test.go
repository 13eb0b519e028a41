package realesrgan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// stubProvisioner resolves to a fixed path.
type stubProvisioner struct {
	path string
}

func (s stubProvisioner) IsAvailable() bool   { return s.path != "" }
func (s stubProvisioner) ResolvePath() string { return s.path }

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 9), uint8(y * 9), 128, 255})
		}
	}
	return img
}

// newTestRunner returns a runner whose subprocess is this test binary acting as the
// tool in the given mode. Every invocation's arguments are appended to the returned
// log file.
func newTestRunner(t *testing.T, mode string, opts Options) (*Runner, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "invocations.log")
	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}
	if opts.Limits == (imaging.SizeLimits{}) {
		opts.Limits = imaging.DefaultSizeLimits()
	}
	opts.Command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"FAKE_TOOL_MODE="+mode,
			"FAKE_TOOL_LOG="+logPath,
		)
		return cmd
	}
	r := NewRunner(stubProvisioner{path: "realesrgan-ncnn-vulkan"}, opts)
	return r, logPath
}

// TestHelperProcess is not a real test. It stands in for the super-resolution
// executable when re-executed by newTestRunner.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no command")
		os.Exit(2)
	}
	args = args[2:]

	flags := map[string]string{}
	for i := 0; i+1 < len(args); i += 2 {
		flags[args[i]] = args[i+1]
	}

	if f, err := os.OpenFile(os.Getenv("FAKE_TOOL_LOG"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		fmt.Fprintln(f, strings.Join(args, " "))
		f.Close()
	}

	switch os.Getenv("FAKE_TOOL_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "unsupported scale")
		os.Exit(1)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	case "noout":
		os.Exit(0)
	}

	var scale int
	fmt.Sscanf(flags["-s"], "%d", &scale)
	src, _, err := imaging.LoadFile(flags["-i"], imaging.DefaultSizeLimits())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(x/scale, y/scale))
		}
	}
	if err := imaging.SaveFile(dst, flags["-o"]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(4)
	}
	os.Exit(0)
}

func readInvocations(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read invocation log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("temp dir not cleaned up: %v", names)
	}
}

func percents(events []progress.Event) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Percent
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRun_SinglePass(t *testing.T) {
	tmp := t.TempDir()
	r, logPath := newTestRunner(t, "ok", Options{TempDir: tmp})
	var rec progress.Recorder

	got, err := r.Run(context.Background(), createTestImage(10, 6), 2, rec.Func())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 12 {
		t.Errorf("got %dx%d, want 20x12", got.Bounds().Dx(), got.Bounds().Dy())
	}

	calls := readInvocations(t, logPath)
	if len(calls) != 1 || !strings.Contains(calls[0], "-s 2 -f png") {
		t.Errorf("invocations: %q", calls)
	}
	if p := percents(rec.Events()); !equalInts(p, []int{10, 50, 90, 100}) {
		t.Errorf("progress: got %v", p)
	}
	if last, _ := rec.Last(); last.Message != progress.Complete {
		t.Errorf("last message: %q", last.Message)
	}
	assertEmptyDir(t, tmp)
}

func TestRun_Scale4ChainsTwoPasses(t *testing.T) {
	tmp := t.TempDir()
	r, logPath := newTestRunner(t, "ok", Options{TempDir: tmp})
	var rec progress.Recorder

	got, err := r.Run(context.Background(), createTestImage(5, 4), 4, rec.Func())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 16 {
		t.Errorf("got %dx%d, want 20x16", got.Bounds().Dx(), got.Bounds().Dy())
	}

	calls := readInvocations(t, logPath)
	if len(calls) != 2 {
		t.Fatalf("got %d invocations, want 2: %q", len(calls), calls)
	}
	first := strings.Fields(calls[0])
	second := strings.Fields(calls[1])
	if first[5] != "2" || second[5] != "2" {
		t.Errorf("both passes should run at scale 2: %q", calls)
	}
	intermediate := first[3]
	if second[1] != intermediate {
		t.Errorf("second pass input %q, want first pass output %q", second[1], intermediate)
	}
	if _, err := os.Stat(intermediate); !os.IsNotExist(err) {
		t.Errorf("intermediate %s still exists", intermediate)
	}
	if p := percents(rec.Events()); !equalInts(p, []int{10, 30, 70, 90, 100}) {
		t.Errorf("progress: got %v", p)
	}
	assertEmptyDir(t, tmp)
}

func TestRun_Scale4Native(t *testing.T) {
	r, logPath := newTestRunner(t, "ok", Options{NativeScale4: true})

	got, err := r.Run(context.Background(), createTestImage(3, 3), 4, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Bounds().Dx() != 12 {
		t.Errorf("width: got %d, want 12", got.Bounds().Dx())
	}
	calls := readInvocations(t, logPath)
	if len(calls) != 1 || !strings.Contains(calls[0], "-s 4") {
		t.Errorf("invocations: %q", calls)
	}
}

func TestRun_ToolFailure(t *testing.T) {
	tmp := t.TempDir()
	r, _ := newTestRunner(t, "fail", Options{TempDir: tmp})
	src := createTestImage(8, 8)
	before := append([]uint8(nil), src.Pix...)
	var rec progress.Recorder

	got, err := r.Run(context.Background(), src, 3, rec.Func())
	if got != nil {
		t.Error("expected nil image on failure")
	}
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("got %v, want ErrExecution", err)
	}
	if !strings.Contains(err.Error(), "unsupported scale") {
		t.Errorf("error %q does not carry tool diagnostic", err)
	}
	if string(src.Pix) != string(before) {
		t.Error("input image modified")
	}
	if last, ok := rec.Last(); ok && last.Percent == 100 {
		t.Error("failed run reported completion")
	}
	assertEmptyDir(t, tmp)
}

func TestRun_NoOutput(t *testing.T) {
	tmp := t.TempDir()
	r, _ := newTestRunner(t, "noout", Options{TempDir: tmp})

	_, err := r.Run(context.Background(), createTestImage(4, 4), 2, nil)
	if !errors.Is(err, ErrExecution) {
		t.Errorf("got %v, want ErrExecution", err)
	}
	assertEmptyDir(t, tmp)
}

func TestRun_Timeout(t *testing.T) {
	tmp := t.TempDir()
	r, _ := newTestRunner(t, "sleep", Options{TempDir: tmp, Timeout: 200 * time.Millisecond})

	start := time.Now()
	_, err := r.Run(context.Background(), createTestImage(4, 4), 2, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
	assertEmptyDir(t, tmp)
}

func TestRun_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		runner  func(t *testing.T) (*Runner, string)
		img     *image.NRGBA
		scale   int
		wantErr error
	}{
		{
			name: "tool unavailable",
			runner: func(t *testing.T) (*Runner, string) {
				r, log := newTestRunner(t, "ok", Options{})
				r.tool = stubProvisioner{}
				return r, log
			},
			img:     createTestImage(4, 4),
			scale:   2,
			wantErr: ErrUnavailable,
		},
		{
			name: "oversize input",
			runner: func(t *testing.T) (*Runner, string) {
				return newTestRunner(t, "ok", Options{Limits: imaging.SizeLimits{MaxPixels: 100}})
			},
			img:     createTestImage(20, 20),
			scale:   2,
			wantErr: imaging.ErrTooLarge,
		},
		{
			name: "oversize result",
			runner: func(t *testing.T) (*Runner, string) {
				return newTestRunner(t, "ok", Options{Limits: imaging.SizeLimits{MaxPixels: 500}})
			},
			img:     createTestImage(20, 20),
			scale:   2,
			wantErr: imaging.ErrTooLarge,
		},
		{
			name: "invalid scale",
			runner: func(t *testing.T) (*Runner, string) {
				return newTestRunner(t, "ok", Options{})
			},
			img:     createTestImage(4, 4),
			scale:   5,
			wantErr: ErrUnsupportedScale,
		},
		{
			name: "no image",
			runner: func(t *testing.T) (*Runner, string) {
				return newTestRunner(t, "ok", Options{})
			},
			scale:   2,
			wantErr: imaging.ErrEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, logPath := tt.runner(t)
			var rec progress.Recorder
			_, err := r.Run(context.Background(), tt.img, tt.scale, rec.Func())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if calls := readInvocations(t, logPath); len(calls) != 0 {
				t.Errorf("tool invoked: %q", calls)
			}
			if n := len(rec.Events()); n != 0 {
				t.Errorf("got %d progress events, want none", n)
			}
		})
	}
}

func TestRun_CancelledBeforePass(t *testing.T) {
	tmp := t.TempDir()
	r, logPath := newTestRunner(t, "ok", Options{TempDir: tmp})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, createTestImage(4, 4), 4, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls := readInvocations(t, logPath); len(calls) != 0 {
		t.Errorf("tool invoked after cancel: %q", calls)
	}
	assertEmptyDir(t, tmp)
}
