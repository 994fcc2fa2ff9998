// Package validate measures how faithfully a reproduced figure matches a
// reference rendering. Comparison is pixel-based: mean squared error over
// the RGB channels, peak signal-to-noise ratio derived from it, and the
// largest single-channel deviation.
package validate

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/figdraw/figrec/internal/logging"
	"github.com/figdraw/figrec/recipe"
	"github.com/figdraw/figrec/record"
	"github.com/figdraw/figrec/replay"
)

// ErrorLevel controls how Dispose escalates an invalid result. The
// validator itself only reports; the caller owns the policy.
type ErrorLevel int

const (
	// LevelError returns the mismatch as an error.
	LevelError ErrorLevel = iota

	// LevelWarn logs the mismatch at warn level.
	LevelWarn

	// LevelDebug logs the mismatch at debug level.
	LevelDebug
)

// Result reports the outcome of an image comparison.
type Result struct {
	// Valid is true when the images have identical dimensions and the MSE
	// is at or below the tolerance.
	Valid bool

	// MSE is the mean squared error over all RGB channel values (0-255).
	MSE float64

	// PSNR is the peak signal-to-noise ratio in dB. Identical images
	// report +Inf.
	PSNR float64

	// MaxDiff is the largest absolute single-channel difference.
	MaxDiff float64

	// SameSize reports whether the dimensions matched. When false the
	// metric fields are zero and Valid is false.
	SameSize bool

	// SizeA and SizeB are the compared image dimensions.
	SizeA, SizeB image.Point

	// Message is a human-readable summary.
	Message string
}

// Dispose applies the caller's escalation policy to the result: an
// invalid result becomes an error, a warn log or a debug log depending
// on the level. Valid results are always nil.
func (r Result) Dispose(level ErrorLevel) error {
	if r.Valid {
		return nil
	}
	switch level {
	case LevelWarn:
		logging.Logger().Warn("validation failed", "msg", r.Message, "mse", r.MSE)
	case LevelDebug:
		logging.Logger().Debug("validation failed", "msg", r.Message, "mse", r.MSE)
	default:
		return fmt.Errorf("validate: %s", r.Message)
	}
	return nil
}

// Options configure validation.
type Options struct {
	// MaxMSE is the largest MSE still considered a valid reproduction.
	MaxMSE float64

	// Backend selects the surface backend used to reproduce the recipe.
	Backend string

	// DPI overrides the rasterization resolution; 0 uses the recorded dpi.
	DPI float64
}

// Option mutates Options.
type Option func(*Options)

// WithMaxMSE sets the MSE tolerance. The default is 100.
func WithMaxMSE(tol float64) Option {
	return func(o *Options) { o.MaxMSE = tol }
}

// WithBackend selects the surface backend for reproduction.
func WithBackend(name string) Option {
	return func(o *Options) { o.Backend = name }
}

// WithDPI overrides the rasterization resolution.
func WithDPI(dpi float64) Option {
	return func(o *Options) { o.DPI = dpi }
}

func buildOptions(opts []Option) Options {
	o := Options{MaxMSE: 100}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Images compares two images pixel by pixel.
func Images(a, b image.Image, opts ...Option) Result {
	o := buildOptions(opts)
	sa, sb := a.Bounds().Size(), b.Bounds().Size()
	res := Result{SizeA: sa, SizeB: sb, SameSize: sa == sb}
	if !res.SameSize {
		res.Message = fmt.Sprintf("dimension mismatch: %dx%d vs %dx%d", sa.X, sa.Y, sb.X, sb.Y)
		return res
	}

	var sum float64
	var maxDiff float64
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < sa.Y; y++ {
		for x := 0; x < sa.X; x++ {
			ca := color.RGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.RGBA)
			cb := color.RGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.RGBA)
			for _, d := range []float64{
				float64(ca.R) - float64(cb.R),
				float64(ca.G) - float64(cb.G),
				float64(ca.B) - float64(cb.B),
			} {
				sum += d * d
				if ad := math.Abs(d); ad > maxDiff {
					maxDiff = ad
				}
			}
		}
	}

	n := float64(sa.X * sa.Y * 3)
	res.MSE = sum / n
	res.MaxDiff = maxDiff
	if res.MSE == 0 {
		res.PSNR = math.Inf(1)
	} else {
		res.PSNR = 10 * math.Log10(255*255/res.MSE)
	}
	res.Valid = res.MSE <= o.MaxMSE
	if res.Valid {
		res.Message = fmt.Sprintf("match: mse=%.3f psnr=%.1fdB", res.MSE, res.PSNR)
	} else {
		res.Message = fmt.Sprintf("mismatch: mse=%.3f exceeds tolerance %.3f", res.MSE, o.MaxMSE)
	}
	return res
}

// Record reproduces the figure record twice on fresh surfaces and
// compares the two renders. A faithful pipeline scores an MSE of zero
// here: every source of nondeterminism in replay is a defect this check
// catches.
func Record(fig *record.FigureRecord, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	var replayOpts []replay.Option
	if o.Backend != "" {
		replayOpts = append(replayOpts, replay.WithBackend(o.Backend))
	}

	render := func() (image.Image, error) {
		rep, err := replay.Reproduce(fig, replayOpts...)
		if err != nil {
			return nil, err
		}
		return rep.Image(o.DPI)
	}

	a, err := render()
	if err != nil {
		return Result{}, err
	}
	b, err := render()
	if err != nil {
		return Result{}, err
	}
	return Images(a, b, opts...), nil
}

// File reproduces the recipe at recipePath and compares the result against
// the reference image at imagePath. The recipe's recorded dpi drives the
// rasterization, so a reference saved at the same dpi lines up.
func File(recipePath, imagePath string, opts ...Option) (Result, error) {
	o := buildOptions(opts)

	fig, err := recipe.Load(recipePath)
	if err != nil {
		return Result{}, err
	}
	var replayOpts []replay.Option
	if o.Backend != "" {
		replayOpts = append(replayOpts, replay.WithBackend(o.Backend))
	}
	rep, err := replay.Reproduce(fig, replayOpts...)
	if err != nil {
		return Result{}, err
	}
	for _, w := range rep.Warnings {
		logging.Logger().Warn("replay warning during validation", "call", w.CallID, "err", w.Err)
	}
	reproduced, err := rep.Image(o.DPI)
	if err != nil {
		return Result{}, err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("validate: %w", err)
	}
	defer f.Close()
	reference, _, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("validate: decode %s: %w", imagePath, err)
	}

	return Images(reproduced, reference, opts...), nil
}
