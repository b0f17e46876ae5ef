package transform

import "fmt"

// Transform is the per-frame contract every variant implements: given an
// input frame and the currently applied options, produce an output frame.
//
// Apply calls for a given transform never overlap; the owning processor
// invokes it frame-serially. SetOptions may be called concurrently with
// Apply from the control path and synchronizes on the transform's internal
// mutex, so a change lands atomically between frame boundaries.
type Transform interface {
	// Apply transforms one frame. The input is never mutated.
	Apply(frame *Frame) (*Frame, error)
	// SetOptions replaces the options in place. The new options must carry
	// the transform's own kind.
	SetOptions(opts Options) error
	// Options returns a snapshot of the currently applied options.
	Options() Options
	// Kind returns the transform variant.
	Kind() Kind
	// Ready reports whether any backing model has finished loading. A
	// processor passes frames through untouched until Ready is true.
	Ready() bool
	// Name returns a short human-readable identification for logs.
	Name() string
	// Close releases model resources. The transform is unusable afterward.
	Close() error
}

// checkKind rejects an options value of the wrong variant, shared by every
// SetOptions implementation.
func checkKind(want Kind, opts Options) error {
	if opts == nil {
		return fmt.Errorf("options cannot be nil")
	}
	if opts.Kind() != want {
		return fmt.Errorf("options kind mismatch: transform is %q, options are %q", want, opts.Kind())
	}
	return opts.Validate()
}
