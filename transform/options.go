package transform

import (
	"fmt"
)

// Kind identifies a transform variant. Kinds serialize as stable strings so
// descriptor output is diffable by telemetry and persistence consumers.
type Kind string

const (
	// KindBlur blurs the background region behind the detected person.
	KindBlur Kind = "blur"
	// KindVirtualBackground replaces the background with a supplied image.
	KindVirtualBackground Kind = "virtual-background"
	// KindFaceLandmark draws overlays anchored to detected face landmarks.
	KindFaceLandmark Kind = "face-landmark"
)

// BlurRadius selects the blur strength for the background blur transform.
type BlurRadius string

const (
	// BlurNone applies no blur; the frame passes through untouched.
	BlurNone BlurRadius = "none"
	// BlurLight applies a light background blur.
	BlurLight BlurRadius = "light"
	// BlurNormal applies the standard background blur.
	BlurNormal BlurRadius = "normal"
)

// Options is the variant-typed option value carried by a descriptor and
// held by a running transform. Implementations are small value types, so
// structural equality is plain == on the concrete type.
type Options interface {
	// Kind returns the transform variant these options belong to.
	Kind() Kind
	// Equal reports deep structural equality with another options value.
	// Equality is by value, never by reference.
	Equal(other Options) bool
	// Noop reports whether the options describe no visible effect at all
	// (e.g. every overlay flag off). The controller treats toggling to a
	// no-op descriptor as clearing the active transform.
	Noop() bool
	// Validate rejects option values that can never be applied.
	Validate() error
}

// BlurOptions configures the background blur transform.
type BlurOptions struct {
	Radius BlurRadius `json:"radius"`
}

// Kind returns KindBlur.
func (o BlurOptions) Kind() Kind { return KindBlur }

// Equal reports structural equality with another options value.
func (o BlurOptions) Equal(other Options) bool {
	b, ok := other.(BlurOptions)
	return ok && o == b
}

// Noop reports whether the radius is BlurNone.
func (o BlurOptions) Noop() bool { return o.Radius == BlurNone }

// Validate rejects unknown radius values.
func (o BlurOptions) Validate() error {
	switch o.Radius {
	case BlurNone, BlurLight, BlurNormal:
		return nil
	default:
		return fmt.Errorf("unknown blur radius %q", o.Radius)
	}
}

// BackgroundOptions configures the virtual background transform. ImageRef
// is an opaque reference resolved by the configured ImageLoader; the core
// never interprets it beyond equality.
type BackgroundOptions struct {
	ImageRef string `json:"imageRef"`
}

// Kind returns KindVirtualBackground.
func (o BackgroundOptions) Kind() Kind { return KindVirtualBackground }

// Equal reports structural equality with another options value.
func (o BackgroundOptions) Equal(other Options) bool {
	b, ok := other.(BackgroundOptions)
	return ok && o == b
}

// Noop reports whether the image reference is empty.
func (o BackgroundOptions) Noop() bool { return o.ImageRef == "" }

// Validate accepts any non-empty reference; resolution failures surface at
// apply time, not toggle time.
func (o BackgroundOptions) Validate() error {
	if o.ImageRef == "" {
		return fmt.Errorf("background image reference cannot be empty")
	}
	return nil
}

// LandmarkOptions configures the face-landmark overlay transform.
type LandmarkOptions struct {
	ShowGlasses bool `json:"showGlasses"`
	ShowFrench  bool `json:"showFrench"`
}

// Kind returns KindFaceLandmark.
func (o LandmarkOptions) Kind() Kind { return KindFaceLandmark }

// Equal reports structural equality with another options value.
func (o LandmarkOptions) Equal(other Options) bool {
	l, ok := other.(LandmarkOptions)
	return ok && o == l
}

// Noop reports whether every overlay flag is off.
func (o LandmarkOptions) Noop() bool { return !o.ShowGlasses && !o.ShowFrench }

// Validate always succeeds; every flag combination is representable.
func (o LandmarkOptions) Validate() error { return nil }
