package videofx

import (
	"encoding/json"
	"fmt"

	"github.com/opd-ai/videofx/transform"
)

// Descriptor is the immutable, comparable description of "which transform,
// with which options". It is the currency of the control plane: the
// controller decides toggle-off versus switch versus update-in-place purely
// by descriptor equality, never by instance identity.
type Descriptor struct {
	Kind    transform.Kind
	Options transform.Options
}

// NewDescriptor builds a descriptor from an options value; the kind is
// taken from the options so the two can never disagree.
func NewDescriptor(opts transform.Options) Descriptor {
	return Descriptor{Kind: opts.Kind(), Options: opts}
}

// Valid reports whether the descriptor can be applied at all.
func (d Descriptor) Valid() error {
	if d.Options == nil {
		return fmt.Errorf("%w: missing options", ErrMalformedDescriptor)
	}
	if d.Options.Kind() != d.Kind {
		return fmt.Errorf("%w: kind %q does not match options kind %q",
			ErrMalformedDescriptor, d.Kind, d.Options.Kind())
	}
	return nil
}

// Equal reports deep structural equality: kinds match and options are
// deep-equal by value.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Kind != other.Kind {
		return false
	}
	if d.Options == nil || other.Options == nil {
		return d.Options == nil && other.Options == nil
	}
	return d.Options.Equal(other.Options)
}

// String returns a log-friendly identification.
func (d Descriptor) String() string {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("Descriptor(%s)", d.Kind)
	}
	return string(data)
}

// descriptorEnvelope is the canonical wire form. Field order is fixed by
// struct declaration order, so serialized descriptors are byte-stable and
// diffable by telemetry consumers.
type descriptorEnvelope struct {
	Kind    transform.Kind  `json:"kind"`
	Options json.RawMessage `json:"options"`
}

// MarshalJSON serializes the descriptor to its canonical form.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if err := d.Valid(); err != nil {
		return nil, err
	}
	opts, err := json.Marshal(d.Options)
	if err != nil {
		return nil, err
	}
	return json.Marshal(descriptorEnvelope{Kind: d.Kind, Options: opts})
}

// ParseDescriptor deserializes a canonical descriptor. Any decode failure
// yields ErrMalformedDescriptor; a partially decoded descriptor is never
// returned.
func ParseDescriptor(data []byte) (Descriptor, error) {
	var env descriptorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}

	var opts transform.Options
	switch env.Kind {
	case transform.KindBlur:
		var o transform.BlurOptions
		if err := json.Unmarshal(env.Options, &o); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
		}
		opts = o
	case transform.KindVirtualBackground:
		var o transform.BackgroundOptions
		if err := json.Unmarshal(env.Options, &o); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
		}
		opts = o
	case transform.KindFaceLandmark:
		var o transform.LandmarkOptions
		if err := json.Unmarshal(env.Options, &o); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
		}
		opts = o
	default:
		return Descriptor{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedDescriptor, env.Kind)
	}

	if err := opts.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}

	return Descriptor{Kind: env.Kind, Options: opts}, nil
}
