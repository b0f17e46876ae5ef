package videofx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/videofx/transform"
)

func allDescriptors() []Descriptor {
	return []Descriptor{
		NewDescriptor(transform.BlurOptions{Radius: transform.BlurNone}),
		NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}),
		NewDescriptor(transform.BlurOptions{Radius: transform.BlurNormal}),
		NewDescriptor(transform.BackgroundOptions{ImageRef: "beach.png"}),
		NewDescriptor(transform.LandmarkOptions{ShowGlasses: true}),
		NewDescriptor(transform.LandmarkOptions{ShowGlasses: true, ShowFrench: true}),
	}
}

func TestDescriptorEqual(t *testing.T) {
	tests := []struct {
		name  string
		a     Descriptor
		b     Descriptor
		equal bool
	}{
		{
			name:  "identical blur",
			a:     NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}),
			b:     NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}),
			equal: true,
		},
		{
			name:  "blur radius differs",
			a:     NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}),
			b:     NewDescriptor(transform.BlurOptions{Radius: transform.BlurNormal}),
			equal: false,
		},
		{
			name:  "kind differs",
			a:     NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}),
			b:     NewDescriptor(transform.BackgroundOptions{ImageRef: "beach.png"}),
			equal: false,
		},
		{
			name:  "landmark flags equal by value",
			a:     NewDescriptor(transform.LandmarkOptions{ShowGlasses: true, ShowFrench: true}),
			b:     NewDescriptor(transform.LandmarkOptions{ShowGlasses: true, ShowFrench: true}),
			equal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestDescriptorSerializationRoundTrip(t *testing.T) {
	for _, d := range allDescriptors() {
		t.Run(d.String(), func(t *testing.T) {
			data, err := json.Marshal(d)
			require.NoError(t, err)

			parsed, err := ParseDescriptor(data)
			require.NoError(t, err)
			assert.True(t, d.Equal(parsed), "round trip must preserve equality")
		})
	}
}

func TestDescriptorSerializationCanonical(t *testing.T) {
	d := NewDescriptor(transform.LandmarkOptions{ShowGlasses: true, ShowFrench: false})

	first, err := json.Marshal(d)
	require.NoError(t, err)
	second, err := json.Marshal(d)
	require.NoError(t, err)

	assert.Equal(t, first, second, "serialization must be byte-stable")
	assert.JSONEq(t,
		`{"kind":"face-landmark","options":{"showGlasses":true,"showFrench":false}}`,
		string(first))
}

func TestParseDescriptorMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "not json"},
		{name: "unknown kind", data: `{"kind":"sparkle","options":{}}`},
		{name: "missing options", data: `{"kind":"blur"}`},
		{name: "options of the wrong shape", data: `{"kind":"blur","options":{"radius":123}}`},
		{name: "invalid radius", data: `{"kind":"blur","options":{"radius":"extreme"}}`},
		{name: "empty background ref", data: `{"kind":"virtual-background","options":{"imageRef":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedDescriptor)
		})
	}
}

func TestDescriptorValid(t *testing.T) {
	assert.Error(t, Descriptor{Kind: transform.KindBlur}.Valid())

	mismatched := Descriptor{
		Kind:    transform.KindBlur,
		Options: transform.LandmarkOptions{},
	}
	assert.ErrorIs(t, mismatched.Valid(), ErrMalformedDescriptor)

	assert.NoError(t, NewDescriptor(transform.BlurOptions{Radius: transform.BlurLight}).Valid())
}
