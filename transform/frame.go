package transform

import (
	"fmt"
)

// Frame represents a single video frame in YUV420 planar format.
//
// This is the unit of work for the whole pipeline: raw frames enter from
// the capture side, transformed frames leave toward the encoder. Strides
// are carried explicitly so frames backed by padded buffers can be
// represented without copying.
type Frame struct {
	Width  int
	Height int
	Y      []byte // Luminance plane
	U      []byte // Chrominance U plane
	V      []byte // Chrominance V plane

	YStride int
	UStride int
	VStride int
}

// NewFrame allocates a tightly-packed YUV420 frame of the given dimensions.
// Both dimensions must be positive and even to respect 4:2:0 chroma
// subsampling.
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("frame dimensions must be even for YUV420: %dx%d", width, height)
	}

	ySize := width * height
	uvSize := (width / 2) * (height / 2)

	return &Frame{
		Width:   width,
		Height:  height,
		Y:       make([]byte, ySize),
		U:       make([]byte, uvSize),
		V:       make([]byte, uvSize),
		YStride: width,
		UStride: width / 2,
		VStride: width / 2,
	}, nil
}

// Validate checks that the frame dimensions and plane sizes are consistent
// with the YUV420 layout. Transforms call this before touching plane data.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("frame cannot be nil")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions: %dx%d", f.Width, f.Height)
	}

	expectedY := f.Width * f.Height
	expectedUV := (f.Width / 2) * (f.Height / 2)

	if len(f.Y) < expectedY {
		return fmt.Errorf("Y plane too small: got %d, expected %d", len(f.Y), expectedY)
	}
	if len(f.U) < expectedUV {
		return fmt.Errorf("U plane too small: got %d, expected %d", len(f.U), expectedUV)
	}
	if len(f.V) < expectedUV {
		return fmt.Errorf("V plane too small: got %d, expected %d", len(f.V), expectedUV)
	}

	return nil
}

// Clone creates a deep copy of the frame. Transforms never mutate their
// input; they clone and write into the copy.
func (f *Frame) Clone() *Frame {
	return &Frame{
		Width:   f.Width,
		Height:  f.Height,
		YStride: f.YStride,
		UStride: f.UStride,
		VStride: f.VStride,
		Y:       append([]byte(nil), f.Y...),
		U:       append([]byte(nil), f.U...),
		V:       append([]byte(nil), f.V...),
	}
}
