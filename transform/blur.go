package transform

import (
	"fmt"
	"sync"
)

// BlurTransform blurs the background region of each frame while keeping
// the segmented person sharp.
type BlurTransform struct {
	mu   sync.Mutex
	opts BlurOptions
	seg  Segmenter

	lightRadius  int
	normalRadius int
}

// NewBlurTransform creates a background blur transform. The pixel radii
// for the Light and Normal settings come from configuration; the segmenter
// is owned by the transform and closed with it.
func NewBlurTransform(opts BlurOptions, seg Segmenter, lightRadius, normalRadius int) (*BlurTransform, error) {
	if err := checkKind(KindBlur, opts); err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, fmt.Errorf("segmenter cannot be nil")
	}
	if lightRadius < 1 || normalRadius < lightRadius {
		return nil, fmt.Errorf("invalid blur radii: light=%d normal=%d", lightRadius, normalRadius)
	}

	return &BlurTransform{
		opts:         opts,
		seg:          seg,
		lightRadius:  lightRadius,
		normalRadius: normalRadius,
	}, nil
}

// Kind returns KindBlur.
func (t *BlurTransform) Kind() Kind { return KindBlur }

// Ready reports whether the segmentation model has loaded.
func (t *BlurTransform) Ready() bool { return t.seg.Ready() }

// Name returns a log-friendly identification.
func (t *BlurTransform) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("Blur(%s)", t.opts.Radius)
}

// Options returns the current options snapshot.
func (t *BlurTransform) Options() Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// SetOptions swaps the blur radius in place. Blocks until the in-flight
// frame, if any, has finished with the prior options.
func (t *BlurTransform) SetOptions(opts Options) error {
	if err := checkKind(KindBlur, opts); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts = opts.(BlurOptions)
	return nil
}

// Apply blurs the background region of the frame.
func (t *BlurTransform) Apply(frame *Frame) (*Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := frame.Validate(); err != nil {
		return nil, err
	}

	radius := 0
	switch t.opts.Radius {
	case BlurLight:
		radius = t.lightRadius
	case BlurNormal:
		radius = t.normalRadius
	}
	if radius == 0 {
		return frame.Clone(), nil
	}

	mask, err := t.seg.Segment(frame)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	out := frame.Clone()
	blurPlane(out.Y, frame.Width, frame.Height, out.YStride, radius)
	blurPlane(out.U, frame.Width/2, frame.Height/2, out.UStride, radius/2+1)
	blurPlane(out.V, frame.Width/2, frame.Height/2, out.VStride, radius/2+1)

	// Blend the sharp person back over the blurred frame.
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			a := int(mask.At(x, y))
			if a == 0 {
				continue
			}
			i := y*out.YStride + x
			out.Y[i] = byte((a*int(frame.Y[y*frame.YStride+x]) + (255-a)*int(out.Y[i])) / 255)
		}
	}
	for cy := 0; cy < frame.Height/2; cy++ {
		for cx := 0; cx < frame.Width/2; cx++ {
			a := int(mask.At(cx*2, cy*2))
			if a == 0 {
				continue
			}
			ui := cy*out.UStride + cx
			vi := cy*out.VStride + cx
			out.U[ui] = byte((a*int(frame.U[cy*frame.UStride+cx]) + (255-a)*int(out.U[ui])) / 255)
			out.V[vi] = byte((a*int(frame.V[cy*frame.VStride+cx]) + (255-a)*int(out.V[vi])) / 255)
		}
	}

	return out, nil
}

// Close releases the segmentation model.
func (t *BlurTransform) Close() error {
	return t.seg.Close()
}

// blurPlane applies a separable box blur to one plane in place.
func blurPlane(plane []byte, width, height, stride, radius int) {
	if radius < 1 || width == 0 || height == 0 {
		return
	}

	tmp := make([]byte, len(plane))
	copy(tmp, plane)

	// Horizontal pass: tmp -> plane.
	for y := 0; y < height; y++ {
		row := y * stride
		for x := 0; x < width; x++ {
			sum, count := 0, 0
			for dx := -radius; dx <= radius; dx++ {
				nx := x + dx
				if nx < 0 || nx >= width {
					continue
				}
				sum += int(tmp[row+nx])
				count++
			}
			plane[row+x] = byte(sum / count)
		}
	}

	// Vertical pass: plane -> tmp, then copy back.
	copy(tmp, plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum, count := 0, 0
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				sum += int(tmp[ny*stride+x])
				count++
			}
			plane[y*stride+x] = byte(sum / count)
		}
	}
}
