package transform

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Mask is a per-pixel person/background segmentation at luma resolution.
// Alpha is row-major Width x Height: 255 means person, 0 means background,
// intermediate values feather the boundary.
type Mask struct {
	Width  int
	Height int
	Alpha  []byte
}

// At returns the mask value at (x, y), clamping out-of-range coordinates
// to the nearest edge.
func (m *Mask) At(x, y int) byte {
	if x < 0 {
		x = 0
	} else if x >= m.Width {
		x = m.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.Height {
		y = m.Height - 1
	}
	return m.Alpha[y*m.Width+x]
}

// Landmarks holds the facial anchor points an overlay transform needs.
// Coordinates are in luma-plane pixels.
type Landmarks struct {
	LeftEye   image.Point
	RightEye  image.Point
	Mouth     image.Point
	FaceWidth int
}

// Segmenter produces person/background masks for frames. Implementations
// wrap a concrete segmentation model; Load may be slow (model download,
// GPU warm-up) and is always invoked off the construction path.
type Segmenter interface {
	// Load prepares the underlying model. It is called once, asynchronously,
	// after construction.
	Load(ctx context.Context) error
	// Ready reports whether Load has completed successfully.
	Ready() bool
	// Segment computes the person mask for a frame.
	Segment(frame *Frame) (*Mask, error)
	// Close releases model resources.
	Close() error
}

// FaceDetector locates face landmarks in frames. Same lifecycle contract
// as Segmenter.
type FaceDetector interface {
	Load(ctx context.Context) error
	Ready() bool
	// Detect returns landmarks for each detected face, possibly none.
	Detect(frame *Frame) ([]Landmarks, error)
	Close() error
}

// ModelProvider constructs the inference collaborators a transform needs
// and answers the process-wide capability probe. A real deployment plugs in
// a provider backed by its ML runtime; HeuristicProvider is the built-in
// fallback.
type ModelProvider interface {
	// Supported reports whether this provider can run on the current
	// runtime at all. Queried once at startup and cached by the factory.
	Supported() bool
	// NewSegmenter constructs a fresh, unloaded segmenter.
	NewSegmenter() (Segmenter, error)
	// NewFaceDetector constructs a fresh, unloaded face detector.
	NewFaceDetector() (FaceDetector, error)
}

// HeuristicProvider is a ModelProvider with no ML runtime behind it: the
// segmenter assumes a centered subject and the detector assumes a centered
// face. Output quality is what you would expect, but the full pipeline is
// exercisable on any machine.
type HeuristicProvider struct{}

// Supported always reports true; the heuristics have no runtime demands.
func (HeuristicProvider) Supported() bool { return true }

// NewSegmenter returns a centered-ellipse segmenter.
func (HeuristicProvider) NewSegmenter() (Segmenter, error) {
	return &ellipseSegmenter{}, nil
}

// NewFaceDetector returns a centered-face detector.
func (HeuristicProvider) NewFaceDetector() (FaceDetector, error) {
	return &centerFaceDetector{}, nil
}

// ellipseSegmenter marks a centered ellipse covering roughly the middle
// 55% of the frame as "person", with a feathered edge band.
type ellipseSegmenter struct {
	ready atomic.Bool
}

func (s *ellipseSegmenter) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.ready.Store(true)
	logrus.WithFields(logrus.Fields{
		"segmenter": "heuristic-ellipse",
	}).Debug("Segmenter loaded")
	return nil
}

func (s *ellipseSegmenter) Ready() bool { return s.ready.Load() }

func (s *ellipseSegmenter) Segment(frame *Frame) (*Mask, error) {
	if !s.ready.Load() {
		return nil, fmt.Errorf("segmenter not loaded")
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	mask := &Mask{
		Width:  frame.Width,
		Height: frame.Height,
		Alpha:  make([]byte, frame.Width*frame.Height),
	}

	cx := float64(frame.Width) / 2
	cy := float64(frame.Height) * 0.55
	rx := float64(frame.Width) * 0.28
	ry := float64(frame.Height) * 0.42

	// Feather between the inner ellipse (fully person) and the outer one.
	const feather = 1.25

	for y := 0; y < frame.Height; y++ {
		dy := (float64(y) - cy) / ry
		for x := 0; x < frame.Width; x++ {
			dx := (float64(x) - cx) / rx
			d := dx*dx + dy*dy
			switch {
			case d <= 1.0:
				mask.Alpha[y*frame.Width+x] = 255
			case d >= feather:
				// background, leave zero
			default:
				t := (feather - d) / (feather - 1.0)
				mask.Alpha[y*frame.Width+x] = byte(t * 255)
			}
		}
	}

	return mask, nil
}

func (s *ellipseSegmenter) Close() error {
	s.ready.Store(false)
	return nil
}

// centerFaceDetector reports a single face occupying the upper-center of
// the frame, sized proportionally to the frame width.
type centerFaceDetector struct {
	ready atomic.Bool
}

func (d *centerFaceDetector) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.ready.Store(true)
	logrus.WithFields(logrus.Fields{
		"detector": "heuristic-center",
	}).Debug("Face detector loaded")
	return nil
}

func (d *centerFaceDetector) Ready() bool { return d.ready.Load() }

func (d *centerFaceDetector) Detect(frame *Frame) ([]Landmarks, error) {
	if !d.ready.Load() {
		return nil, fmt.Errorf("face detector not loaded")
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	faceWidth := frame.Width / 4
	cx := frame.Width / 2
	eyeY := frame.Height * 2 / 5

	return []Landmarks{{
		LeftEye:   image.Point{X: cx - faceWidth/4, Y: eyeY},
		RightEye:  image.Point{X: cx + faceWidth/4, Y: eyeY},
		Mouth:     image.Point{X: cx, Y: eyeY + faceWidth/2},
		FaceWidth: faceWidth,
	}}, nil
}

func (d *centerFaceDetector) Close() error {
	d.ready.Store(false)
	return nil
}
