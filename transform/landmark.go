package transform

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
)

// LandmarkTransform draws playful overlays (glasses, a drink icon) anchored
// to detected face landmarks.
type LandmarkTransform struct {
	mu   sync.Mutex
	opts LandmarkOptions
	det  FaceDetector
}

// NewLandmarkTransform creates a face-landmark overlay transform. The
// detector is owned by the transform and closed with it.
func NewLandmarkTransform(opts LandmarkOptions, det FaceDetector) (*LandmarkTransform, error) {
	if err := checkKind(KindFaceLandmark, opts); err != nil {
		return nil, err
	}
	if det == nil {
		return nil, fmt.Errorf("face detector cannot be nil")
	}

	return &LandmarkTransform{
		opts: opts,
		det:  det,
	}, nil
}

// Kind returns KindFaceLandmark.
func (t *LandmarkTransform) Kind() Kind { return KindFaceLandmark }

// Ready reports whether the face-landmark model has loaded.
func (t *LandmarkTransform) Ready() bool { return t.det.Ready() }

// Name returns a log-friendly identification.
func (t *LandmarkTransform) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("FaceLandmark(glasses=%t,french=%t)", t.opts.ShowGlasses, t.opts.ShowFrench)
}

// Options returns the current options snapshot.
func (t *LandmarkTransform) Options() Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// SetOptions swaps the overlay flags in place.
func (t *LandmarkTransform) SetOptions(opts Options) error {
	if err := checkKind(KindFaceLandmark, opts); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts = opts.(LandmarkOptions)
	return nil
}

// Apply draws the enabled overlays onto every detected face.
func (t *LandmarkTransform) Apply(frame *Frame) (*Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := frame.Validate(); err != nil {
		return nil, err
	}

	if !t.opts.ShowGlasses && !t.opts.ShowFrench {
		return frame.Clone(), nil
	}

	faces, err := t.det.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(faces) == 0 {
		return frame.Clone(), nil
	}

	img := frame.ToRGBA()
	dc := gg.NewContextForRGBA(img)

	for _, face := range faces {
		if t.opts.ShowGlasses {
			drawGlasses(dc, face)
		}
		if t.opts.ShowFrench {
			drawDrink(dc, face)
		}
	}

	out, err := FrameFromImage(img)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the face-landmark model.
func (t *LandmarkTransform) Close() error {
	return t.det.Close()
}

// drawGlasses renders round black glasses over the eye landmarks.
func drawGlasses(dc *gg.Context, face Landmarks) {
	lensR := float64(face.FaceWidth) / 6
	lineW := lensR / 4
	if lineW < 1 {
		lineW = 1
	}

	lx := float64(face.LeftEye.X)
	ly := float64(face.LeftEye.Y)
	rx := float64(face.RightEye.X)
	ry := float64(face.RightEye.Y)

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(lineW)

	dc.DrawCircle(lx, ly, lensR)
	dc.Stroke()
	dc.DrawCircle(rx, ry, lensR)
	dc.Stroke()

	// Bridge between the lenses.
	dc.DrawLine(lx+lensR, ly, rx-lensR, ry)
	dc.Stroke()

	// Temples out toward the edge of the face.
	temple := float64(face.FaceWidth) / 3
	dc.DrawLine(lx-lensR, ly, lx-lensR-temple, ly-lensR/2)
	dc.Stroke()
	dc.DrawLine(rx+lensR, ry, rx+lensR+temple, ry-lensR/2)
	dc.Stroke()
}

// drawDrink renders a small stemmed glass beside the mouth landmark.
func drawDrink(dc *gg.Context, face Landmarks) {
	size := float64(face.FaceWidth) / 3
	mx := float64(face.Mouth.X) + float64(face.FaceWidth)/2
	my := float64(face.Mouth.Y)

	// Bowl.
	dc.SetRGB(0.55, 0.0, 0.13)
	dc.MoveTo(mx-size/3, my-size)
	dc.LineTo(mx+size/3, my-size)
	dc.LineTo(mx, my-size/2)
	dc.ClosePath()
	dc.Fill()

	// Stem and base.
	dc.SetRGB(0.15, 0.15, 0.15)
	dc.SetLineWidth(2)
	dc.DrawLine(mx, my-size/2, mx, my)
	dc.Stroke()
	dc.DrawLine(mx-size/4, my, mx+size/4, my)
	dc.Stroke()
}
