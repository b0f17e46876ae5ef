package transform

import (
	"fmt"
	"image"
	_ "image/jpeg" // background image decoding
	_ "image/png"  // background image decoding
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// ImageLoader resolves an opaque background image reference into a decoded
// image. The core treats references as opaque; what they mean (file path,
// asset key, URL) is the embedding application's business.
type ImageLoader func(ref string) (image.Image, error)

// FileImageLoader resolves references as filesystem paths to PNG or JPEG
// images. This is the default loader.
func FileImageLoader(ref string) (image.Image, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open background image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background image %q: %w", ref, err)
	}
	return img, nil
}

// BackgroundTransform replaces the background region of each frame with a
// configured replacement image.
type BackgroundTransform struct {
	mu     sync.Mutex
	opts   BackgroundOptions
	seg    Segmenter
	loader ImageLoader

	// Scaled background cache, keyed by the (ref, frame size) it was
	// prepared for. Invalidated on option change or frame size change.
	bg       *Frame
	bgRef    string
	bgWidth  int
	bgHeight int
}

// NewBackgroundTransform creates a virtual background transform. A nil
// loader falls back to FileImageLoader.
func NewBackgroundTransform(opts BackgroundOptions, seg Segmenter, loader ImageLoader) (*BackgroundTransform, error) {
	if err := checkKind(KindVirtualBackground, opts); err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, fmt.Errorf("segmenter cannot be nil")
	}
	if loader == nil {
		loader = FileImageLoader
	}

	return &BackgroundTransform{
		opts:   opts,
		seg:    seg,
		loader: loader,
	}, nil
}

// Kind returns KindVirtualBackground.
func (t *BackgroundTransform) Kind() Kind { return KindVirtualBackground }

// Ready reports whether the segmentation model has loaded.
func (t *BackgroundTransform) Ready() bool { return t.seg.Ready() }

// Name returns a log-friendly identification.
func (t *BackgroundTransform) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("VirtualBackground(%s)", t.opts.ImageRef)
}

// Options returns the current options snapshot.
func (t *BackgroundTransform) Options() Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// SetOptions swaps the background reference in place. The scaled image is
// re-prepared lazily on the next frame.
func (t *BackgroundTransform) SetOptions(opts Options) error {
	if err := checkKind(KindVirtualBackground, opts); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts = opts.(BackgroundOptions)
	return nil
}

// Apply composites the person region of the frame over the background
// image.
func (t *BackgroundTransform) Apply(frame *Frame) (*Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := frame.Validate(); err != nil {
		return nil, err
	}

	bg, err := t.preparedBackground(frame.Width, frame.Height)
	if err != nil {
		return nil, err
	}

	mask, err := t.seg.Segment(frame)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	out := bg.Clone()
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

// preparedBackground returns the background image decoded, scaled to the
// frame size and converted to YUV420, caching the result until the
// reference or the frame geometry changes. Called with t.mu held.
func (t *BackgroundTransform) preparedBackground(width, height int) (*Frame, error) {
	if t.bg != nil && t.bgRef == t.opts.ImageRef && t.bgWidth == width && t.bgHeight == height {
		return t.bg, nil
	}

	img, err := t.loader(t.opts.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("load background %q: %w", t.opts.ImageRef, err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	bg, err := FrameFromImage(scaled)
	if err != nil {
		return nil, fmt.Errorf("convert background %q: %w", t.opts.ImageRef, err)
	}

	logrus.WithFields(logrus.Fields{
		"image_ref": t.opts.ImageRef,
		"width":     width,
		"height":    height,
	}).Debug("Background image prepared")

	t.bg = bg
	t.bgRef = t.opts.ImageRef
	t.bgWidth = width
	t.bgHeight = height
	return t.bg, nil
}

// Close releases the segmentation model and the cached background.
func (t *BackgroundTransform) Close() error {
	t.mu.Lock()
	t.bg = nil
	t.mu.Unlock()
	return t.seg.Close()
}
