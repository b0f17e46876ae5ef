package videofx

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/videofx/transform"
)

// Factory constructs unbound TrackProcessors from descriptors, wiring in
// the model provider and configuration.
type Factory struct {
	provider transform.ModelProvider
	loader   transform.ImageLoader
	cfg      *Config

	supportOnce sync.Once
	supported   bool
}

// NewFactory creates a processor factory. A nil provider falls back to the
// built-in heuristic models, a nil loader to FileImageLoader, a nil config
// to defaults.
func NewFactory(provider transform.ModelProvider, loader transform.ImageLoader, cfg *Config) (*Factory, error) {
	if provider == nil {
		provider = transform.HeuristicProvider{}
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Factory{
		provider: provider,
		loader:   loader,
		cfg:      cfg,
	}, nil
}

// IsSupported reports whether the current runtime can run any transform at
// all. The provider is probed once and the answer cached for the life of
// the process.
func (f *Factory) IsSupported() bool {
	f.supportOnce.Do(func() {
		f.supported = f.provider.Supported()
		logrus.WithFields(logrus.Fields{
			"supported": f.supported,
		}).Info("Effects runtime capability probed")
	})
	return f.supported
}

// CreateProcessor constructs a new unbound TrackProcessor for the
// descriptor. Model warm-up is kicked off asynchronously; the returned
// processor reports readiness via Ready() and passes frames through until
// warm-up completes.
func (f *Factory) CreateProcessor(desc Descriptor) (*TrackProcessor, error) {
	if err := desc.Valid(); err != nil {
		return nil, err
	}
	if !f.IsSupported() {
		return nil, fmt.Errorf("%w: runtime lacks segmentation support", ErrUnsupportedDescriptor)
	}

	tr, warmup, err := f.buildTransform(desc)
	if err != nil {
		return nil, err
	}

	p, err := NewTrackProcessor(tr, f.cfg)
	if err != nil {
		tr.Close()
		return nil, err
	}

	// Warm-up must never block construction.
	go f.warmup(p.ID(), tr.Name(), warmup)

	return p, nil
}

// loadable is the slice of a model's lifecycle the warm-up path needs.
type loadable interface {
	Load(ctx context.Context) error
}

// buildTransform constructs the transform variant named by the descriptor
// along with the model to warm up.
func (f *Factory) buildTransform(desc Descriptor) (transform.Transform, loadable, error) {
	switch opts := desc.Options.(type) {
	case transform.BlurOptions:
		seg, err := f.provider.NewSegmenter()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedDescriptor, err)
		}
		tr, err := transform.NewBlurTransform(opts, seg,
			f.cfg.BlurLightRadius, f.cfg.BlurNormalRadius)
		if err != nil {
			seg.Close()
			return nil, nil, err
		}
		return tr, seg, nil

	case transform.BackgroundOptions:
		seg, err := f.provider.NewSegmenter()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedDescriptor, err)
		}
		tr, err := transform.NewBackgroundTransform(opts, seg, f.loader)
		if err != nil {
			seg.Close()
			return nil, nil, err
		}
		return tr, seg, nil

	case transform.LandmarkOptions:
		det, err := f.provider.NewFaceDetector()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedDescriptor, err)
		}
		tr, err := transform.NewLandmarkTransform(opts, det)
		if err != nil {
			det.Close()
			return nil, nil, err
		}
		return tr, det, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown options type for kind %q", ErrUnsupportedDescriptor, desc.Kind)
	}
}

// warmup loads a model in the background, bounded by the configured
// timeout. A warm-up failure leaves the processor in passthrough; frames
// keep flowing untouched.
func (f *Factory) warmup(processorID, name string, model loadable) {
	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.WarmupTimeout)
	defer cancel()

	if err := model.Load(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"processor": processorID,
			"transform": name,
			"error":     err,
		}).Error("Model warm-up failed, processor stays in passthrough")
		return
	}

	logrus.WithFields(logrus.Fields{
		"processor": processorID,
		"transform": name,
	}).Debug("Model warm-up complete")
}
