package videofx

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/videofx/transform"
)

// ProcessorState tracks where a TrackProcessor is in its lifecycle.
type ProcessorState int

const (
	// StateUnbound indicates the processor has never been attached.
	StateUnbound ProcessorState = iota
	// StateStarting indicates the processor is attached but its transform
	// is still warming up; frames pass through unmodified.
	StateStarting
	// StateRunning indicates the transform is ready and frames are being
	// transformed.
	StateRunning
	// StateStopped indicates the processor was detached and may be
	// re-attached.
	StateStopped
	// StateDisposed indicates resources are released; the processor is
	// permanently unusable.
	StateDisposed
)

// String returns the state name for logging.
func (s ProcessorState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ProcessorStats is a snapshot of a processor's frame counters.
type ProcessorStats struct {
	FramesIn          uint64
	FramesTransformed uint64
	Passthrough       uint64
	TransientFailures uint64
	LastError         error
}

// TrackProcessor binds one Transform to at most one live track and runs
// the per-frame loop while bound.
//
// Lock ordering: frameMu before mu, always. The frame path holds frameMu
// for the whole frame; Dispose acquires frameMu first, which is what makes
// "await in-flight frame, then release" a single lock acquisition.
type TrackProcessor struct {
	id string
	tr transform.Transform

	degradedThreshold int

	mu      sync.Mutex
	state   ProcessorState
	track   Track
	lastErr error

	frameMu          sync.Mutex
	lastOut          *transform.Frame
	failures         int
	degradedReported bool

	onDegraded func(error)

	framesIn          atomic.Uint64
	framesTransformed atomic.Uint64
	passthrough       atomic.Uint64
	transientFailures atomic.Uint64
}

// NewTrackProcessor wraps a transform in an unbound processor. A nil
// config uses defaults.
func NewTrackProcessor(tr transform.Transform, cfg *Config) (*TrackProcessor, error) {
	if tr == nil {
		return nil, fmt.Errorf("transform cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &TrackProcessor{
		id:                uuid.NewString(),
		tr:                tr,
		degradedThreshold: cfg.DegradedThreshold,
		state:             StateUnbound,
	}

	logrus.WithFields(logrus.Fields{
		"processor": p.id,
		"transform": tr.Name(),
	}).Info("Track processor created")

	return p, nil
}

// ID returns the processor's unique identifier, used for log correlation.
func (p *TrackProcessor) ID() string { return p.id }

// State returns the current lifecycle state.
func (p *TrackProcessor) State() ProcessorState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ready reports whether the underlying transform has finished warming up.
func (p *TrackProcessor) Ready() bool { return p.tr.Ready() }

// Descriptor returns the current kind+options snapshot. It reflects the
// latest UpdateOptions once that call has returned.
func (p *TrackProcessor) Descriptor() Descriptor {
	return NewDescriptor(p.tr.Options())
}

// OnDegraded registers the callback invoked once if the transform fails
// past the configured consecutive-failure threshold. The callback runs on
// its own goroutine, off the frame path.
func (p *TrackProcessor) OnDegraded(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDegraded = fn
}

// Attach binds the processor to a track and begins the per-frame loop.
// Until the transform reports ready, frames pass through unmodified.
// Attaching to the track it is already bound to is a no-op; attaching
// while bound to a different track fails with ErrAlreadyBound.
func (p *TrackProcessor) Attach(track Track) error {
	if track == nil {
		return fmt.Errorf("track cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateDisposed {
		return ErrDisposed
	}
	if p.track == track {
		return nil
	}
	if p.track != nil {
		return ErrAlreadyBound
	}

	// The track may already carry this processor when it was pre-bound
	// through the enabling call.
	if track.CurrentProcessor() != p {
		if err := track.BindProcessor(p); err != nil {
			return fmt.Errorf("bind processor: %w", err)
		}
	}
	p.track = track
	if p.tr.Ready() {
		p.state = StateRunning
	} else {
		p.state = StateStarting
	}

	logrus.WithFields(logrus.Fields{
		"processor": p.id,
		"transform": p.tr.Name(),
		"state":     p.state.String(),
	}).Info("Track processor attached")

	return nil
}

// Detach stops the per-frame loop and releases the track binding.
// Detaching an unbound processor is a no-op.
func (p *TrackProcessor) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateDisposed {
		return ErrDisposed
	}
	p.detachLocked()
	return nil
}

// detachLocked releases the track binding. It only unbinds the track if
// this processor is still its current one, so disposing a processor that
// was hot-swapped away never unbinds its replacement. Called with p.mu
// held.
func (p *TrackProcessor) detachLocked() {
	if p.track == nil {
		return
	}
	if p.track.CurrentProcessor() == p {
		p.track.UnbindProcessor()
	}
	p.track = nil
	p.state = StateStopped

	logrus.WithFields(logrus.Fields{
		"processor": p.id,
		"transform": p.tr.Name(),
	}).Info("Track processor detached")
}

// UpdateOptions applies new options to the running transform without
// rebinding. The change lands atomically between frame boundaries: at most
// one in-flight frame uses the prior options.
func (p *TrackProcessor) UpdateOptions(opts transform.Options) error {
	p.mu.Lock()
	if p.state == StateDisposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	p.mu.Unlock()

	if err := p.tr.SetOptions(opts); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"processor": p.id,
		"transform": p.tr.Name(),
	}).Debug("Processor options updated")

	return nil
}

// Dispose detaches if bound and releases transform resources. The
// transition is: stop accepting frames, await the in-flight frame, detach,
// then close the transform. Any later call on the processor fails with
// ErrDisposed.
func (p *TrackProcessor) Dispose() error {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateDisposed {
		return ErrDisposed
	}

	p.detachLocked()
	p.state = StateDisposed
	p.lastOut = nil

	err := p.tr.Close()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"processor": p.id,
			"error":     err,
		}).Warn("Transform close failed during dispose")
	}

	logrus.WithFields(logrus.Fields{
		"processor": p.id,
		"transform": p.tr.Name(),
	}).Info("Track processor disposed")

	return err
}

// ProcessFrame runs one frame through the transform. Called by the track,
// one frame at a time; two transform invocations never overlap for the
// same processor.
//
// Failure policy: a single failed frame re-emits the previous output and
// bumps a counter; only when failures exceed the configured threshold does
// the processor detach and report ErrTransformDegraded, once.
func (p *TrackProcessor) ProcessFrame(frame *transform.Frame) *transform.Frame {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	p.framesIn.Add(1)

	p.mu.Lock()
	state := p.state
	p.mu.Unlock()

	if state != StateStarting && state != StateRunning {
		p.passthrough.Add(1)
		return frame
	}

	if !p.tr.Ready() {
		// Warm-up policy: never block or drop frames waiting for the model.
		p.passthrough.Add(1)
		return frame
	}

	if state == StateStarting {
		p.mu.Lock()
		if p.state == StateStarting {
			p.state = StateRunning
			logrus.WithFields(logrus.Fields{
				"processor": p.id,
				"transform": p.tr.Name(),
			}).Info("Transform ready, processor running")
		}
		p.mu.Unlock()
	}

	out, err := p.tr.Apply(frame)
	if err != nil {
		p.transientFailures.Add(1)
		p.failures++
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"processor":            p.id,
			"transform":            p.tr.Name(),
			"consecutive_failures": p.failures,
			"error":                err,
		}).Debug("Transform failed for frame")

		if p.failures >= p.degradedThreshold && !p.degradedReported {
			p.degradedReported = true
			p.degrade(err)
		}

		if p.lastOut != nil {
			return p.lastOut.Clone()
		}
		return frame
	}

	p.failures = 0
	p.framesTransformed.Add(1)
	p.lastOut = out
	return out
}

// degrade detaches the processor and reports ErrTransformDegraded exactly
// once. Called from the frame path with frameMu held.
func (p *TrackProcessor) degrade(cause error) {
	degErr := fmt.Errorf("%w: %d consecutive transform failures: %v",
		ErrTransformDegraded, p.failures, cause)

	logrus.WithFields(logrus.Fields{
		"processor":            p.id,
		"transform":            p.tr.Name(),
		"consecutive_failures": p.failures,
		"error":                cause,
	}).Error("Transform degraded, detaching processor")

	p.mu.Lock()
	p.detachLocked()
	fn := p.onDegraded
	p.mu.Unlock()

	if fn != nil {
		// Off the frame path: the callback may dispose this processor,
		// which waits on frameMu.
		go fn(degErr)
	}
}

// Stats returns a snapshot of the processor's frame counters.
func (p *TrackProcessor) Stats() ProcessorStats {
	p.mu.Lock()
	lastErr := p.lastErr
	p.mu.Unlock()

	return ProcessorStats{
		FramesIn:          p.framesIn.Load(),
		FramesTransformed: p.framesTransformed.Load(),
		Passthrough:       p.passthrough.Load(),
		TransientFailures: p.transientFailures.Load(),
		LastError:         lastErr,
	}
}
