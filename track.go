package videofx

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/videofx/transform"
)

// Track is the binding surface of a live outgoing video stream. The
// surrounding media client owns capture and encoding; the videofx layer
// only drives these three primitives.
//
// A track carries at most one bound processor at a time: binding a new
// processor atomically replaces the previous one, so raw frames never have
// two consumers.
type Track interface {
	// BindProcessor routes the track's raw frames through the processor.
	// Binding replaces any previously bound processor.
	BindProcessor(p *TrackProcessor) error
	// UnbindProcessor removes the bound processor; raw frames flow to the
	// sink untouched afterward. No-op when nothing is bound.
	UnbindProcessor()
	// CurrentProcessor returns the bound processor, or nil.
	CurrentProcessor() *TrackProcessor
}

// MediaClient is the slice of the surrounding conferencing client the
// controller needs: the ability to enable the local camera track,
// optionally pre-bound with a processor so enabling and binding are one
// atomic step.
type MediaClient interface {
	// EnableTrack enables the local camera track. A non-nil initial
	// processor is bound before the first frame is delivered.
	EnableTrack(initial *TrackProcessor) (Track, error)
}

// FrameSink receives the track's outgoing (possibly transformed) frames,
// typically feeding the encoder.
type FrameSink func(frame *transform.Frame)

// LocalTrack is a push-based Track implementation: the capture side calls
// WriteFrame once per raw frame, and the transformed frame is handed to
// the sink. Frame delivery is serialized by the caller, matching webcam
// capture which produces one frame at a time.
type LocalTrack struct {
	mu   sync.RWMutex
	proc *TrackProcessor
	sink FrameSink
}

// NewLocalTrack creates a track delivering outgoing frames to sink.
func NewLocalTrack(sink FrameSink) (*LocalTrack, error) {
	if sink == nil {
		return nil, fmt.Errorf("frame sink cannot be nil")
	}
	return &LocalTrack{sink: sink}, nil
}

// BindProcessor routes frames through p, replacing any prior processor.
func (t *LocalTrack) BindProcessor(p *TrackProcessor) error {
	if p == nil {
		return fmt.Errorf("processor cannot be nil")
	}

	t.mu.Lock()
	prev := t.proc
	t.proc = p
	t.mu.Unlock()

	if prev != nil && prev != p {
		logrus.WithFields(logrus.Fields{
			"previous_processor": prev.ID(),
			"new_processor":      p.ID(),
		}).Debug("Track processor replaced")
	}
	return nil
}

// UnbindProcessor removes the bound processor.
func (t *LocalTrack) UnbindProcessor() {
	t.mu.Lock()
	t.proc = nil
	t.mu.Unlock()
}

// CurrentProcessor returns the bound processor, or nil.
func (t *LocalTrack) CurrentProcessor() *TrackProcessor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.proc
}

// WriteFrame pushes one raw frame through the bound processor (if any) to
// the sink. Called by the capture side, one frame at a time.
func (t *LocalTrack) WriteFrame(frame *transform.Frame) {
	t.mu.RLock()
	proc := t.proc
	t.mu.RUnlock()

	if proc != nil {
		frame = proc.ProcessFrame(frame)
	}
	t.sink(frame)
}

// LoopbackClient is a MediaClient that serves a single LocalTrack, enough
// for demos and embedding applications that manage capture themselves.
type LoopbackClient struct {
	mu    sync.Mutex
	sink  FrameSink
	track *LocalTrack
}

// NewLoopbackClient creates a client whose track delivers frames to sink.
func NewLoopbackClient(sink FrameSink) *LoopbackClient {
	return &LoopbackClient{sink: sink}
}

// EnableTrack returns the client's track, creating it on first use. The
// initial processor, if any, is bound before the track is returned, so no
// caller can observe an enabled track without its processor.
func (c *LoopbackClient) EnableTrack(initial *TrackProcessor) (Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		track, err := NewLocalTrack(c.sink)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTrackUnavailable, err)
		}
		c.track = track
		logrus.WithFields(logrus.Fields{
			"has_initial_processor": initial != nil,
		}).Info("Local track enabled")
	}

	if initial != nil {
		if err := c.track.BindProcessor(initial); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTrackUnavailable, err)
		}
	}
	return c.track, nil
}

// Track returns the enabled track, or nil if EnableTrack has not run.
func (c *LoopbackClient) Track() *LocalTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track
}
