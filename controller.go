package videofx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Controller is the control-plane state machine the UI (or any API layer)
// talks to. It owns at most one active TrackProcessor for its track,
// serializes toggle/clear/update requests into a total order, and exposes
// the debounced pending signal.
//
// Control operations block until applied; requests issued concurrently are
// applied one at a time in arrival order, so the final state always
// matches the last request issued.
type Controller struct {
	client  MediaClient
	factory *Factory
	gate    *pendingGate

	// opMu gives control operations their total order. stateMu guards the
	// fields below for lock-free-ish readers; writers hold both.
	opMu    sync.Mutex
	stateMu sync.RWMutex

	track      Track
	active     *TrackProcessor
	activeDesc *Descriptor

	onError func(error)
}

// NewController creates a controller for one local track. A nil config
// uses defaults.
func NewController(client MediaClient, factory *Factory, cfg *Config) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("media client cannot be nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		client:  client,
		factory: factory,
		gate:    newPendingGate(cfg.PendingRevealDelay),
	}, nil
}

// OnError registers a callback for errors surfaced outside a control call,
// currently only ErrTransformDegraded. Invoked once per degradation.
func (c *Controller) OnError(fn func(error)) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.onError = fn
}

// Toggle applies, updates, or clears a transform:
//
//   - no active transform: builds a processor for the descriptor and binds
//     it, enabling the track first if it does not exist yet (enable and
//     bind are one atomic step from the caller's perspective);
//   - active descriptor equals the request: clears ("toggle off");
//   - active kind differs: hot-swaps, disposing the old processor only
//     after the new one is bound, so output never falls back to raw frames;
//   - same kind, different options: updates the running transform in
//     place, no rebinding or disposal.
//
// A descriptor whose options describe no visible effect clears as well.
// On failure the controller keeps its last known-good state.
func (c *Controller) Toggle(desc Descriptor) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.gate.begin()
	defer c.gate.end()

	if err := desc.Valid(); err != nil {
		return err
	}

	cur := c.CurrentDescriptor()

	logrus.WithFields(logrus.Fields{
		"requested": desc.String(),
		"active":    cur != nil,
	}).Debug("Toggle requested")

	if desc.Options.Noop() || (cur != nil && cur.Equal(desc)) {
		return c.clearActive()
	}
	if cur == nil {
		return c.activate(desc)
	}
	if cur.Kind != desc.Kind {
		return c.switchKind(desc)
	}
	return c.updateInPlace(desc)
}

// Clear unconditionally stops and disposes any active processor. Clearing
// an already-clear controller is a no-op.
func (c *Controller) Clear() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.gate.begin()
	defer c.gate.end()

	return c.clearActive()
}

// IsActive reports whether the active descriptor equals desc by structural
// equality.
func (c *Controller) IsActive(desc Descriptor) bool {
	cur := c.CurrentDescriptor()
	return cur != nil && cur.Equal(desc)
}

// CurrentDescriptor returns a copy of the active descriptor, or nil when
// no transform is active.
func (c *Controller) CurrentDescriptor() *Descriptor {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.activeDesc == nil {
		return nil
	}
	d := *c.activeDesc
	return &d
}

// Pending returns the raw pending flag; it flips synchronously with each
// control operation.
func (c *Controller) Pending() bool {
	return c.gate.isPending()
}

// PendingSignal returns the debounced pending stream: true only appears if
// an operation outlives the configured reveal delay, and false follows the
// instant the operation completes.
func (c *Controller) PendingSignal() <-chan bool {
	return c.gate.signal()
}

// activate builds and binds a processor when nothing is active. Called
// with opMu held.
func (c *Controller) activate(desc Descriptor) error {
	p, err := c.factory.CreateProcessor(desc)
	if err != nil {
		return err
	}
	p.OnDegraded(c.degradedHandler(p))

	c.stateMu.RLock()
	track := c.track
	c.stateMu.RUnlock()

	if track == nil {
		// No live track to attach to afterward: the new processor rides
		// along in the enabling call itself.
		track, err = c.client.EnableTrack(p)
		if err != nil {
			p.Dispose()
			if !errors.Is(err, ErrTrackUnavailable) {
				err = fmt.Errorf("%w: %v", ErrTrackUnavailable, err)
			}
			return err
		}
		c.stateMu.Lock()
		c.track = track
		c.stateMu.Unlock()
	}

	if err := p.Attach(track); err != nil {
		p.Dispose()
		return err
	}

	c.setActive(p, &desc)

	logrus.WithFields(logrus.Fields{
		"descriptor": desc.String(),
		"processor":  p.ID(),
	}).Info("Transform activated")

	return nil
}

// switchKind hot-swaps the active processor for one of a different kind.
// The old processor stays bound until the replacement is confirmed bound,
// so no frame is ever emitted raw during the switch. Called with opMu
// held.
func (c *Controller) switchKind(desc Descriptor) error {
	p, err := c.factory.CreateProcessor(desc)
	if err != nil {
		return err
	}
	p.OnDegraded(c.degradedHandler(p))

	c.stateMu.RLock()
	track := c.track
	old := c.active
	c.stateMu.RUnlock()

	// Binding the replacement atomically displaces the old processor on
	// the track; only then is the old one disposed.
	if err := p.Attach(track); err != nil {
		p.Dispose()
		return err
	}

	c.setActive(p, &desc)

	if old != nil {
		if err := old.Dispose(); err != nil {
			logrus.WithFields(logrus.Fields{
				"processor": old.ID(),
				"error":     err,
			}).Warn("Disposing replaced processor failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"descriptor": desc.String(),
		"processor":  p.ID(),
	}).Info("Transform switched")

	return nil
}

// updateInPlace applies new options to the running processor. Called with
// opMu held.
func (c *Controller) updateInPlace(desc Descriptor) error {
	c.stateMu.RLock()
	active := c.active
	c.stateMu.RUnlock()

	if err := active.UpdateOptions(desc.Options); err != nil {
		return err
	}
	c.setActive(active, &desc)

	logrus.WithFields(logrus.Fields{
		"descriptor": desc.String(),
		"processor":  active.ID(),
	}).Info("Transform options updated")

	return nil
}

// clearActive stops and disposes the active processor. Called with opMu
// held.
func (c *Controller) clearActive() error {
	c.stateMu.RLock()
	old := c.active
	c.stateMu.RUnlock()

	if old == nil {
		return nil
	}

	c.setActive(nil, nil)

	if err := old.Dispose(); err != nil && !errors.Is(err, ErrDisposed) {
		logrus.WithFields(logrus.Fields{
			"processor": old.ID(),
			"error":     err,
		}).Warn("Disposing cleared processor failed")
	}

	logrus.WithFields(logrus.Fields{
		"processor": old.ID(),
	}).Info("Transform cleared")

	return nil
}

// setActive maintains the invariant that the processor and descriptor are
// both set or both nil.
func (c *Controller) setActive(p *TrackProcessor, desc *Descriptor) {
	c.stateMu.Lock()
	c.active = p
	c.activeDesc = desc
	c.stateMu.Unlock()
}

// degradedHandler reacts to a processor reporting sustained transform
// failure: if it is still the active one, the controller drops it and
// surfaces the error once through OnError.
func (c *Controller) degradedHandler(p *TrackProcessor) func(error) {
	return func(err error) {
		c.opMu.Lock()

		c.stateMu.RLock()
		isActive := c.active == p
		onError := c.onError
		c.stateMu.RUnlock()

		if isActive {
			c.setActive(nil, nil)
			p.Dispose()
		}
		c.opMu.Unlock()

		logrus.WithFields(logrus.Fields{
			"processor": p.ID(),
			"error":     err,
		}).Error("Active transform degraded")

		if onError != nil {
			onError(err)
		}
	}
}
