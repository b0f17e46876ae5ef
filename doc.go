// Package videofx implements a pluggable per-frame video effects pipeline
// for a conferencing participant's outgoing camera track: background blur,
// virtual background replacement, and face-landmark overlays, hot-swappable
// on a live track without dropping frames or restarting capture.
//
// # Getting Started
//
// Wire a controller to the surrounding media client and toggle transforms
// by descriptor:
//
//	factory, err := videofx.NewFactory(nil, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := videofx.NewLoopbackClient(func(frame *transform.Frame) {
//	    encoder.Write(frame)
//	})
//
//	ctrl, err := videofx.NewController(client, factory, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Enable the camera with blur active, in one atomic step.
//	err = ctrl.Toggle(videofx.NewDescriptor(transform.BlurOptions{
//	    Radius: transform.BlurNormal,
//	}))
//
//	// Same descriptor again toggles it back off.
//	err = ctrl.Toggle(videofx.NewDescriptor(transform.BlurOptions{
//	    Radius: transform.BlurNormal,
//	}))
//
// # Core Types
//
//   - [Descriptor]: comparable, canonically serializable description of
//     "which transform, with which options"
//   - [Factory]: builds unbound processors from descriptors, probes runtime
//     capability once
//   - [TrackProcessor]: binds one transform to one live track and runs the
//     frame-serial transform loop
//   - [Controller]: serialized toggle/switch/update/clear state machine
//     with a debounced pending signal
//
// # Ownership
//
// The controller exclusively owns its active TrackProcessor; a processor
// exclusively owns its transform and any segmentation or landmark model
// behind it, released on Dispose. A track has at most one bound processor
// at any moment, so raw frames never have two consumers.
//
// Concrete ML inference is an external collaborator; see the transform
// package's Segmenter and FaceDetector interfaces.
package videofx
