// Package transform implements the per-frame data plane of the videofx
// pipeline: the YUV420 frame model, the Transform contract, and the three
// built-in transform variants (background blur, virtual background
// replacement, face-landmark overlays).
//
// The data plane is intentionally decoupled from the control plane in the
// root package: a Transform knows nothing about tracks, factories, or
// controllers. It is a stateful-but-frame-serial unit that maps one input
// frame plus its current options to one output frame.
//
// The frame processing contract:
//
//	Raw YUV420 Frame → Transform.Apply → Transformed YUV420 Frame
//
// Concrete ML inference (image segmentation, face-landmark detection) is an
// external collaborator behind the Segmenter and FaceDetector interfaces.
// Heuristic fallback implementations are provided so the pipeline stays
// runnable without an ML runtime; callers with a real runtime supply their
// own ModelProvider.
//
// # Options Synchronization
//
// Every transform guards its options with a mutex held for the duration of
// an Apply call. SetOptions therefore takes effect atomically between frame
// boundaries: at most one in-flight frame observes the prior options, and
// no frame ever observes a partially-applied option set.
package transform
