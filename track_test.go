package videofx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/videofx/transform"
)

func TestLocalTrackRoutesFrames(t *testing.T) {
	var delivered []*transform.Frame
	track, err := NewLocalTrack(func(frame *transform.Frame) {
		delivered = append(delivered, frame)
	})
	require.NoError(t, err)

	// Unbound: raw frames reach the sink untouched.
	raw := newTestFrame(t)
	track.WriteFrame(raw)
	require.Len(t, delivered, 1)
	assert.Same(t, raw, delivered[0])

	// Bound: frames are transformed before reaching the sink.
	p := mustProcessor(t, newFakeTransform(42))
	require.NoError(t, p.Attach(track))

	track.WriteFrame(newTestFrame(t))
	require.Len(t, delivered, 2)
	assert.Equal(t, byte(42), delivered[1].Y[0])

	// Unbound again: back to raw.
	require.NoError(t, p.Detach())
	raw2 := newTestFrame(t)
	track.WriteFrame(raw2)
	require.Len(t, delivered, 3)
	assert.Same(t, raw2, delivered[2])
}

func TestLocalTrackBindReplaces(t *testing.T) {
	track, err := NewLocalTrack(func(*transform.Frame) {})
	require.NoError(t, err)

	p1 := mustProcessor(t, newFakeTransform(1))
	p2 := mustProcessor(t, newFakeTransform(2))

	require.NoError(t, track.BindProcessor(p1))
	require.NoError(t, track.BindProcessor(p2))
	assert.Same(t, p2, track.CurrentProcessor(), "binding replaces the prior processor")

	assert.Error(t, track.BindProcessor(nil))

	track.UnbindProcessor()
	assert.Nil(t, track.CurrentProcessor())
}

func TestLocalTrackRequiresSink(t *testing.T) {
	_, err := NewLocalTrack(nil)
	assert.Error(t, err)
}

func TestLoopbackClientEnableTrack(t *testing.T) {
	client := NewLoopbackClient(func(*transform.Frame) {})
	assert.Nil(t, client.Track())

	p := mustProcessor(t, newFakeTransform(1))
	track, err := client.EnableTrack(p)
	require.NoError(t, err)
	assert.Same(t, p, track.CurrentProcessor(), "initial processor bound before track is returned")

	// Enabling again returns the same track.
	again, err := client.EnableTrack(nil)
	require.NoError(t, err)
	assert.Same(t, track, again)
}
