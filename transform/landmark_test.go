package transform

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedDetector(t *testing.T, faces []Landmarks) *fakeDetector {
	t.Helper()
	det := &fakeDetector{faces: faces}
	require.NoError(t, det.Load(context.Background()))
	return det
}

func centeredFace(width, height int) Landmarks {
	return Landmarks{
		LeftEye:   image.Point{X: width/2 - 8, Y: height / 3},
		RightEye:  image.Point{X: width/2 + 8, Y: height / 3},
		Mouth:     image.Point{X: width / 2, Y: height / 2},
		FaceWidth: width / 3,
	}
}

func TestLandmarkTransformDrawsGlasses(t *testing.T) {
	det := loadedDetector(t, []Landmarks{centeredFace(64, 48)})
	tr, err := NewLandmarkTransform(LandmarkOptions{ShowGlasses: true}, det)
	require.NoError(t, err)

	frame := createTestFrame(t, 64, 48)
	out, err := tr.Apply(frame)
	require.NoError(t, err)

	assert.NotEqual(t, frame.Y, out.Y, "glasses overlay must modify the frame")
}

func TestLandmarkTransformDrawsDrink(t *testing.T) {
	det := loadedDetector(t, []Landmarks{centeredFace(64, 48)})
	tr, err := NewLandmarkTransform(LandmarkOptions{ShowFrench: true}, det)
	require.NoError(t, err)

	frame := createTestFrame(t, 64, 48)
	out, err := tr.Apply(frame)
	require.NoError(t, err)

	assert.NotEqual(t, frame.Y, out.Y, "drink overlay must modify the frame")
}

func TestLandmarkTransformAllFlagsOffPassesThrough(t *testing.T) {
	det := loadedDetector(t, []Landmarks{centeredFace(64, 48)})
	tr, err := NewLandmarkTransform(LandmarkOptions{}, det)
	require.NoError(t, err)

	frame := createTestFrame(t, 64, 48)
	out, err := tr.Apply(frame)
	require.NoError(t, err)

	assert.Equal(t, frame.Y, out.Y)
	assert.Equal(t, frame.U, out.U)
	assert.Equal(t, frame.V, out.V)
}

func TestLandmarkTransformNoFacesPassesThrough(t *testing.T) {
	det := loadedDetector(t, nil)
	tr, err := NewLandmarkTransform(LandmarkOptions{ShowGlasses: true}, det)
	require.NoError(t, err)

	frame := createTestFrame(t, 64, 48)
	out, err := tr.Apply(frame)
	require.NoError(t, err)

	assert.Equal(t, frame.Y, out.Y)
}

func TestLandmarkTransformDetectorFailure(t *testing.T) {
	det := loadedDetector(t, nil)
	det.failure = errModel

	tr, err := NewLandmarkTransform(LandmarkOptions{ShowGlasses: true}, det)
	require.NoError(t, err)

	_, err = tr.Apply(createTestFrame(t, 32, 32))
	assert.ErrorIs(t, err, errModel)
}

func TestLandmarkTransformSetOptions(t *testing.T) {
	det := loadedDetector(t, nil)
	tr, err := NewLandmarkTransform(LandmarkOptions{ShowGlasses: true}, det)
	require.NoError(t, err)

	require.NoError(t, tr.SetOptions(LandmarkOptions{ShowGlasses: true, ShowFrench: true}))
	assert.Equal(t, LandmarkOptions{ShowGlasses: true, ShowFrench: true}, tr.Options())

	assert.Error(t, tr.SetOptions(BlurOptions{Radius: BlurLight}))
	assert.Equal(t, LandmarkOptions{ShowGlasses: true, ShowFrench: true}, tr.Options())
}

func TestLandmarkTransformName(t *testing.T) {
	det := loadedDetector(t, nil)
	tr, err := NewLandmarkTransform(LandmarkOptions{ShowGlasses: true}, det)
	require.NoError(t, err)

	assert.Equal(t, "FaceLandmark(glasses=true,french=false)", tr.Name())
}
