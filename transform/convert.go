package transform

import (
	"image"
	"image/color"
)

// Colorspace conversion between YUV420 frames and RGBA images.
//
// Conversion uses the BT.601 studio-swing coefficients, which is what
// consumer webcams deliver. Overlay transforms render into RGBA (where 2D
// drawing libraries operate) and convert back; mask compositing stays in
// YUV and never pays this cost.

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ToRGBA converts the frame to an RGBA image.
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			yv := int(f.Y[y*f.YStride+x])
			uv := int(f.U[(y/2)*f.UStride+(x/2)]) - 128
			vv := int(f.V[(y/2)*f.VStride+(x/2)]) - 128

			c := 298 * (yv - 16)
			r := (c + 409*vv + 128) >> 8
			g := (c - 100*uv - 208*vv + 128) >> 8
			b := (c + 516*uv + 128) >> 8

			off := img.PixOffset(x, y)
			img.Pix[off+0] = clampByte(r)
			img.Pix[off+1] = clampByte(g)
			img.Pix[off+2] = clampByte(b)
			img.Pix[off+3] = 255
		}
	}

	return img
}

// FrameFromImage converts an RGBA-convertible image into a tightly-packed
// YUV420 frame. Chroma planes are subsampled by averaging each 2x2 block.
func FrameFromImage(img image.Image) (*Frame, error) {
	bounds := img.Bounds()
	width := bounds.Dx() &^ 1
	height := bounds.Dy() &^ 1

	frame, err := NewFrame(width, height)
	if err != nil {
		return nil, err
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := rgbAt(img, bounds.Min.X+x, bounds.Min.Y+y)
			yv := (66*r + 129*g + 25*b + 128) >> 8
			frame.Y[y*frame.YStride+x] = clampByte(yv + 16)
		}
	}

	for cy := 0; cy < height/2; cy++ {
		for cx := 0; cx < width/2; cx++ {
			var sumU, sumV int
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					r, g, b := rgbAt(img, bounds.Min.X+cx*2+dx, bounds.Min.Y+cy*2+dy)
					sumU += ((-38*r - 74*g + 112*b + 128) >> 8) + 128
					sumV += ((112*r - 94*g - 18*b + 128) >> 8) + 128
				}
			}
			frame.U[cy*frame.UStride+cx] = clampByte(sumU / 4)
			frame.V[cy*frame.VStride+cx] = clampByte(sumV / 4)
		}
	}

	return frame, nil
}

func rgbAt(img image.Image, x, y int) (int, int, int) {
	c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return int(c.R), int(c.G), int(c.B)
}
