package winfilter

import (
	"image"
	"image/color"
)

// Image is an opaque RGB image with 8 bits per channel.
// Pixels are stored row by row, three bytes per pixel.
type Image struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewImage returns a black image of the given size.
// Negative dimensions are treated as zero.
func NewImage(width, height int) *Image {
	width = max(width, 0)
	height = max(height, 0)
	return &Image{
		Pix:    make([]uint8, width*height*3),
		Width:  width,
		Height: height,
	}
}

// FromImage converts any image to an RGB Image. Alpha is dropped and the
// straight (non-premultiplied) color of each pixel is kept, so translucent
// pixels are not darkened. Fully transparent pixels of premultiplied sources
// carry no color and become black.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())

	if s, ok := src.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := s.PixOffset(b.Min.X, y)
			j := img.PixOffset(0, y-b.Min.Y)
			for x := b.Min.X; x < b.Max.X; x, i, j = x+1, i+4, j+3 {
				copy(img.Pix[j:j+3], s.Pix[i:i+3])
			}
		}
		return img
	}

	j := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			img.Pix[j+0], img.Pix[j+1], img.Pix[j+2] = c.R, c.G, c.B
			j += 3
		}
	}
	return img
}

// Empty reports whether the image has no pixels.
func (m *Image) Empty() bool {
	return m.Width <= 0 || m.Height <= 0
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	c := &Image{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y*m.Width + x) * 3
}

// RGBAt returns the channel values at (x, y).
func (m *Image) RGBAt(x, y int) [3]uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return [3]uint8{}
	}
	i := m.PixOffset(x, y)
	return [3]uint8{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
}

// SetRGB sets the channel values at (x, y).
func (m *Image) SetRGB(x, y int, c [3]uint8) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	i := m.PixOffset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c[0], c[1], c[2]
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	c := m.RGBAt(x, y)
	return color.RGBA{c[0], c[1], c[2], 0xff}
}

// Set implements draw.Image. Alpha is ignored.
func (m *Image) Set(x, y int, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	m.SetRGB(x, y, [3]uint8{rgba.R, rgba.G, rgba.B})
}

// Grayscale returns a copy of m where every channel holds the pixel's luma.
func (m *Image) Grayscale() *Image {
	dst := NewImage(m.Width, m.Height)
	for i := 0; i < len(m.Pix); i += 3 {
		y := color.GrayModel.Convert(color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}).(color.Gray).Y
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = y, y, y
	}
	return dst
}

// Negative returns the RGB negative of m.
func (m *Image) Negative() *Image {
	dst := NewImage(m.Width, m.Height)
	for i, v := range m.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}
