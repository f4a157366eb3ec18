// Package render rasterizes simulation shapes into plain RGB pixel
// buffers. It is the only place aware of the drawing backend; everything
// upstream deals in Frame values.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Frame is an H×W×3 pixel buffer in height-major order:
// Pix[(y*W+x)*3+c] with c ∈ {R,G,B}.
type Frame struct {
	H, W int
	Pix  []uint8
}

// Clone returns an independent copy of the frame.
func (f Frame) Clone() Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return Frame{H: f.H, W: f.W, Pix: pix}
}

// At returns the RGB triple at (x, y).
func (f Frame) At(x, y int) (r, g, b uint8) {
	i := (y*f.W + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Circle is a filled disc to draw.
type Circle struct {
	X, Y, R float64
	Color   color.RGBA
}

// Segment is a thick line to draw. Thickness matches the collision
// radius of the physical segment, so the stroke width is twice that.
type Segment struct {
	X1, Y1, X2, Y2 float64
	Thickness      float64
	Color          color.RGBA
}

// Renderer owns an off-screen drawing context of fixed size.
type Renderer struct {
	w, h       int
	background color.RGBA
	dc         *gg.Context
}

func New(w, h int, background color.RGBA) *Renderer {
	return &Renderer{
		w:          w,
		h:          h,
		background: background,
		dc:         gg.NewContext(w, h),
	}
}

func (r *Renderer) Width() int  { return r.w }
func (r *Renderer) Height() int { return r.h }

// Rasterize clears the context to the background color, draws every
// segment then every circle, and returns the resulting frame.
func (r *Renderer) Rasterize(circles []Circle, segments []Segment) Frame {
	r.dc.SetColor(r.background)
	r.dc.Clear()

	for _, s := range segments {
		r.dc.SetColor(s.Color)
		r.dc.SetLineWidth(s.Thickness * 2)
		r.dc.DrawLine(s.X1, s.Y1, s.X2, s.Y2)
		r.dc.Stroke()
	}
	for _, c := range circles {
		r.dc.SetColor(c.Color)
		r.dc.DrawCircle(c.X, c.Y, c.R)
		r.dc.Fill()
	}

	return r.frame()
}

func (r *Renderer) frame() Frame {
	img := r.dc.Image().(*image.RGBA)
	pix := make([]uint8, r.h*r.w*3)
	for y := 0; y < r.h; y++ {
		src := img.PixOffset(0, y)
		dst := (y * r.w) * 3
		for x := 0; x < r.w; x++ {
			pix[dst] = img.Pix[src]
			pix[dst+1] = img.Pix[src+1]
			pix[dst+2] = img.Pix[src+2]
			src += 4
			dst += 3
		}
	}
	return Frame{H: r.h, W: r.w, Pix: pix}
}
