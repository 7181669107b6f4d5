package image

import (
	"image"
	"image/color"
	"image/draw"

	"kics/pkg/geometry"
)

// BlendMode specifies how highlight colors are combined with the karyotype.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	default:
		return "Unknown"
	}
}

// Highlight is a colored box drawn over the karyotype.
type Highlight struct {
	Box   geometry.BBox
	Color color.Color
}

// Composite renders highlights over a base image.
type Composite struct {
	Base    image.Image
	Mode    BlendMode
	Opacity float64 // 0.0 - 1.0
}

// NewComposite creates a composite over base with multiply blending.
func NewComposite(base image.Image) *Composite {
	return &Composite{Base: base, Mode: BlendMultiply, Opacity: 0.6}
}

// Render produces the base image with every highlight blended in. Boxes are
// clipped to the image.
func (c *Composite) Render(highlights []Highlight) *image.RGBA {
	b := c.Base.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(result, result.Bounds(), c.Base, b.Min, draw.Src)

	for _, h := range highlights {
		r := image.Rect(h.Box.ColMin, h.Box.RowMin, h.Box.ColMax, h.Box.RowMax).Intersect(result.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				result.Set(x, y, c.blend(result.At(x, y), h.Color))
			}
		}
	}
	return result
}

// blend performs the blend operation between two colors.
func (c *Composite) blend(dst, src color.Color) color.Color {
	sr, sg, sb, sa := src.RGBA()
	dr, dg, db, da := dst.RGBA()

	sf := [4]float64{float64(sr) / 65535.0, float64(sg) / 65535.0, float64(sb) / 65535.0, float64(sa) / 65535.0}
	df := [4]float64{float64(dr) / 65535.0, float64(dg) / 65535.0, float64(db) / 65535.0, float64(da) / 65535.0}

	var rf [3]float64
	for i := 0; i < 3; i++ {
		switch c.Mode {
		case BlendMultiply:
			rf[i] = sf[i] * df[i]
		case BlendScreen:
			rf[i] = 1 - (1-sf[i])*(1-df[i])
		default:
			rf[i] = sf[i]
		}
	}

	alpha := sf[3] * c.Opacity
	return color.RGBA{
		R: uint8(clamp(rf[0]*alpha+df[0]*(1-alpha), 0, 1) * 255),
		G: uint8(clamp(rf[1]*alpha+df[1]*(1-alpha), 0, 1) * 255),
		B: uint8(clamp(rf[2]*alpha+df[2]*(1-alpha), 0, 1) * 255),
		A: uint8(clamp(alpha+df[3]*(1-alpha), 0, 1) * 255),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
