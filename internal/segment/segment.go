// Package segment finds chromosome regions in a karyotype image.
//
// The image is converted to grayscale, optionally inverted, blurred and
// thresholded; every 4-connected foreground component becomes a region.
// Chromosomes are expected to be dark on a light background unless Invert
// is set.
package segment

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/go-playground/validator/v10"
	"gocv.io/x/gocv"

	"kics/internal/errs"
	kimage "kics/internal/image"
	"kics/pkg/geometry"
)

// Params holds the preprocessing parameters.
type Params struct {
	// Sigma is the Gaussian blur standard deviation in pixels; 0 disables.
	Sigma float64 `json:"sigma" yaml:"sigma" validate:"gte=0,lte=50"`
	// Threshold in (0,1): pixels with blurred intensity below 1-Threshold
	// are foreground.
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"gt=0,lt=1"`
	Invert    bool    `json:"invert" yaml:"invert"`
	// MinArea drops smaller regions.
	MinArea int `json:"min_area" yaml:"min_area" validate:"gte=0"`
	// CloseKernel is the size of an elliptic closing applied to the mask
	// to join fragmented chromosomes; values below 2 disable it.
	CloseKernel int `json:"close_kernel" yaml:"close_kernel" validate:"gte=0,lte=99"`
}

// DefaultParams returns the default preprocessing parameters.
func DefaultParams() Params {
	return Params{Sigma: 0.5, Threshold: 0.5}
}

// WithThreshold returns a copy with the given threshold.
func (p Params) WithThreshold(t float64) Params {
	p.Threshold = t
	return p
}

// WithSigma returns a copy with the given blur sigma.
func (p Params) WithSigma(sigma float64) Params {
	p.Sigma = sigma
	return p
}

var validate = validator.New()

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("segmentation parameters: %v: %w", err, errs.ErrInvalidInput)
	}
	return nil
}

// Region is one connected foreground component.
type Region struct {
	Label int           `json:"label"`
	Area  int           `json:"area"`
	BBox  geometry.BBox `json:"bbox"`
}

// File loads the image at path and segments it.
func File(path string, p Params) ([]Region, *kimage.Karyotype, error) {
	k, err := kimage.Load(path)
	if err != nil {
		return nil, nil, err
	}
	regions, err := Segment(k.Gray(false), p)
	if err != nil {
		return nil, nil, err
	}
	return regions, k, nil
}

// Segment returns the regions of gray, largest first.
func Segment(gray *image.Gray, p Params) ([]Region, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := gray.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image: %w", errs.ErrInvalidInput)
	}
	level, ok := foregroundLevel(p.Threshold)
	if !ok {
		return nil, nil
	}

	src, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, packed(gray))
	if err != nil {
		return nil, fmt.Errorf("failed to create image matrix: %w", err)
	}
	defer src.Close()

	if p.Invert {
		gocv.BitwiseNot(src, &src)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if p.Sigma > 0 {
		gocv.GaussianBlur(src, &blurred, image.Point{}, p.Sigma, p.Sigma, gocv.BorderReplicate)
	} else {
		src.CopyTo(&blurred)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blurred, &mask, float32(level), 255, gocv.ThresholdBinaryInv)

	if p.CloseKernel >= 2 {
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: p.CloseKernel, Y: p.CloseKernel})
		defer kernel.Close()
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStatsWithParams(mask, &labels, &stats, &centroids,
		4, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	// Label 0 is the background.
	comps := make([]component, 0, max(n-1, 0))
	for l := 1; l < n; l++ {
		comps = append(comps, component{
			label:  l,
			left:   int(stats.GetIntAt(l, statLeft)),
			top:    int(stats.GetIntAt(l, statTop)),
			width:  int(stats.GetIntAt(l, statWidth)),
			height: int(stats.GetIntAt(l, statHeight)),
			area:   int(stats.GetIntAt(l, statArea)),
		})
	}
	return regionsFromComponents(comps, p.MinArea), nil
}

// Columns of the connected component statistics matrix.
const (
	statLeft = iota
	statTop
	statWidth
	statHeight
	statArea
)

type component struct {
	label                    int
	left, top, width, height int
	area                     int
}

func regionsFromComponents(comps []component, minArea int) []Region {
	regions := make([]Region, 0, len(comps))
	for _, c := range comps {
		if c.area < minArea || c.area == 0 {
			continue
		}
		rect := geometry.RectInt{X: c.left, Y: c.top, Width: c.width, Height: c.height}
		regions = append(regions, Region{Label: c.label, Area: c.area, BBox: rect.BBox()})
	}
	slices.SortStableFunc(regions, func(a, b Region) int {
		return cmp.Compare(b.Area, a.Area)
	})
	return regions
}

// foregroundLevel returns the largest 8-bit intensity that still counts as
// foreground, i.e. the largest v with v/255 < 1-threshold.
func foregroundLevel(threshold float64) (int, bool) {
	level := int(math.Ceil(255*(1-threshold))) - 1
	if level < 0 {
		return 0, false
	}
	return min(level, 255), true
}

// packed returns the pixels of gray without row padding.
func packed(gray *image.Gray) []byte {
	b := gray.Bounds()
	if gray.Stride == b.Dx() && b.Min == (image.Point{}) {
		return gray.Pix
	}
	out := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := gray.PixOffset(b.Min.X, y)
		out = append(out, gray.Pix[off:off+b.Dx()]...)
	}
	return out
}
