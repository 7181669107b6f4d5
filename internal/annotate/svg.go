// Package annotate exports a karyotype image with labelled region boxes as
// a self-contained SVG document.
package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"image/png"
	"io"
	"os"
	"text/template"

	"kics/internal/errs"
	"kics/internal/estimate"
	"kics/pkg/colorutil"
	"kics/pkg/geometry"
)

// Annotation is one labelled box.
type Annotation struct {
	Tag  string
	Size string
	BBox geometry.BBox
	// Color overrides Options.Color when set.
	Color string
}

// Options controls the SVG layout.
type Options struct {
	SVGWidth    float64 `yaml:"svg_width" validate:"gt=0"`
	Color       string  `yaml:"color" validate:"required"`
	Title       string  `yaml:"title"`
	Desc        string  `yaml:"desc"`
	StrokeWidth float64 `yaml:"stroke_width" validate:"gt=0"`
	FontSize    float64 `yaml:"font_size" validate:"gt=0"`
	// ColorByChromosome colors labelled regions by chromosome number.
	ColorByChromosome bool `yaml:"color_by_chromosome"`
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		SVGWidth:    1000,
		Color:       "red",
		Title:       "Annotated Karyotype",
		Desc:        "Created with kics.",
		StrokeWidth: 1,
		FontSize:    1,
	}
}

// FromRegions builds annotations from estimate table regions. Sizes are
// shown in Mb with a genome size and in percent otherwise.
func FromRegions(regions []estimate.Region, hasGenomeSize bool, opts Options) []Annotation {
	out := make([]Annotation, len(regions))
	for i, r := range regions {
		a := Annotation{Tag: r.Tag.String(), BBox: r.BBox}
		if hasGenomeSize {
			a.Size = fmt.Sprintf("%.1f Mb", r.Size)
		} else {
			a.Size = fmt.Sprintf("%.2f%%", r.Size)
		}
		if l, ok := r.Tag.Label(); ok && opts.ColorByChromosome {
			a.Color = colorutil.Hex(colorutil.Label(l.Major))
		}
		out[i] = a
	}
	return out
}

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{
	"esc": html.EscapeString,
}).Parse(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"
 version="1.2" baseProfile="tiny" viewBox="0 0 {{.Width}} {{.Height}}"
 width="{{.SVGWidth}}" height="{{.SVGHeight}}">
    <title>{{esc .Title}}</title>
    <desc>{{esc .Desc}}</desc>
    <style>
        image {
            image-rendering: crisp-edges;
            image-rendering: -moz-crisp-edges;
            image-rendering: pixelated;
        }
    </style>
    <rect width="100%" height="100%" style="fill:rgba(0, 0, 0, 0.000000)" />
    <defs>
    </defs>
    <g>
        <g id="karyotype">
            <image x="0" y="0" width="{{.Width}}" height="{{.Height}}"
             preserveAspectRatio="none"
             xlink:href="data:image/png;base64,{{.PNG}}"/>
        </g>
        <g id="annotations" fill="{{esc .Color}}" stroke="{{esc .Color}}"
         stroke-width="{{.StrokeWidth}}"
         font-size="{{.FontSize}}%">
{{- range .Annotations}}
<g{{if .Color}} fill="{{esc .Color}}" stroke="{{esc .Color}}"{{end}}>
    <text x="{{.BBox.ColMin}}" y="{{.BBox.RowMin}}" stroke="none" transform="translate(0 -5)">{{esc .Tag}}: {{esc .Size}}</text>
    <rect x="{{.BBox.ColMin}}" y="{{.BBox.RowMin}}" width="{{.BBox.Width}}" height="{{.BBox.Height}}" fill="none" />
</g>
{{- end}}
        </g>
    </g>
</svg>
`))

type svgData struct {
	Width, Height int
	SVGWidth      float64
	SVGHeight     float64
	Title, Desc   string
	Color         string
	StrokeWidth   float64
	FontSize      float64
	PNG           string
	Annotations   []Annotation
}

// WriteSVG writes img with annotations as SVG. The SVG is SVGWidth wide;
// stroke width and font size are given in output units and scaled to image
// pixels.
func WriteSVG(w io.Writer, img image.Image, annotations []Annotation, opts Options) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty image: %w", errs.ErrInvalidInput)
	}
	if opts.SVGWidth <= 0 {
		return fmt.Errorf("svg width %v: %w", opts.SVGWidth, errs.ErrInvalidInput)
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return fmt.Errorf("failed to encode karyotype: %w", err)
	}

	scale := opts.SVGWidth / float64(b.Dx())
	data := svgData{
		Width:       b.Dx(),
		Height:      b.Dy(),
		SVGWidth:    opts.SVGWidth,
		SVGHeight:   scale * float64(b.Dy()),
		Title:       opts.Title,
		Desc:        opts.Desc,
		Color:       opts.Color,
		StrokeWidth: opts.StrokeWidth / scale,
		FontSize:    opts.FontSize * 100 / scale,
		PNG:         base64.StdEncoding.EncodeToString(encoded.Bytes()),
		Annotations: annotations,
	}
	if err := svgTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render SVG: %w", err)
	}
	return nil
}

// ExportSVG writes the annotated karyotype to path.
func ExportSVG(path string, img image.Image, annotations []Annotation, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteSVG(f, img, annotations, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
