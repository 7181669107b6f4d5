package annotate

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kics/internal/chromosome"
	"kics/internal/errs"
	"kics/internal/estimate"
	"kics/pkg/geometry"
)

func karyotype() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestWriteSVG(t *testing.T) {
	anns := []Annotation{
		{Tag: "01a", Size: "12.5 Mb", BBox: geometry.NewBBox(10, 20, 60, 40)},
		{Tag: "X<Y", Size: "1.00%", BBox: geometry.NewBBox(5, 100, 15, 130), Color: "#00ff00"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, karyotype(), anns, DefaultOptions()))
	svg := buf.String()

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.Contains(t, svg, `viewBox="0 0 200 100"`)
	assert.Contains(t, svg, `width="1000" height="500"`)
	// Stroke width and font size are scaled by 1/5.
	assert.Contains(t, svg, `stroke-width="0.2"`)
	assert.Contains(t, svg, `font-size="20%"`)
	assert.Contains(t, svg, `<text x="20" y="10" stroke="none" transform="translate(0 -5)">01a: 12.5 Mb</text>`)
	assert.Contains(t, svg, `<rect x="20" y="10" width="20" height="50" fill="none" />`)
	assert.Contains(t, svg, `X&lt;Y: 1.00%`)
	assert.Contains(t, svg, `<g fill="#00ff00" stroke="#00ff00">`)
	assert.Equal(t, 2, strings.Count(svg, `fill="none"`))

	m := regexp.MustCompile(`base64,([A-Za-z0-9+/=]+)"`).FindStringSubmatch(svg)
	require.Len(t, m, 2)
	raw, err := base64.StdEncoding.DecodeString(m[1])
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), decoded.Bounds())
}

func TestWriteSVG_Rejects(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSVG(&buf, image.NewGray(image.Rect(0, 0, 0, 0)), nil, DefaultOptions())
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	opts := DefaultOptions()
	opts.SVGWidth = 0
	assert.ErrorIs(t, WriteSVG(&buf, karyotype(), nil, opts), errs.ErrInvalidInput)
}

func TestFromRegions(t *testing.T) {
	regions := []estimate.Region{
		{ID: 1, Tag: estimate.LabelTag(chromosome.Label{Major: 3, Minor: 1}), Size: 12.345, BBox: geometry.NewBBox(1, 2, 3, 4)},
		{ID: 2, Tag: estimate.TextTag("debris"), Size: 0.5},
	}

	anns := FromRegions(regions, true, DefaultOptions())
	assert.Equal(t, "03b", anns[0].Tag)
	assert.Equal(t, "12.3 Mb", anns[0].Size)
	assert.Equal(t, geometry.NewBBox(1, 2, 3, 4), anns[0].BBox)
	assert.Empty(t, anns[0].Color)

	opts := DefaultOptions()
	opts.ColorByChromosome = true
	anns = FromRegions(regions, false, opts)
	assert.Equal(t, "12.35%", anns[0].Size)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, anns[0].Color)
	assert.Empty(t, anns[1].Color, "text tags keep the default color")
}

func TestExportSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotated.svg")
	require.NoError(t, ExportSVG(path, karyotype(), nil, DefaultOptions()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<title>Annotated Karyotype</title>")
}
