// Package image provides karyotype image loading, grayscale conversion and
// overlay rendering.
package image

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// Karyotype is a loaded karyotype image.
type Karyotype struct {
	Path  string      // Original file path
	Image image.Image // Decoded image data
	DPI   float64     // Resolution from TIFF metadata, zero if unknown
}

// Load decodes a karyotype image from path.
func Load(path string) (*Karyotype, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	k := &Karyotype{Path: path, Image: img}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if dpi, err := readTIFFDPI(file); err == nil {
				k.DPI = dpi
			}
		}
	}

	return k, nil
}

// Width returns the image width in pixels.
func (k *Karyotype) Width() int {
	if k.Image == nil {
		return 0
	}
	return k.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (k *Karyotype) Height() int {
	if k.Image == nil {
		return 0
	}
	return k.Image.Bounds().Dy()
}

// MicronsPerPixel converts the resolution to a pixel pitch. It returns zero
// when the DPI is unknown.
func (k *Karyotype) MicronsPerPixel() float64 {
	if k.DPI <= 0 {
		return 0
	}
	return 25400 / k.DPI
}

// Gray returns the image as 8-bit grayscale with its origin at (0, 0),
// optionally inverted.
func (k *Karyotype) Gray(invert bool) *image.Gray {
	return ToGray(k.Image, invert)
}

// ToGray converts img to 8-bit grayscale with its origin at (0, 0).
func ToGray(img image.Image, invert bool) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	if invert {
		for i, v := range gray.Pix {
			gray.Pix[i] = 255 - v
		}
	}
	return gray
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}

// readTIFFDPI extracts the X (or Y) resolution from the first IFD.
func readTIFFDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}

	var order binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	if _, err := r.Seek(int64(order.Uint32(header[4:8])), io.SeekStart); err != nil {
		return 0, err
	}
	var numEntries uint16
	if err := binary.Read(r, order, &numEntries); err != nil {
		return 0, err
	}

	type rational struct{ offset int64 }
	var xRes, yRes *rational
	var resUnit uint16 = 2 // inches

	entry := make([]byte, 12)
	for i := uint16(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		fieldType := order.Uint16(entry[2:4])
		value := order.Uint32(entry[8:12])

		switch {
		case tag == 282 && fieldType == 5: // XResolution, RATIONAL
			xRes = &rational{int64(value)}
		case tag == 283 && fieldType == 5: // YResolution, RATIONAL
			yRes = &rational{int64(value)}
		case tag == 296 && fieldType == 3: // ResolutionUnit, SHORT
			resUnit = order.Uint16(entry[8:10])
		}
	}

	res := xRes
	if res == nil {
		res = yRes
	}
	if res == nil {
		return 0, fmt.Errorf("no resolution tags found")
	}
	if _, err := r.Seek(res.offset, io.SeekStart); err != nil {
		return 0, err
	}
	var frac [2]uint32
	if err := binary.Read(r, order, &frac); err != nil {
		return 0, err
	}
	if frac[1] == 0 || frac[0] == 0 {
		return 0, fmt.Errorf("DPI is zero")
	}

	dpi := float64(frac[0]) / float64(frac[1])
	if resUnit == 3 { // centimeters
		dpi *= 2.54
	}
	return dpi, nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
