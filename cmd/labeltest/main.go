// Command labeltest runs segmentation and label guessing on a karyotype image and outputs results.
package main

import (
	"flag"
	"fmt"
	"os"

	"kics/internal/chromosome"
	"kics/internal/segment"
	"kics/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to karyotype image (TIFF, PNG, or JPEG)")
	threshold := flag.Float64("threshold", 0.5, "Foreground threshold in (0,1)")
	sigma := flag.Float64("sigma", 0.5, "Gaussian blur sigma in pixels")
	invert := flag.Bool("invert", false, "Light chromosomes on dark background")
	minArea := flag.Int("min-area", 0, "Minimum region area in pixels")
	relMin := flag.Int("relmin", chromosome.DefaultRelMin, "Gap ratio separating chromosome pairs")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: labeltest -image <path> [-threshold 0.5] [-sigma 0.5] [-invert] [-min-area 0] [-relmin 4]")
		os.Exit(1)
	}

	params := segment.DefaultParams().WithThreshold(*threshold).WithSigma(*sigma)
	params.Invert = *invert
	params.MinArea = *minArea
	fmt.Printf("Segmentation parameters:\n")
	fmt.Printf("  Threshold: %.2f  Sigma: %.2f  Invert: %v  Min area: %d\n",
		params.Threshold, params.Sigma, params.Invert, params.MinArea)

	fmt.Printf("\nSegmenting %s...\n", *imagePath)
	regions, k, err := segment.File(*imagePath, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Segmentation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels", k.Width(), k.Height())
	if k.DPI > 0 {
		fmt.Printf(", %.0f DPI (%.1f µm/pixel)", k.DPI, k.MicronsPerPixel())
	}
	fmt.Println()

	if len(regions) == 0 {
		fmt.Println("No regions found")
		os.Exit(1)
	}

	boxes := make([]geometry.BBox, len(regions))
	for i, r := range regions {
		boxes[i] = r.BBox
	}
	g := chromosome.NewGuesser()
	g.RelMin = *relMin
	labels, err := g.Guess(boxes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Labelling failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFound %d regions:\n", len(regions))
	fmt.Printf("%-6s %-6s %4s %4s %10s %8s %8s %8s %8s\n",
		"Region", "Label", "Row", "Col", "Area", "RowMin", "ColMin", "RowMax", "ColMax")

	for i, r := range regions {
		l := labels[i]
		fmt.Printf("%-6d %-6s %4d %4d %10d %8d %8d %8d %8d\n",
			r.Label, l, l.Row, l.Col, r.Area, r.BBox.RowMin, r.BBox.ColMin, r.BBox.RowMax, r.BBox.ColMax)
	}

	rows, chromosomes := 0, 0
	for _, l := range labels {
		rows = max(rows, l.Row+1)
		chromosomes = max(chromosomes, l.Major)
	}
	fmt.Printf("\nTotal: %d regions in %d rows, %d chromosomes\n", len(regions), rows, chromosomes)
}
