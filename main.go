// Package main provides the entry point for the kics command line.
package main

import (
	"os"

	"kics/internal/cli"
	"kics/internal/config"
	kimage "kics/internal/image"
	"kics/internal/segment"
)

func main() {
	os.Exit(cli.Execute(segmentFile, os.Args[1:]))
}

// segmentFile runs the OpenCV segmentation for the label command.
func segmentFile(path string, c config.SegmentConfig) ([]cli.Region, *kimage.Karyotype, error) {
	p := segment.Params{
		Sigma:       c.Sigma,
		Threshold:   c.Threshold,
		Invert:      c.Invert,
		MinArea:     c.MinArea,
		CloseKernel: c.CloseKernel,
	}
	found, k, err := segment.File(path, p)
	if err != nil {
		return nil, nil, err
	}
	regions := make([]cli.Region, len(found))
	for i, r := range found {
		regions[i] = cli.Region{Area: r.Area, BBox: r.BBox}
	}
	return regions, k, nil
}
