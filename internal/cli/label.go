package cli

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/spf13/cobra"

	"kics/internal/annotate"
	"kics/internal/chromosome"
	"kics/internal/errs"
	"kics/internal/estimate"
	kimage "kics/internal/image"
	"kics/internal/series"
	"kics/pkg/colorutil"
	"kics/pkg/geometry"
)

func newLabelCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label IMAGE",
		Short: "Segment a karyotype image and label its chromosomes",
		Long: `Segment a karyotype image, guess a label for every chromosome from the
layout of the karyogram and estimate chromosome sizes from their areas.

Sizes are reported in Mb when a genome size is given and in percent of the
genome otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runLabel,
	}

	f := cmd.Flags()
	f.Float64("threshold", 0.5, "foreground threshold in (0,1)")
	f.Float64("sigma", 0.5, "Gaussian blur sigma in pixels; 0 disables")
	f.Bool("invert", false, "treat light objects on a dark background as foreground")
	f.Int("min-area", 0, "ignore regions smaller than this many pixels")
	f.Float64("genome-size", 0, "genome size in Mb")
	f.String("svg", "", "write the annotated karyotype as SVG")
	f.String("estimates", "", "write per-chromosome size estimates in bp as TSV")
	f.String("scaffolds", "", "scaffold sizes used to scale estimates without a genome size")
	f.Bool("color-by-chromosome", false, "give every chromosome its own color in the SVG")
	f.String("overlay", "", "write the karyotype with regions highlighted as PNG")
	return cmd
}

func (a *App) runLabel(cmd *cobra.Command, args []string) error {
	if a.Segment == nil {
		return errors.New("segmentation is not available in this build")
	}
	if !kimage.IsSupportedFormat(args[0]) {
		return fmt.Errorf("%s is not one of %v: %w", args[0], kimage.SupportedFormats(), errs.ErrInvalidInput)
	}
	f := cmd.Flags()
	segCfg := a.cfg.Segment
	if f.Changed("threshold") {
		segCfg.Threshold, _ = f.GetFloat64("threshold")
	}
	if f.Changed("sigma") {
		segCfg.Sigma, _ = f.GetFloat64("sigma")
	}
	if f.Changed("invert") {
		segCfg.Invert, _ = f.GetBool("invert")
	}
	if f.Changed("min-area") {
		segCfg.MinArea, _ = f.GetInt("min-area")
	}
	genomeSize := a.cfg.Estimate.GenomeSize
	if f.Changed("genome-size") {
		genomeSize, _ = f.GetFloat64("genome-size")
	}

	regions, k, err := a.Segment(args[0], segCfg)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		return fmt.Errorf("no regions found in %s: %w", args[0], errs.ErrInvalidInput)
	}
	img := k.Image
	a.logger.Info("image segmented", "path", args[0], "regions", len(regions), "dpi", k.DPI)

	boxes := make([]geometry.BBox, len(regions))
	for i, r := range regions {
		boxes[i] = r.BBox
	}
	guesser := &chromosome.Guesser{RelMin: a.cfg.Estimate.RelMin, Logger: a.logger}
	labels, err := guesser.Guess(boxes)
	if err != nil {
		return err
	}

	// Present regions in label order.
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int { return labels[x].Compare(labels[y]) })
	sortedBoxes := make([]geometry.BBox, len(order))
	areas := make([]int, len(order))
	sortedLabels := make([]chromosome.Label, len(order))
	for k, i := range order {
		sortedBoxes[k] = regions[i].BBox
		areas[k] = regions[i].Area
		sortedLabels[k] = labels[i]
	}

	table, err := estimate.FromLabels(sortedBoxes, areas, sortedLabels, genomeSize)
	if err != nil {
		return err
	}
	if err := renderRegions(a.Out, table, k.MicronsPerPixel()); err != nil {
		return err
	}

	if path, _ := f.GetString("svg"); path != "" {
		opts := a.cfg.Export
		if f.Changed("color-by-chromosome") {
			opts.ColorByChromosome, _ = f.GetBool("color-by-chromosome")
		}
		anns := annotate.FromRegions(table.Regions(), table.HasGenomeSize(), opts)
		if err := annotate.ExportSVG(path, img, anns, opts); err != nil {
			return err
		}
		a.logger.Info("annotated karyotype written", "path", path)
	}

	if path, _ := f.GetString("overlay"); path != "" {
		if err := kimage.SavePNG(path, overlay(img, table.Regions())); err != nil {
			return err
		}
		a.logger.Info("overlay written", "path", path)
	}

	if path, _ := f.GetString("estimates"); path != "" {
		var total float64
		if scaffoldsPath, _ := f.GetString("scaffolds"); scaffoldsPath != "" {
			scaffolds, err := a.seriesReader().ReadFile(scaffoldsPath, series.ScaffoldSizes)
			if err != nil {
				return err
			}
			total = scaffolds.Total()
		}
		est, err := table.Estimates(total)
		if err != nil {
			return err
		}
		if err := series.WriteFile(path, est); err != nil {
			return err
		}
		a.logger.Info("estimates written", "path", path, "chromosomes", est.Len())
	}
	return nil
}

// overlay highlights every region, colored by chromosome number.
func overlay(img image.Image, regions []estimate.Region) *image.RGBA {
	highlights := make([]kimage.Highlight, len(regions))
	for i, r := range regions {
		c := colorutil.Red
		if l, ok := r.Tag.Label(); ok {
			c = colorutil.Label(l.Major)
		}
		highlights[i] = kimage.Highlight{Box: r.BBox, Color: c}
	}
	return kimage.NewComposite(img).Render(highlights)
}
