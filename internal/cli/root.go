// Package cli implements the kics command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kics/internal/config"
	kimage "kics/internal/image"
	"kics/internal/logging"
	"kics/internal/metrics"
	"kics/internal/series"
	"kics/pkg/geometry"
)

// Region is a segmented chromosome candidate.
type Region struct {
	Area int
	BBox geometry.BBox
}

// Segmenter loads the image at path and returns its regions, largest first.
type Segmenter func(path string, p config.SegmentConfig) ([]Region, *kimage.Karyotype, error)

// App holds the state shared by the commands of one invocation.
type App struct {
	Out io.Writer
	Err io.Writer
	// Segment is required by the label command.
	Segment Segmenter

	cfg      config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// NewApp returns an App writing to stdout and stderr.
func NewApp(seg Segmenter) *App {
	return &App{Out: os.Stdout, Err: os.Stderr, Segment: seg}
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "kics",
		Short: "Karyotype image based chromosome size estimation",
		Long: `kics estimates chromosome sizes from a karyotype image and compares them
against the scaffold sizes of a genome assembly.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.finish,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("metrics-file", "", "write metrics in Prometheus text format to this file")

	root.AddCommand(
		newMatchCommand(app),
		newLabelCommand(app),
		newRescoreCommand(app),
		newVersionCommand(app),
	)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(seg Segmenter, args []string) int {
	app := NewApp(seg)
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(app.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.File, _ = flags.GetString("metrics-file")
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: a.Err})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.recorder = metrics.New()
	return nil
}

// seriesReader returns a reader that logs through the configured logger.
func (a *App) seriesReader() series.Reader {
	return series.Reader{Logger: a.logger}
}

func (a *App) finish(cmd *cobra.Command, _ []string) error {
	if a.cfg.Metrics.File == "" {
		return nil
	}
	if err := a.recorder.WriteTextfile(a.cfg.Metrics.File); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	a.logger.Debug("metrics written", "path", a.cfg.Metrics.File, "command", cmd.Name())
	return nil
}
