package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kics/internal/matching"
	"kics/internal/project"
	"kics/internal/series"
)

func newMatchCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match SCAFFOLDS ESTIMATES",
		Short: "Match chromosome size estimates to assembly scaffolds",
		Long: `Match chromosome size estimates to the scaffolds of an assembly.

SCAFFOLDS is a FASTA index (.fai) or a TSV of sizes; ESTIMATES is a TSV of
sizes as written by "kics label --estimates". A TSV has either one size per
line or an identifier and a size per line.`,
		Args: cobra.ExactArgs(2),
		RunE: app.runMatch,
	}

	f := cmd.Flags()
	f.Bool("by-name", false, "pair estimates and scaffolds with the same identifier")
	f.Bool("no-optimize", false, "pair estimates and scaffolds by size rank")
	f.Float64P("unmatched-penalty", "p", matching.DefaultUnmatchedPenalty, "penalty multiplier for unmatched scaffolds")
	f.Int64P("min-scaffold-size", "m", 100000, "ignore scaffolds smaller than this")
	f.IntP("max-scaffolds", "M", 50, "keep only the largest scaffolds; 0 keeps all")
	f.StringArray("toggle", nil, "toggle the pair estimate:scaffold after matching (repeatable)")
	f.StringP("out", "o", "", "write the matching as CSV")
	f.String("project", "", "save inputs and matching to a project file")
	cmd.MarkFlagsMutuallyExclusive("by-name", "no-optimize")
	return cmd
}

// matchingOptions starts from the configuration and applies the flags the
// user set.
func (a *App) matchingOptions(cmd *cobra.Command) matching.Options {
	opts := a.cfg.MatchingOptions()
	f := cmd.Flags()
	if f.Changed("by-name") {
		opts.ByName, _ = f.GetBool("by-name")
	}
	if f.Changed("no-optimize") {
		opts.NoOptimize, _ = f.GetBool("no-optimize")
	}
	if f.Changed("unmatched-penalty") {
		opts.UnmatchedPenalty, _ = f.GetFloat64("unmatched-penalty")
	}
	if f.Changed("min-scaffold-size") {
		opts.MinScaffoldSize, _ = f.GetInt64("min-scaffold-size")
	}
	if f.Changed("max-scaffolds") {
		opts.MaxScaffolds, _ = f.GetInt("max-scaffolds")
	}
	opts.Logger = a.logger
	opts.Observer = a.recorder
	return opts
}

func (a *App) runMatch(cmd *cobra.Command, args []string) error {
	scaffolds, err := a.seriesReader().ReadFile(args[0], series.ScaffoldSizes)
	if err != nil {
		return err
	}
	estimates, err := a.seriesReader().ReadFile(args[1], series.ChromosomeEstimates)
	if err != nil {
		return err
	}

	opts := a.matchingOptions(cmd)
	res, err := matching.Run(estimates, scaffolds, opts)
	if err != nil {
		return err
	}
	session := res.Session

	toggles, _ := cmd.Flags().GetStringArray("toggle")
	if err := applyEdits(session, nil, toggles); err != nil {
		return err
	}

	if err := renderMatching(a.Out, session); err != nil {
		return err
	}
	if res.Fallback {
		fmt.Fprintln(a.Out, warnStyle.Render("identity matching used: "+res.FallbackReason))
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeMatchingCSV(out, session); err != nil {
			return err
		}
		a.logger.Info("matching written", "path", out, "pairs", len(session.Pairs()))
	}

	if path, _ := cmd.Flags().GetString("project"); path != "" {
		p, err := openProject(path)
		if err != nil {
			return err
		}
		p.SetScaffolds(path, args[0])
		p.SetEstimates(path, args[1])
		p.Options = project.MatchOptionsFrom(opts)
		p.SetSession(session, res.Mode)
		if err := p.Save(path); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		a.logger.Info("project saved", "path", path, "session", session.ID())
	}
	return nil
}

// applyEdits deletes the given matching positions, then toggles each
// "estimate:scaffold" pair in turn.
func applyEdits(s *matching.Session, deletions []int, toggles []string) error {
	if len(deletions) > 0 {
		if _, err := s.DeleteMatchings(deletions...); err != nil {
			return err
		}
	}
	for _, t := range toggles {
		p, err := matching.ParsePair(t)
		if err != nil {
			return err
		}
		if _, err := s.ToggleMatching(p.Estimate, p.Scaffold); err != nil {
			return err
		}
	}
	return nil
}

func writeMatchingCSV(path string, s *matching.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// openProject loads path, or starts a new project named after it.
func openProject(path string) (*project.File, error) {
	p, err := project.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		base := filepath.Base(path)
		return project.New(strings.TrimSuffix(base, filepath.Ext(base))), nil
	}
	return p, err
}
