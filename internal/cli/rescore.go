package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kics/internal/errs"
	"kics/internal/matching"
	"kics/internal/project"
	"kics/internal/series"
)

func newRescoreCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescore PROJECT",
		Short: "Edit the matching saved in a project and print the new score",
		Long: `Reopen the matching saved by "kics match --project", apply edits and save it
again. Deletions refer to positions in the saved matching and are applied
before toggles.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runRescore,
	}

	f := cmd.Flags()
	f.StringArray("toggle", nil, "toggle the pair estimate:scaffold (repeatable)")
	f.IntSlice("delete", nil, "delete the pairs at these matching positions")
	f.StringP("out", "o", "", "write the matching as CSV")
	return cmd
}

func (a *App) runRescore(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	if p.ScaffoldsPath == "" || p.EstimatesPath == "" {
		return fmt.Errorf("project %s has no inputs: %w", path, errs.ErrInvalidInput)
	}
	scaffolds, err := a.seriesReader().ReadFile(p.GetScaffoldsPath(path), series.ScaffoldSizes)
	if err != nil {
		return err
	}
	estimates, err := a.seriesReader().ReadFile(p.GetEstimatesPath(path), series.ChromosomeEstimates)
	if err != nil {
		return err
	}

	session, err := p.Restore(estimates, scaffolds,
		matching.WithLogger(a.logger), matching.WithObserver(a.recorder))
	if err != nil {
		return err
	}
	a.recorder.ObserveScore(session.Score().Mean)

	deletions, _ := cmd.Flags().GetIntSlice("delete")
	toggles, _ := cmd.Flags().GetStringArray("toggle")
	if err := applyEdits(session, deletions, toggles); err != nil {
		return err
	}
	if err := renderMatching(a.Out, session); err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeMatchingCSV(out, session); err != nil {
			return err
		}
	}

	p.SetSession(session, p.Mode)
	if err := p.Save(path); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	a.logger.Info("project saved", "path", path, "session", session.ID(), "pairs", len(session.Pairs()))
	return nil
}
