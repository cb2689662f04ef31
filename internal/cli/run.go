package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase"
)

func runCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var profile string
	var noSave bool
	var failFast bool
	var verbose bool
	var format string

	c := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline's stages in order, recording the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace, verbose)
			if err != nil {
				return err
			}

			pipelinePath, err := resolvePipelinePath(ws, pipeline)
			if err != nil {
				return err
			}

			profileArg, err := resolveProfileArg(ws, profile)
			if err != nil {
				return err
			}

			var store = ws.store
			if noSave {
				store = nil
			}

			uc := usecase.NewRunPipeline(ws.pipelines, ws.profiles, ws.runner, store,
				usecase.WithFailFast(failFast))

			run, runID, err := uc.Execute(cmd.Context(), pipelinePath, profileArg)
			if err != nil {
				// Print what we have; partial runs are still useful.
				_ = printRun(os.Stdout, run, runID, format)
				return err
			}

			if err := printRun(os.Stdout, run, runID, format); err != nil {
				return err
			}

			fails := countFailures(run)
			if fails > 0 {
				return fmt.Errorf("run failed (%d failed stage(s))", fails)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVar(&profile, "profile", "", "Profile name or path (optional; defaults to workspace default profile)")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().BoolVar(&failFast, "fail-fast", false, "Abort after the first failed stage instead of continuing")
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Stream stage stderr to the terminal")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("pipeline")
	return c
}

func printRun(w io.Writer, run domain.RunResult, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// runID is store-assigned; wrap instead of changing the domain model.
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.RunResult, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Pipeline: %s\n", run.PipelineName)
	fmt.Fprintf(w, "Profile:  %s\n", run.ProfileName)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Ended:    %s\n", run.EndedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, s := range run.Stages {
		status := "OK"
		if isStageFailed(s) {
			status = "FAIL"
		}

		fmt.Fprintf(w, "- [%s] %s %dms\n", status, s.Name, s.DurationMS)

		if s.Error != nil {
			fmt.Fprintf(w, "  error: %s (%s)\n", s.Error.Message, s.Error.Kind)
		} else {
			fmt.Fprintf(w, "  exit: %d\n", s.ExitCode)
		}

		if len(s.Checks) > 0 {
			pass, fail := countCheckPassFail(s.Checks)
			fmt.Fprintf(w, "  checks: %d pass / %d fail\n", pass, fail)
			for _, c := range s.Checks {
				mark := "✓"
				if !c.Passed {
					mark = "✗"
				}
				fmt.Fprintf(w, "    %s %s: %s\n", mark, c.Name, c.Message)
			}
		}

		if len(s.Extracts) > 0 {
			ok, bad := countExtractPassFail(s.Extracts)
			fmt.Fprintf(w, "  extracts: %d ok / %d fail\n", ok, bad)
			for _, e := range s.Extracts {
				mark := "✓"
				if !e.Success {
					mark = "✗"
				}
				fmt.Fprintf(w, "    %s %s: %s\n", mark, e.Name, e.Message)
			}
		}

		if len(s.Extracted) > 0 {
			fmt.Fprintf(w, "  extracted vars:\n")
			for k, v := range s.Extracted {
				fmt.Fprintf(w, "    - %s = %s\n", k, v)
			}
		}

		fmt.Fprintln(w)
	}
}

func countFailures(run domain.RunResult) int {
	n := 0
	for _, s := range run.Stages {
		if isStageFailed(s) {
			n++
		}
	}
	return n
}

func isStageFailed(s domain.StageResult) bool {
	if s.Error != nil {
		return true
	}
	for _, c := range s.Checks {
		if !c.Passed {
			return true
		}
	}
	for _, e := range s.Extracts {
		if !e.Success {
			return true
		}
	}
	return false
}

func countCheckPassFail(in []domain.CheckResult) (pass int, fail int) {
	for _, c := range in {
		if c.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

func countExtractPassFail(in []domain.ExtractResult) (ok int, bad int) {
	for _, e := range in {
		if e.Success {
			ok++
		} else {
			bad++
		}
	}
	return ok, bad
}
