package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/slurm"
)

func submitCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var profile string
	var failFast bool
	var jobName string
	var partition string
	var timeLimit string
	var memory string
	var cpus int

	c := &cobra.Command{
		Use:   "submit",
		Short: "Submit a pipeline run to SLURM via sbatch",
		Long: "Submit wraps `coeqtlctl run` in an sbatch job so the post-processing runs on " +
			"a compute node. Resource budgets come from flags, falling back to the " +
			"profile's slurm_* vars and then to the built-in defaults.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace, false)
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

			pipe, err := ws.pipelines.LoadPipeline(pipelinePath)
			if err != nil {
				return err
			}

			prof, err := ws.profiles.LoadProfile(profileArg)
			if err != nil {
				return err
			}

			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve own executable: %w", err)
			}

			argv := []string{
				self, "run",
				"--workspace", ws.root,
				"--pipeline", pipelinePath,
				"--profile", profileArg,
			}
			if failFast {
				argv = append(argv, "--fail-fast")
			}

			req := domain.SubmitRequest{
				JobName:   jobName,
				Partition: partition,
				Time:      timeLimit,
				Memory:    memory,
				CPUs:      cpus,
				LogPath:   filepath.Join(ws.root, ".coeqtlctl", "logs", pipe.Name+"_%j.out"),
				Argv:      argv,
			}
			if req.JobName == "" {
				req.JobName = pipe.Name
			}
			applyProfileBudgets(&req, prof.Vars)

			jobID, err := slurm.New().Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Submitted batch job %s (pipeline %s, profile %s)\n", jobID, pipe.Name, prof.Name)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVar(&profile, "profile", "", "Profile name or path (optional; defaults to workspace default profile)")
	c.Flags().BoolVar(&failFast, "fail-fast", false, "Pass --fail-fast to the batched run")
	c.Flags().StringVar(&jobName, "job-name", "", "SLURM job name (defaults to the pipeline name)")
	c.Flags().StringVar(&partition, "partition", "", "SLURM partition")
	c.Flags().StringVar(&timeLimit, "time", "", "SLURM time limit (defaults to profile slurm_time or "+slurm.DefaultTime+")")
	c.Flags().StringVar(&memory, "mem", "", "SLURM memory budget (defaults to profile slurm_mem or "+slurm.DefaultMemory+")")
	c.Flags().IntVar(&cpus, "cpus", 0, "SLURM CPUs per task (defaults to profile slurm_cpus or 1)")

	_ = c.MarkFlagRequired("pipeline")
	return c
}

// applyProfileBudgets fills unset resource fields from the profile's slurm_*
// vars. Flags always win.
func applyProfileBudgets(req *domain.SubmitRequest, vars domain.Vars) {
	if req.Time == "" {
		if v, ok := vars["slurm_time"]; ok {
			req.Time = v
		}
	}
	if req.Memory == "" {
		if v, ok := vars["slurm_mem"]; ok {
			req.Memory = v
		}
	}
	if req.Partition == "" {
		if v, ok := vars["slurm_partition"]; ok {
			req.Partition = v
		}
	}
	if req.CPUs == 0 {
		if v, ok := vars["slurm_cpus"]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				req.CPUs = n
			}
		}
	}
}
