package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase"
)

func planCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var profile string
	var format string

	c := &cobra.Command{
		Use:   "plan",
		Short: "Show the concrete command lines a run would execute",
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

			uc := usecase.NewPlanPipeline(ws.pipelines, ws.profiles)
			name, planned, err := uc.Execute(cmd.Context(), pipelinePath, profileArg)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"pipeline": name,
					"stages":   planned,
				})
			case "pretty", "":
				fmt.Printf("Pipeline: %s (%d stage(s))\n\n", name, len(planned))
				for i, p := range planned {
					fmt.Printf("%2d. %s\n", i+1, p.Name)
					fmt.Printf("    %s\n", strings.Join(p.Argv, " "))
					for k, v := range p.Env {
						fmt.Printf("    env %s=%s\n", k, v)
					}
				}
				return nil
			default:
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVar(&profile, "profile", "", "Profile name or path (optional; defaults to workspace default profile)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("pipeline")
	return c
}
