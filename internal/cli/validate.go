package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var profile string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline and profile without executing anything",
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

			uc := usecase.NewValidatePipeline(ws.pipelines, ws.profiles)
			if err := uc.Execute(cmd.Context(), pipelinePath, profileArg); err != nil {
				return err
			}

			fmt.Println("OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVar(&profile, "profile", "", "Profile name or path (optional; defaults to workspace default profile)")

	_ = c.MarkFlagRequired("pipeline")
	return c
}
