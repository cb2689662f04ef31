package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/coeqtl"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlpipeline"
)

func generateCmd() *cobra.Command {
	var workspace string
	var cellType string
	var condition string
	var stdout bool
	var force bool

	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate the post-processing pipeline file for a cell type",
		Long: "Generate writes the pipeline that drives the result post-processing for one " +
			"cell type: per result variant, concatenate the betaQTL shards, screen the " +
			"permutation p-values against the eQTL reference, then apply the " +
			"multiple-testing correction.",
		RunE: func(_ *cobra.Command, _ []string) error {
			ct := strings.TrimSpace(cellType)
			if ct == "" {
				return fmt.Errorf("cell type is required (use --cell-type, e.g. %s)",
					strings.Join(coeqtl.KnownCellTypes(), ", "))
			}

			pipe := coeqtl.Postprocess(coeqtl.Params{
				CellType:  ct,
				Condition: condition,
			})

			b, err := yamlpipeline.Marshal(pipe)
			if err != nil {
				return err
			}

			if stdout {
				_, err := os.Stdout.Write(b)
				return err
			}

			ws, err := loadWorkspace(workspace, false)
			if err != nil {
				return err
			}

			dst := filepath.Join(ws.root, ws.cfg.Paths.PipelinesDir, pipe.Name+".yaml")
			if !force && fileExists(dst) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", dst)
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dst, b, 0o644); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", dst)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&cellType, "cell-type", "c", "", "Cell type label, e.g. CD4T (required)")
	c.Flags().StringVar(&condition, "condition", coeqtl.DefaultCondition, "Stimulation condition")
	c.Flags().BoolVar(&stdout, "stdout", false, "Print the pipeline YAML instead of writing a file")
	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing pipeline file")

	_ = c.MarkFlagRequired("cell-type")
	return c
}
