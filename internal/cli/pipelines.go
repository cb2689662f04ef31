package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func pipelinesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "pipelines",
		Short: "Manage pipelines in a workspace",
	}

	c.AddCommand(pipelinesListCmd())
	return c
}

func pipelinesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace, false)
			if err != nil {
				return err
			}

			refs, err := ws.pipelines.ListPipelines(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no pipelines found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				fmt.Printf("- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}
