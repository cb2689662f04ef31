package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func profilesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profiles",
		Short: "Manage profiles in a workspace",
	}

	c.AddCommand(profilesListCmd())
	return c
}

func profilesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace, false)
			if err != nil {
				return err
			}

			refs, err := ws.profileCatalog.ListProfiles(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no profiles found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n", ws.root)
			fmt.Printf("Default:   %s\n\n", ws.cfg.Defaults.Profile)

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
