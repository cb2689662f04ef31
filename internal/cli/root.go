package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/fsworkspace"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/logger"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/workspacefinder"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "coeqtlctl",
		Short:        "coeqtlctl — driver for coeQTL mapping post-processing",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Bare invocation opens the TUI.
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			finder := workspacefinder.NewFinder()

			logRoot := wd
			if root, ferr := finder.FindRoot(wd); ferr == nil && root != "" {
				logRoot = root
			}

			cleanup, _ := logger.Setup(logger.Config{
				Root:  logRoot,
				Debug: debug,
			})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			deps := tui.Deps{
				WorkspaceLocator:     finder,
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Logger:               logger.L(),
				Debug:                debug,
			}

			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .coeqtlctl/logs/coeqtlctl.log")

	cmd.AddCommand(
		runCmd(),
		validateCmd(),
		planCmd(),
		generateCmd(),
		submitCmd(),
		pipelinesCmd(),
		profilesCmd(),
		initCmd(),
		versionCmd(),
	)

	return cmd
}
