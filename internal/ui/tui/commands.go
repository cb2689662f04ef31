package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/execrunner"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/runstore"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/workspacefinder"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlpipeline"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlprofile"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadPipelines(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return pipelinesLoadedMsg{root: root, err: err}
		}

		loader := yamlpipeline.NewLoader(
			yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
		)

		refs, err := loader.ListPipelines(root)
		return pipelinesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadProfiles(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return profilesLoadedMsg{root: root, err: err}
		}

		loader := yamlprofile.NewLoader(
			root,
			yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
		)

		refs, err := loader.ListProfiles(root)
		return profilesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdPreviewPipeline(path string) tea.Cmd {
	return func() tea.Msg {
		p := filepath.Clean(path)

		loader := yamlpipeline.NewLoader()
		pipe, err := loader.LoadPipeline(p)
		if err != nil {
			return pipelinePreviewMsg{path: p, preview: "", err: err}
		}

		var b strings.Builder
		b.WriteString("Pipeline: ")
		b.WriteString(pipe.Name)
		b.WriteString("\n\n")

		if len(pipe.Vars) > 0 {
			b.WriteString("Vars:\n")
			for k, v := range pipe.Vars {
				b.WriteString("  - ")
				b.WriteString(k)
				b.WriteString(" = ")
				b.WriteString(v)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("Stages:\n")
		for _, s := range pipe.Stages {
			b.WriteString("  - ")
			b.WriteString(s.Name)
			b.WriteString("\n    ")
			b.WriteString(s.Command)
			if len(s.Args) > 0 {
				b.WriteString(" ")
				b.WriteString(strings.Join(s.Args, " "))
			}
			b.WriteString("\n")
		}

		return pipelinePreviewMsg{path: p, preview: b.String(), err: nil}
	}
}

func listenRunner(ch <-chan runnerDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return runnerDoneMsg{err: errors.New("runner channel closed")}
		}
		return msg
	}
}

func startRunAsync(
	workspaceRoot, pipelinePath, profileName string,
	log *slog.Logger,
	debug bool,
) (chan runnerDoneMsg, tea.Cmd) {
	ch := make(chan runnerDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("run.start",
			"workspace", workspaceRoot,
			"pipeline_path", pipelinePath,
			"profile", profileName,
			"debug", debug,
		)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil {
			log.Error("run.load_config.failed", "err", err)
			ch <- runnerDoneMsg{err: err}
			return
		}

		pipeLoader := yamlpipeline.NewLoader(
			yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
		)
		profLoader := yamlprofile.NewLoader(
			workspaceRoot,
			yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
		)

		runner := execrunner.New(execrunner.WithWorkDir(workspaceRoot))
		store := runstore.NewJSONStore(workspaceRoot, cfg, runstore.WithIndex(true))

		uc := usecase.NewRunPipeline(pipeLoader, profLoader, runner, store)

		// Post-processing over full result sets takes a while.
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Hour)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, pipelinePath, profileName)

		if execErr != nil {
			log.Error("run.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("run.ok", "saved_id", id)
		}

		for _, sr := range run.Stages {
			if sr.Error != nil {
				log.Warn("stage.error",
					"name", sr.Name,
					"command", sr.Command,
					"kind", string(sr.Error.Kind),
					"message", sr.Error.Message,
					"exit", sr.ExitCode,
					"duration_ms", sr.DurationMS,
				)
			} else if debug {
				log.Debug("stage.ok",
					"name", sr.Name,
					"command", sr.Command,
					"exit", sr.ExitCode,
					"duration_ms", sr.DurationMS,
					"stdout_truncated", sr.Output.StdoutTruncated,
					"stdout_bytes", len(sr.Output.Stdout),
				)
			}
		}

		ch <- runnerDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenRunner(ch)
}
