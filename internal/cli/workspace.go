package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/execrunner"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/runstore"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/workspacefinder"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlpipeline"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlprofile"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	pipelines ports.PipelineLoader

	profiles       ports.ProfileLoader
	profileCatalog ports.ProfileCatalog

	runner ports.StageRunner
	store  ports.ArtifactStore
}

func loadWorkspace(workspaceFlag string, verbose bool) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	pipeLoader := yamlpipeline.NewLoader(
		yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
	)

	profLoader := yamlprofile.NewLoader(
		root,
		yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
	)

	runner := execrunner.New(
		execrunner.WithWorkDir(root),
		execrunner.WithVerbose(verbose),
	)

	store := runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))

	return &workspaceCtx{
		root:           root,
		cfg:            cfg,
		pipelines:      pipeLoader,
		profiles:       profLoader,
		profileCatalog: profLoader,
		runner:         runner,
		store:          store,
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `coeqtlctl init`): %w", wd, err)
	}
	return root, nil
}

func resolvePipelinePath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("pipeline is required (use --pipeline or -p)")
	}

	// Path-like args resolve relative to the workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	pipelinesDir := filepath.Join(ws.root, ws.cfg.Paths.PipelinesDir)

	if hasYAMLExt(in) {
		p := filepath.Join(pipelinesDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	p1 := filepath.Join(pipelinesDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(pipelinesDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	// As a last resort: match by the pipeline "name" field.
	refs, err := ws.pipelines.ListPipelines(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("pipeline %q not found in %q", in, pipelinesDir)
}

func resolveProfileArg(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return ws.cfg.Defaults.Profile, nil
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	if hasYAMLExt(in) {
		profilesDir := filepath.Join(ws.root, ws.cfg.Paths.ProfilesDir)
		return filepath.Join(profilesDir, in), nil
	}

	// A bare name ("slurm") is resolved by the loader.
	return in, nil
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
