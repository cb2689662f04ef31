package yamlpipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

type Loader struct {
	pipelinesDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{pipelinesDir: "pipelines"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithPipelinesDir(dir string) Option {
	return func(l *Loader) { l.pipelinesDir = dir }
}

var _ ports.PipelineLoader = (*Loader)(nil)

func (l *Loader) LoadPipeline(path string) (domain.Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Pipeline{}, &domain.OpError{
			Op:   "yamlpipeline.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var yp yamlPipeline
	if err := yaml.Unmarshal(b, &yp); err != nil {
		return domain.Pipeline{}, &domain.OpError{
			Op:   "yamlpipeline.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	pipe, err := mapAndValidate(path, yp)
	if err != nil {
		return domain.Pipeline{}, err
	}

	return pipe, nil
}

func (l *Loader) ListPipelines(root string) ([]domain.PipelineRef, error) {
	dir := filepath.Join(root, l.pipelinesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlpipeline.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.PipelineRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readPipelineName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.PipelineRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readPipelineName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlPipeline struct {
	Name   string            `yaml:"name"`
	Vars   map[string]string `yaml:"vars"`
	Stages []yamlStage       `yaml:"stages"`
}

type yamlStage struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`

	Checks  yamlChecks        `yaml:"checks"`
	Extract map[string]string `yaml:"extract"`
}

type yamlChecks struct {
	ExitCode *int `yaml:"exit_code"`
	MaxMS    *int `yaml:"max_ms"`

	Files    []yamlFileCheck              `yaml:"files"`
	JSONPath map[string]yamlJSONPathCheck `yaml:"jsonpath"`
}

type yamlFileCheck struct {
	Path     string `yaml:"path"`
	MinBytes int64  `yaml:"min_bytes"`
}

type yamlJSONPathCheck struct {
	Exists  bool    `yaml:"exists"`
	Eq      *string `yaml:"eq"`
	Matches *string `yaml:"matches"`
}

func mapAndValidate(path string, yp yamlPipeline) (domain.Pipeline, error) {
	if strings.TrimSpace(yp.Name) == "" {
		return domain.Pipeline{}, invalidField(path, "name", "pipeline name is required")
	}

	pipe := domain.Pipeline{
		Name:   yp.Name,
		Vars:   domain.Vars(yp.Vars),
		Stages: make([]domain.StageSpec, 0, len(yp.Stages)),
	}
	if pipe.Vars == nil {
		pipe.Vars = domain.Vars{}
	}

	for i, s := range yp.Stages {
		fieldPrefix := fmt.Sprintf("stages[%d]", i)

		if strings.TrimSpace(s.Name) == "" {
			return domain.Pipeline{}, invalidField(path, fieldPrefix+".name", "stage name is required")
		}
		if strings.TrimSpace(s.Command) == "" {
			return domain.Pipeline{}, invalidField(path, fieldPrefix+".command", "stage command is required")
		}

		stage := domain.StageSpec{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
			Checks: domain.ChecksSpec{
				ExitCode:      s.Checks.ExitCode,
				MaxDurationMS: s.Checks.MaxMS,
				Files:         mapFileChecks(path, fieldPrefix, s.Checks.Files),
				JSONPath:      mapJSONPath(s.Checks.JSONPath),
			},
			Extract: domain.ExtractSpec(s.Extract),
		}

		for j, fc := range stage.Checks.Files {
			if strings.TrimSpace(fc.Path) == "" {
				return domain.Pipeline{}, invalidField(path,
					fmt.Sprintf("%s.checks.files[%d].path", fieldPrefix, j), "file check path is required")
			}
		}

		if stage.Args == nil {
			stage.Args = []string{}
		}
		if stage.Env == nil {
			stage.Env = map[string]string{}
		}
		if stage.Checks.JSONPath == nil {
			stage.Checks.JSONPath = map[string]domain.JSONPathCheck{}
		}
		if stage.Extract == nil {
			stage.Extract = domain.ExtractSpec{}
		}

		pipe.Stages = append(pipe.Stages, stage)
	}

	return pipe, nil
}

func mapFileChecks(_ string, _ string, in []yamlFileCheck) []domain.FileCheck {
	out := make([]domain.FileCheck, 0, len(in))
	for _, fc := range in {
		out = append(out, domain.FileCheck{Path: fc.Path, MinBytes: fc.MinBytes})
	}
	return out
}

func mapJSONPath(in map[string]yamlJSONPathCheck) map[string]domain.JSONPathCheck {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.JSONPathCheck, len(in))
	for k, v := range in {
		out[k] = domain.JSONPathCheck{Exists: v.Exists, Eq: v.Eq, Matches: v.Matches}
	}
	return out
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlpipeline.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}
