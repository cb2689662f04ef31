package yamlpipeline

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

// Marshal renders a pipeline back to its YAML file form, omitting empty
// optional sections so generated files stay readable.
func Marshal(pipe domain.Pipeline) ([]byte, error) {
	out := encPipeline{
		Name:   pipe.Name,
		Vars:   map[string]string(pipe.Vars),
		Stages: make([]encStage, 0, len(pipe.Stages)),
	}
	if len(out.Vars) == 0 {
		out.Vars = nil
	}

	for _, s := range pipe.Stages {
		es := encStage{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
			Extract: map[string]string(s.Extract),
		}
		if len(es.Env) == 0 {
			es.Env = nil
		}
		if len(es.Extract) == 0 {
			es.Extract = nil
		}

		c := encChecks{
			ExitCode: s.Checks.ExitCode,
			MaxMS:    s.Checks.MaxDurationMS,
		}
		for _, fc := range s.Checks.Files {
			c.Files = append(c.Files, encFileCheck{Path: fc.Path, MinBytes: fc.MinBytes})
		}
		for k, v := range s.Checks.JSONPath {
			if c.JSONPath == nil {
				c.JSONPath = map[string]encJSONPathCheck{}
			}
			c.JSONPath[k] = encJSONPathCheck{Exists: v.Exists, Eq: v.Eq, Matches: v.Matches}
		}
		if c.ExitCode != nil || c.MaxMS != nil || len(c.Files) > 0 || len(c.JSONPath) > 0 {
			es.Checks = &c
		}

		out.Stages = append(out.Stages, es)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encPipeline struct {
	Name   string            `yaml:"name"`
	Vars   map[string]string `yaml:"vars,omitempty"`
	Stages []encStage        `yaml:"stages"`
}

type encStage struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Checks  *encChecks        `yaml:"checks,omitempty"`
	Extract map[string]string `yaml:"extract,omitempty"`
}

type encChecks struct {
	ExitCode *int                        `yaml:"exit_code,omitempty"`
	MaxMS    *int                        `yaml:"max_ms,omitempty"`
	Files    []encFileCheck              `yaml:"files,omitempty"`
	JSONPath map[string]encJSONPathCheck `yaml:"jsonpath,omitempty"`
}

type encFileCheck struct {
	Path     string `yaml:"path"`
	MinBytes int64  `yaml:"min_bytes,omitempty"`
}

type encJSONPathCheck struct {
	Exists  bool    `yaml:"exists,omitempty"`
	Eq      *string `yaml:"eq,omitempty"`
	Matches *string `yaml:"matches,omitempty"`
}
