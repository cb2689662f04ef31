package workspacefinder

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

// LoadConfig loads coeqtl.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "coeqtl.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Coeqtl.Masking.Enabled != nil {
		cfg.Masking.Enabled = *y.Coeqtl.Masking.Enabled
	}
	if y.Coeqtl.Defaults.Profile != "" {
		cfg.Defaults.Profile = y.Coeqtl.Defaults.Profile
	}
	if y.Coeqtl.Paths.PipelinesDir != "" {
		cfg.Paths.PipelinesDir = y.Coeqtl.Paths.PipelinesDir
	}
	if y.Coeqtl.Paths.ProfilesDir != "" {
		cfg.Paths.ProfilesDir = y.Coeqtl.Paths.ProfilesDir
	}
	if y.Coeqtl.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Coeqtl.Paths.RunsDir
	}

	return cfg, nil
}

type yamlConfig struct {
	Coeqtl struct {
		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`

		Defaults struct {
			Profile string `yaml:"profile"`
		} `yaml:"defaults"`

		Paths struct {
			PipelinesDir string `yaml:"pipelines_dir"`
			ProfilesDir  string `yaml:"profiles_dir"`
			RunsDir      string `yaml:"runs_dir"`
		} `yaml:"paths"`
	} `yaml:"coeqtl"`
}
