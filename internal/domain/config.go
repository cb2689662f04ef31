package domain

// Config represents the minimal workspace configuration loaded from coeqtl.yaml.
type Config struct {
	Masking  MaskingConfig
	Defaults DefaultsConfig
	Paths    PathsConfig
}

type MaskingConfig struct {
	Enabled bool
}

type DefaultsConfig struct {
	Profile string
}

type PathsConfig struct {
	PipelinesDir string
	ProfilesDir  string
	RunsDir      string
}

// DefaultConfig provides sane defaults if coeqtl.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Masking: MaskingConfig{Enabled: true},
		Defaults: DefaultsConfig{
			Profile: "local",
		},
		Paths: PathsConfig{
			PipelinesDir: "pipelines",
			ProfilesDir:  "profiles",
			RunsDir:      "runs",
		},
	}
}
