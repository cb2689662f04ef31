package yamlprofile

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
	rootDir   string
	dir       string
	localFile string
}

type Option func(*Loader)

func WithProfilesDir(dir string) Option {
	return func(l *Loader) { l.dir = dir }
}

func WithLocalFile(name string) Option {
	return func(l *Loader) { l.localFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:   root,
		dir:       "profiles",
		localFile: "profile.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.ProfileLoader = (*Loader)(nil)
var _ ports.ProfileCatalog = (*Loader)(nil)

// LoadProfile accepts either a profile name (e.g., "slurm") or a full path to
// a YAML file. A machine-local override file next to the profile, if present,
// wins over the profile's own vars.
func (l *Loader) LoadProfile(nameOrPath string) (domain.Profile, error) {
	var profilePath string
	var profileName string

	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		profilePath = filepath.Clean(nameOrPath)
		profileName = strings.TrimSuffix(filepath.Base(profilePath), filepath.Ext(profilePath))
	} else {
		profileName = nameOrPath
		profilePath = filepath.Join(l.rootDir, l.dir, profileName+".yaml")
	}

	base, err := readVars(profilePath)
	if err != nil {
		return domain.Profile{}, err
	}

	// Local overrides are optional; they win over base vars.
	localPath := filepath.Join(filepath.Dir(profilePath), l.localFile)
	local, localErr := readVarsOptional(localPath)
	if localErr != nil {
		return domain.Profile{}, localErr
	}

	merged := domain.Vars{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}

	return domain.Profile{
		Name: profileName,
		Vars: merged,
	}, nil
}

func (l *Loader) ListProfiles(root string) ([]domain.ProfileRef, error) {
	dir := filepath.Join(root, l.dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ProfileRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if name == l.localFile {
			continue
		}

		refs = append(refs, domain.ProfileRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type yamlProfile struct {
	Vars map[string]string `yaml:"vars"`
}

func readVars(path string) (domain.Vars, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlProfile
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if y.Vars == nil {
		y.Vars = map[string]string{}
	}

	return domain.Vars(y.Vars), nil
}

func readVarsOptional(path string) (domain.Vars, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Vars{}, nil
		}
		return nil, &domain.OpError{
			Op:   "yamlprofile.local",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	v, err := readVars(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load local overrides: %w", err)
	}
	return v, nil
}
