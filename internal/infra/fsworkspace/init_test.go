package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

func TestInitializer_Init_CreatesWorkspaceFiles(t *testing.T) {
	tmp := t.TempDir()

	i := NewInitializer()
	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "coeqtl.yaml"))
	assertFileExists(t, filepath.Join(tmp, "pipelines", "postprocess_UT_CD4T.yaml"))
	assertFileExists(t, filepath.Join(tmp, "profiles", "local.yaml"))
	assertFileExists(t, filepath.Join(tmp, "profiles", "slurm.yaml"))
	assertFileExists(t, filepath.Join(tmp, "runs"))
	assertFileExists(t, filepath.Join(tmp, ".coeqtlctl", "logs"))

	localPath := filepath.Join(tmp, "profiles", "profile.local.yaml")
	assertFileExists(t, localPath)
	info, err := os.Stat(localPath)
	if err != nil {
		t.Fatalf("stat local override file: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected local override file mode 600, got %o", got)
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "coeqtl.yaml")
	if err := os.WriteFile(cfgPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing coeqtl.yaml: %v", err)
	}

	i := NewInitializer()

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read coeqtl.yaml: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected coeqtl.yaml preserved, got %q", string(b))
	}

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read coeqtl.yaml after force: %v", err)
	}
	if !strings.Contains(string(b), "coeqtl:") {
		t.Fatalf("expected coeqtl.yaml overwritten with template, got %q", string(b))
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
