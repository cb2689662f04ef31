package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/infra/yamlpipeline"
)

func TestLooksLikePath(t *testing.T) {
	if !looksLikePath("pipelines/p.yaml") {
		t.Fatal("slash path should look like a path")
	}
	if looksLikePath("postprocess_UT_CD4T") {
		t.Fatal("bare name should not look like a path")
	}
}

func TestHasYAMLExt(t *testing.T) {
	for _, s := range []string{"p.yaml", "p.yml", "p.YAML"} {
		if !hasYAMLExt(s) {
			t.Fatalf("%q should have a yaml extension", s)
		}
	}
	if hasYAMLExt("p.json") || hasYAMLExt("p") {
		t.Fatal("non-yaml inputs must not match")
	}
}

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "x.yaml")
	if fileExists(p) {
		t.Fatal("missing file reported as existing")
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Fatal("existing file reported as missing")
	}
}

func TestResolveWorkspaceRoot_FlagWins(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("resolveWorkspaceRoot error: %v", err)
	}
	if got != tmp {
		t.Fatalf("expected %q, got %q", tmp, got)
	}
}

func newTestWorkspace(t *testing.T) *workspaceCtx {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pipelines"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := domain.DefaultConfig()
	return &workspaceCtx{
		root:      root,
		cfg:       cfg,
		pipelines: yamlpipeline.NewLoader(yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir)),
	}
}

func TestResolvePipelinePath_ByName(t *testing.T) {
	ws := newTestWorkspace(t)
	want := filepath.Join(ws.root, "pipelines", "postprocess_UT_CD4T.yaml")
	if err := os.WriteFile(want, []byte("name: postprocess_UT_CD4T\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolvePipelinePath(ws, "postprocess_UT_CD4T")
	if err != nil {
		t.Fatalf("resolvePipelinePath error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolvePipelinePath_RelativePath(t *testing.T) {
	ws := newTestWorkspace(t)

	got, err := resolvePipelinePath(ws, "pipelines/custom.yaml")
	if err != nil {
		t.Fatalf("resolvePipelinePath error: %v", err)
	}
	want := filepath.Join(ws.root, "pipelines", "custom.yaml")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolvePipelinePath_NotFound(t *testing.T) {
	ws := newTestWorkspace(t)
	_, err := resolvePipelinePath(ws, "nonexistent")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got: %v", err)
	}
}

func TestResolvePipelinePath_Empty(t *testing.T) {
	ws := newTestWorkspace(t)
	_, err := resolvePipelinePath(ws, "  ")
	if err == nil {
		t.Fatal("expected error for empty pipeline arg")
	}
}

func TestResolveProfileArg_DefaultsFromConfig(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.cfg.Defaults.Profile = "slurm"

	got, err := resolveProfileArg(ws, "")
	if err != nil {
		t.Fatalf("resolveProfileArg error: %v", err)
	}
	if got != "slurm" {
		t.Fatalf("expected workspace default, got %q", got)
	}
}

func TestResolveProfileArg_BareNamePassedThrough(t *testing.T) {
	ws := newTestWorkspace(t)
	got, err := resolveProfileArg(ws, "cluster")
	if err != nil {
		t.Fatalf("resolveProfileArg error: %v", err)
	}
	if got != "cluster" {
		t.Fatalf("expected bare name, got %q", got)
	}
}

func TestResolveProfileArg_YAMLNameResolvesUnderProfilesDir(t *testing.T) {
	ws := newTestWorkspace(t)
	got, err := resolveProfileArg(ws, "slurm.yaml")
	if err != nil {
		t.Fatalf("resolveProfileArg error: %v", err)
	}
	want := filepath.Join(ws.root, "profiles", "slurm.yaml")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func sampleRun() domain.RunResult {
	started := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	return domain.RunResult{
		PipelineName: "postprocess_UT_CD4T",
		ProfileName:  "slurm",
		StartedAt:    started,
		EndedAt:      started.Add(42 * time.Second),
		Stages: []domain.StageResult{
			{
				Name:       "concat-unfiltered",
				ExitCode:   0,
				DurationMS: 1500,
				Checks: []domain.CheckResult{
					{Name: "exit_code", Passed: true, Message: "exit code 0"},
				},
				Extracted: domain.Vars{"n_tests": "42131"},
			},
			{
				Name:       "screen-permutations-unfiltered",
				ExitCode:   1,
				DurationMS: 90,
				Error: &domain.RunError{
					Kind:    domain.RunErrorExit,
					Message: "exit status 1",
				},
			},
		},
	}
}

func TestIsStageFailed(t *testing.T) {
	run := sampleRun()
	if isStageFailed(run.Stages[0]) {
		t.Fatal("passing stage flagged as failed")
	}
	if !isStageFailed(run.Stages[1]) {
		t.Fatal("stage with RunError not flagged")
	}

	checkFail := domain.StageResult{
		Checks: []domain.CheckResult{{Name: "files", Passed: false}},
	}
	if !isStageFailed(checkFail) {
		t.Fatal("stage with failed check not flagged")
	}

	extractFail := domain.StageResult{
		Extracts: []domain.ExtractResult{{Name: "n_tests", Success: false}},
	}
	if !isStageFailed(extractFail) {
		t.Fatal("stage with failed extract not flagged")
	}
}

func TestCountFailures(t *testing.T) {
	if n := countFailures(sampleRun()); n != 1 {
		t.Fatalf("expected 1 failure, got %d", n)
	}
	if n := countFailures(domain.RunResult{}); n != 0 {
		t.Fatalf("expected 0 failures, got %d", n)
	}
}

func TestPrintRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "20260203T101112Z_postprocess-ut-cd4t", "json"); err != nil {
		t.Fatalf("printRun error: %v", err)
	}

	var payload struct {
		RunID string           `json:"run_id"`
		Run   domain.RunResult `json:"run"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if payload.RunID != "20260203T101112Z_postprocess-ut-cd4t" {
		t.Fatalf("unexpected run id %q", payload.RunID)
	}
	if payload.Run.PipelineName != "postprocess_UT_CD4T" {
		t.Fatalf("unexpected pipeline %q", payload.Run.PipelineName)
	}
}

func TestPrintRun_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "run-1", "pretty"); err != nil {
		t.Fatalf("printRun error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Pipeline: postprocess_UT_CD4T",
		"Profile:  slurm",
		"Run ID:   run-1",
		"[OK] concat-unfiltered",
		"[FAIL] screen-permutations-unfiltered",
		"error: exit status 1 (exit)",
		"n_tests = 42131",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestPrintRun_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := printRun(&buf, sampleRun(), "", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected format error, got: %v", err)
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string]bool{
		"run": false, "validate": false, "plan": false, "generate": false,
		"submit": false, "pipelines": false, "profiles": false,
		"init": false, "version": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	c := runCmd()
	for _, name := range []string{"workspace", "pipeline", "profile", "no-save", "fail-fast", "verbose", "format"} {
		if c.Flags().Lookup(name) == nil {
			t.Fatalf("run command missing --%s", name)
		}
	}
}

func TestSubmitCmd_Flags(t *testing.T) {
	c := submitCmd()
	for _, name := range []string{"workspace", "pipeline", "profile", "job-name", "partition", "time", "mem", "cpus"} {
		if c.Flags().Lookup(name) == nil {
			t.Fatalf("submit command missing --%s", name)
		}
	}
}

func TestGenerateCmd_Flags(t *testing.T) {
	c := generateCmd()
	for _, name := range []string{"cell-type", "condition", "stdout", "force"} {
		if c.Flags().Lookup(name) == nil {
			t.Fatalf("generate command missing --%s", name)
		}
	}
}
