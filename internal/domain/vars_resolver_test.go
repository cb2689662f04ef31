package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// --- helpers ---

func testRuntime(t *testing.T, vars Vars, now func() time.Time, uuidFn func() (string, error)) *RuntimeResolver {
	t.Helper()
	if now == nil {
		now = func() time.Time { return time.Unix(1700000000, 0) }
	}
	if uuidFn == nil {
		uuidFn = func() (string, error) { return "00000000-0000-0000-0000-000000000000", nil }
	}
	vr := NewVarResolver(WithNow(now), WithUUID(uuidFn))
	rt, err := vr.NewRuntime(vars)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt
}

// --- ResolveString ---

func TestResolveString_NoPlaceholders(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)
	got, err := rt.ResolveString("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestResolveString_SimpleVar(t *testing.T) {
	rt := testRuntime(t, Vars{"workdir": "/data/coeqtl"}, nil, nil)
	got, err := rt.ResolveString("{{workdir}}/output")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/data/coeqtl/output"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveString_MissingVar(t *testing.T) {
	rt := testRuntime(t, Vars{"workdir": "/data"}, nil, nil)

	_, err := rt.ResolveString("{{python}}")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected KindMissingVar, got: %v", err)
	}
	if !strings.Contains(err.Error(), "missing variable: python") {
		t.Fatalf("expected message to contain 'missing variable: python', got: %v", err)
	}
}

func TestResolveString_MultipleVars(t *testing.T) {
	rt := testRuntime(t, Vars{"workdir": "/data", "cell_type": "CD4T"}, nil, nil)
	got, err := rt.ResolveString("{{workdir}}/annotation/UT_{{cell_type}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/data/annotation/UT_CD4T"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveString_Builtins(t *testing.T) {
	r := NewVarResolver(
		WithNow(func() time.Time { return time.Unix(1700000000, 0) }),
		WithUUID(func() (string, error) { return "11111111-1111-1111-1111-111111111111", nil }),
	)

	rt, err := r.NewRuntime(Vars{})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	got, err := rt.ResolveString("ts={{$timestamp}} uuid={{$uuid}}")
	if err != nil {
		t.Fatalf("ResolveString: %v", err)
	}
	want := "ts=1700000000 uuid=11111111-1111-1111-1111-111111111111"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveString_UnclosedPlaceholder(t *testing.T) {
	rt := testRuntime(t, Vars{"x": "y"}, nil, nil)

	_, err := rt.ResolveString("{{x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got: %v", err)
	}
	var oe *OpError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OpError")
	}
}

func TestResolveString_EmptyPlaceholder(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)
	_, err := rt.ResolveString("{{  }}")
	if err == nil {
		t.Fatalf("expected error for empty placeholder")
	}
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}

// --- ResolveArgs ---

func TestResolveArgs_PreservesOrder(t *testing.T) {
	rt := testRuntime(t, Vars{"workdir": "/data"}, nil, nil)
	got, err := rt.ResolveArgs([]string{"--prefix", "{{workdir}}/output", "--n", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"--prefix", "/data/output", "--n", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestResolveArgs_ReportsFailingIndex(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)
	_, err := rt.ResolveArgs([]string{"ok", "{{nope}}"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected KindMissingVar, got %v", err)
	}
	if !strings.Contains(err.Error(), "args[1]") {
		t.Fatalf("expected error to name args[1], got: %v", err)
	}
}

// --- ResolveEnv ---

func TestResolveEnv_ValuesOnly(t *testing.T) {
	rt := testRuntime(t, Vars{"python": "/usr/bin/python3"}, nil, nil)
	got, err := rt.ResolveEnv(map[string]string{"PY": "{{python}}", "KEEP": "as-is"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["PY"] != "/usr/bin/python3" {
		t.Fatalf("expected PY resolved, got %q", got["PY"])
	}
	if got["KEEP"] != "as-is" {
		t.Fatalf("expected KEEP unchanged, got %q", got["KEEP"])
	}
}

// --- ResolveStage ---

func TestResolveStage_DoesNotMutateInput(t *testing.T) {
	rt := testRuntime(t, Vars{"workdir": "/data", "python": "py3"}, nil, nil)

	stage := StageSpec{
		Name:    "concat-unfiltered",
		Command: "{{python}}",
		Args:    []string{"--prefix", "{{workdir}}/output"},
		Env:     map[string]string{"ROOT": "{{workdir}}"},
		Checks: ChecksSpec{
			Files: []FileCheck{{Path: "{{workdir}}/output/result.tsv.gz", MinBytes: 1}},
		},
	}

	got, err := rt.ResolveStage(stage)
	if err != nil {
		t.Fatalf("ResolveStage: %v", err)
	}

	if got.Command != "py3" {
		t.Fatalf("expected command resolved, got %q", got.Command)
	}
	if got.Args[1] != "/data/output" {
		t.Fatalf("expected arg resolved, got %q", got.Args[1])
	}
	if got.Env["ROOT"] != "/data" {
		t.Fatalf("expected env resolved, got %q", got.Env["ROOT"])
	}
	if got.Checks.Files[0].Path != "/data/output/result.tsv.gz" {
		t.Fatalf("expected file check path resolved, got %q", got.Checks.Files[0].Path)
	}

	if stage.Command != "{{python}}" || stage.Args[1] != "{{workdir}}/output" {
		t.Fatalf("input stage was mutated: %+v", stage)
	}
	if stage.Checks.Files[0].Path != "{{workdir}}/output/result.tsv.gz" {
		t.Fatalf("input file check was mutated: %+v", stage.Checks.Files[0])
	}
}

func TestResolveStage_NilEnvBecomesEmpty(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)
	got, err := rt.ResolveStage(StageSpec{Name: "x", Command: "true"})
	if err != nil {
		t.Fatalf("ResolveStage: %v", err)
	}
	if got.Env == nil {
		t.Fatal("expected non-nil env")
	}
}

// --- WithNow / WithUUID options ---

func TestWithNow(t *testing.T) {
	fixed := time.Unix(999, 0)
	vr := NewVarResolver(
		WithNow(func() time.Time { return fixed }),
		WithUUID(func() (string, error) { return "x", nil }),
	)
	rt, err := vr.NewRuntime(Vars{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := rt.ResolveString("{{$timestamp}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "999" {
		t.Fatalf("expected 999, got %q", got)
	}
}

func TestWithUUID_Error(t *testing.T) {
	uuidErr := errors.New("uuid failed")
	vr := NewVarResolver(
		WithNow(func() time.Time { return time.Unix(0, 0) }),
		WithUUID(func() (string, error) { return "", uuidErr }),
	)
	_, err := vr.NewRuntime(Vars{})
	if err == nil {
		t.Fatal("expected error from uuid generator")
	}
	if !IsKind(err, KindExecution) {
		t.Fatalf("expected KindExecution, got %v", err)
	}
}

func TestUUIDV4_Format(t *testing.T) {
	u, err := uuidV4()
	if err != nil {
		t.Fatalf("uuidV4: %v", err)
	}
	if len(u) != 36 {
		t.Fatalf("expected 36 chars, got %d (%q)", len(u), u)
	}
	if u[14] != '4' {
		t.Fatalf("expected version 4, got %q", u)
	}
}
