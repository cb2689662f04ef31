package coeqtl

import (
	"strings"
	"testing"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

func argOf(t *testing.T, stage domain.StageSpec, flag string) string {
	t.Helper()
	for i, a := range stage.Args {
		if a == flag {
			if i+1 >= len(stage.Args) {
				t.Fatalf("stage %s: flag %s has no value", stage.Name, flag)
			}
			return stage.Args[i+1]
		}
	}
	t.Fatalf("stage %s: flag %s not found in %v", stage.Name, flag, stage.Args)
	return ""
}

func TestPostprocess_StageOrderPerBranch(t *testing.T) {
	p := Postprocess(Params{Root: "/data", CellType: "CD4T"})

	want := []string{
		"concat-unfiltered",
		"screen-permutations-unfiltered",
		"multipletesting-correction-unfiltered",
		"concat-filtered",
		"screen-permutations-filtered",
		"multipletesting-correction-filtered",
	}
	if len(p.Stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(p.Stages))
	}
	for i, name := range want {
		if p.Stages[i].Name != name {
			t.Errorf("stage[%d] = %q, want %q", i, p.Stages[i].Name, name)
		}
	}
}

func TestPostprocess_ConcatReceivesSpecPaths(t *testing.T) {
	p := Postprocess(Params{Root: "/groups/umcg/coeqtl", CellType: "CD4T"})

	concat := p.Stages[0]
	if got, want := argOf(t, concat, "--prefix"), "/groups/umcg/coeqtl/output/unfiltered_results/UT_CD4T"; got != want {
		t.Errorf("--prefix = %q, want %q", got, want)
	}
	wantSave := "/groups/umcg/coeqtl/output/unfiltered_results/UT_CD4T/concated_alltests_output_fixed.tsv.gz"
	if got := argOf(t, concat, "--savepath"); got != wantSave {
		t.Errorf("--savepath = %q, want %q", got, wantSave)
	}
}

func TestPostprocess_CorrectionConsumesEarlierOutputs(t *testing.T) {
	p := Postprocess(Params{Root: "/data", CellType: "NK"})

	for _, base := range []int{0, 3} {
		concat := p.Stages[base]
		screen := p.Stages[base+1]
		correct := p.Stages[base+2]

		if got, want := argOf(t, correct, "--coeqtl_path"), argOf(t, concat, "--savepath"); got != want {
			t.Errorf("%s: --coeqtl_path = %q, want concat savepath %q", correct.Name, got, want)
		}

		screenPrefix := argOf(t, screen, "--save_prefix")
		wantPerm := screenPrefix + ".permutation_pvalues.tsv.gz"
		if got := argOf(t, correct, "--permutation_pvalue_path"); got != wantPerm {
			t.Errorf("%s: --permutation_pvalue_path = %q, want %q", correct.Name, got, wantPerm)
		}

		if got, want := argOf(t, correct, "--eqtl_path"), argOf(t, screen, "--eqtl_path"); got != want {
			t.Errorf("%s: --eqtl_path = %q, want %q", correct.Name, got, want)
		}
	}
}

func TestPostprocess_DefaultsUsePlaceholders(t *testing.T) {
	p := Postprocess(Params{CellType: "B"})

	if p.Name != "postprocess_UT_B" {
		t.Fatalf("expected name postprocess_UT_B, got %q", p.Name)
	}
	for _, s := range p.Stages {
		if s.Command != "{{python}}" {
			t.Fatalf("stage %s: command = %q, want {{python}}", s.Name, s.Command)
		}
		if !strings.HasPrefix(s.Args[0], "{{scripts_dir}}/") {
			t.Fatalf("stage %s: script path = %q, want {{scripts_dir}} prefix", s.Name, s.Args[0])
		}
		if !strings.Contains(argOf(t, s, firstPathFlag(s)), "{{workdir}}/") {
			t.Fatalf("stage %s: expected {{workdir}} placeholder in paths", s.Name)
		}
	}
}

func firstPathFlag(s domain.StageSpec) string {
	switch {
	case strings.HasPrefix(s.Name, "concat"):
		return "--prefix"
	case strings.HasPrefix(s.Name, "screen"):
		return "--result_prefix"
	default:
		return "--coeqtl_path"
	}
}

func TestPostprocess_Idempotent(t *testing.T) {
	params := Params{Root: "/data", CellType: "monocyte"}

	a := Postprocess(params)
	b := Postprocess(params)

	if len(a.Stages) != len(b.Stages) {
		t.Fatalf("stage counts differ: %d vs %d", len(a.Stages), len(b.Stages))
	}
	for i := range a.Stages {
		if a.Stages[i].Name != b.Stages[i].Name {
			t.Fatalf("stage[%d] names differ", i)
		}
		if strings.Join(a.Stages[i].Args, "\x00") != strings.Join(b.Stages[i].Args, "\x00") {
			t.Fatalf("stage %s: args differ between generations", a.Stages[i].Name)
		}
	}
}

func TestPostprocess_DeclaresOutputChecks(t *testing.T) {
	p := Postprocess(Params{Root: "/data", CellType: "DC"})

	concat := p.Stages[0]
	if concat.Checks.ExitCode == nil || *concat.Checks.ExitCode != 0 {
		t.Fatal("expected concat to require exit code 0")
	}
	if len(concat.Checks.Files) != 1 {
		t.Fatalf("expected 1 file check on concat, got %d", len(concat.Checks.Files))
	}
	if got, want := concat.Checks.Files[0].Path, argOf(t, concat, "--savepath"); got != want {
		t.Errorf("concat file check = %q, want %q", got, want)
	}
}
