package coeqtl

import "testing"

func TestResultPrefix_Unfiltered(t *testing.T) {
	l := NewLayout("/groups/umcg/coeqtl", "UT")

	got := l.ResultPrefix(VariantUnfiltered, "CD4T")
	want := "/groups/umcg/coeqtl/output/unfiltered_results/UT_CD4T"
	if got != want {
		t.Fatalf("ResultPrefix = %q, want %q", got, want)
	}
}

func TestConcatedResultsPath(t *testing.T) {
	l := NewLayout("/groups/umcg/coeqtl", "UT")

	got := l.ConcatedResultsPath(VariantUnfiltered, "CD4T")
	want := "/groups/umcg/coeqtl/output/unfiltered_results/UT_CD4T/concated_alltests_output_fixed.tsv.gz"
	if got != want {
		t.Fatalf("ConcatedResultsPath = %q, want %q", got, want)
	}
}

func TestResultPrefix_FilteredUsesOwnPartition(t *testing.T) {
	l := NewLayout("/data", "UT")

	got := l.ResultPrefix(VariantFiltered, "monocyte")
	want := "/data/output/filtered_results/UT_monocyte"
	if got != want {
		t.Fatalf("ResultPrefix = %q, want %q", got, want)
	}
}

func TestBranches_ShareNoIntermediatePaths(t *testing.T) {
	l := NewLayout("/data", "UT")

	unfiltered := map[string]bool{
		l.ResultPrefix(VariantUnfiltered, "NK"):          true,
		l.ConcatedResultsPath(VariantUnfiltered, "NK"):   true,
		l.ScreenSavePrefix(VariantUnfiltered, "NK"):      true,
		l.PermutationPValuePath(VariantUnfiltered, "NK"): true,
		l.CorrectionSavePrefix(VariantUnfiltered, "NK"):  true,
	}

	filtered := []string{
		l.ResultPrefix(VariantFiltered, "NK"),
		l.ConcatedResultsPath(VariantFiltered, "NK"),
		l.ScreenSavePrefix(VariantFiltered, "NK"),
		l.PermutationPValuePath(VariantFiltered, "NK"),
		l.CorrectionSavePrefix(VariantFiltered, "NK"),
	}
	for _, p := range filtered {
		if unfiltered[p] {
			t.Errorf("path %q appears in both branches", p)
		}
	}
}

func TestLayout_SharedInputsAreVariantIndependent(t *testing.T) {
	l := NewLayout("/data", "UT")

	if got, want := l.AnnotationPrefix("B"), "/data/annotation/UT_B"; got != want {
		t.Fatalf("AnnotationPrefix = %q, want %q", got, want)
	}
	if got, want := l.EQTLReferencePath("B"), "/data/input/eqtl/UT_B.tsv.gz"; got != want {
		t.Fatalf("EQTLReferencePath = %q, want %q", got, want)
	}
}

func TestLayout_Deterministic(t *testing.T) {
	a := NewLayout("/data", "UT")
	b := NewLayout("/data", "UT")

	for _, v := range Variants() {
		if a.ResultPrefix(v, "CD8T") != b.ResultPrefix(v, "CD8T") {
			t.Fatalf("ResultPrefix not deterministic for %s", v)
		}
		if a.PermutationPValuePath(v, "CD8T") != b.PermutationPValuePath(v, "CD8T") {
			t.Fatalf("PermutationPValuePath not deterministic for %s", v)
		}
	}
}

func TestNewLayout_DefaultCondition(t *testing.T) {
	l := NewLayout("/data", "")
	if l.Condition != "UT" {
		t.Fatalf("expected default condition UT, got %q", l.Condition)
	}
}

func TestVariantShort(t *testing.T) {
	cases := []struct {
		v    Variant
		want string
	}{
		{VariantUnfiltered, "unfiltered"},
		{VariantFiltered, "filtered"},
		{Variant("other"), "other"},
	}
	for _, c := range cases {
		if got := c.v.Short(); got != c.want {
			t.Errorf("Short(%q) = %q, want %q", c.v, got, c.want)
		}
	}
}
