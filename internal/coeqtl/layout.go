// Package coeqtl encodes the on-disk layout of a coeQTL mapping workspace and
// generates the post-processing pipeline that runs over it.
//
// Path construction is deterministic: the same root/condition/cell-type inputs
// always produce the same strings, and the filtered and unfiltered branches
// never share an intermediate path.
package coeqtl

import "path"

// Variant selects one of the two result partitions written by the mapping run.
type Variant string

const (
	VariantUnfiltered Variant = "unfiltered_results"
	VariantFiltered   Variant = "filtered_results"
)

// Variants returns both result partitions in processing order.
func Variants() []Variant {
	return []Variant{VariantUnfiltered, VariantFiltered}
}

// Short returns the variant label without the "_results" suffix, used in
// stage names.
func (v Variant) Short() string {
	switch v {
	case VariantUnfiltered:
		return "unfiltered"
	case VariantFiltered:
		return "filtered"
	}
	return string(v)
}

// DefaultCondition is the stimulation condition the mapping run was performed
// under. Only unstimulated cells are processed downstream.
const DefaultCondition = "UT"

// KnownCellTypes lists the lower-resolution PBMC cell-type labels used across
// the datasets. The layout accepts any label; this list feeds help text and
// the TUI picker.
func KnownCellTypes() []string {
	return []string{"CD4T", "CD8T", "monocyte", "NK", "B", "DC"}
}

// Layout constructs workspace paths. Root may be a concrete directory or a
// {{var}} placeholder resolved at run time.
type Layout struct {
	Root      string
	Condition string
}

func NewLayout(root, condition string) Layout {
	if condition == "" {
		condition = DefaultCondition
	}
	return Layout{Root: root, Condition: condition}
}

// Label is the condition-qualified cell-type label, e.g. "UT_CD4T".
func (l Layout) Label(cellType string) string {
	return l.Condition + "_" + cellType
}

// ResultPrefix is the per-variant result directory the mapping run sharded
// its outputs into: <root>/output/<variant>/<condition>_<cellType>.
func (l Layout) ResultPrefix(v Variant, cellType string) string {
	return path.Join(l.Root, "output", string(v), l.Label(cellType))
}

// ConcatedResultsPath is the aggregate file the concatenation step writes.
func (l Layout) ConcatedResultsPath(v Variant, cellType string) string {
	return path.Join(l.ResultPrefix(v, cellType), "concated_alltests_output_fixed.tsv.gz")
}

// AnnotationPrefix points at the gene-pair annotation shards for a cell type.
// Annotations are shared between variants.
func (l Layout) AnnotationPrefix(cellType string) string {
	return path.Join(l.Root, "annotation", l.Label(cellType))
}

// EQTLReferencePath is the eQTL reference table the screening and correction
// steps compare against.
func (l Layout) EQTLReferencePath(cellType string) string {
	return path.Join(l.Root, "input", "eqtl", l.Label(cellType)+".tsv.gz")
}

// ScreenSavePrefix is the output prefix of the permutation screening step.
func (l Layout) ScreenSavePrefix(v Variant, cellType string) string {
	return path.Join(l.ResultPrefix(v, cellType), "permutation_screened")
}

// PermutationPValuePath is the screened p-value table consumed by the
// multiple-testing correction step.
func (l Layout) PermutationPValuePath(v Variant, cellType string) string {
	return l.ScreenSavePrefix(v, cellType) + ".permutation_pvalues.tsv.gz"
}

// CorrectionSavePrefix is the output prefix of the multiple-testing
// correction step, the final files of the branch.
func (l Layout) CorrectionSavePrefix(v Variant, cellType string) string {
	return path.Join(l.ResultPrefix(v, cellType), "multipletesting_corrected")
}
