package coeqtl

import (
	"path"

	"github.com/samber/lo"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

// External processing scripts chained by the driver. Their statistics live
// outside this repository; the driver only wires their inputs and outputs.
const (
	scriptConcat  = "concat_betaqtl_results.py"
	scriptScreen  = "screen_permutation_p_values.py"
	scriptCorrect = "multipletesting_correction.py"
)

// Params configures pipeline generation for one cell type. Zero-value fields
// fall back to {{var}} placeholders so the concrete locations come from the
// profile at run time.
type Params struct {
	Root      string
	Condition string
	CellType  string

	// Interpreter is the command stages run, typically the python binary of
	// the mapping environment.
	Interpreter string
	// ScriptsDir holds the three processing scripts.
	ScriptsDir string
}

func (p Params) withDefaults() Params {
	if p.Root == "" {
		p.Root = "{{workdir}}"
	}
	if p.Condition == "" {
		p.Condition = DefaultCondition
	}
	if p.Interpreter == "" {
		p.Interpreter = "{{python}}"
	}
	if p.ScriptsDir == "" {
		p.ScriptsDir = "{{scripts_dir}}"
	}
	return p
}

// Postprocess generates the post-processing pipeline for one cell type: for
// each result variant, concatenate the betaQTL result shards, screen the
// permutation p-values against the eQTL reference, then apply the
// multiple-testing correction. The correction stage consumes exactly the
// files the two earlier stages declared as outputs.
func Postprocess(p Params) domain.Pipeline {
	p = p.withDefaults()
	layout := NewLayout(p.Root, p.Condition)

	stages := lo.FlatMap(Variants(), func(v Variant, _ int) []domain.StageSpec {
		return branchStages(p, layout, v)
	})

	return domain.Pipeline{
		Name:   "postprocess_" + layout.Label(p.CellType),
		Vars:   domain.Vars{},
		Stages: stages,
	}
}

func branchStages(p Params, layout Layout, v Variant) []domain.StageSpec {
	ct := p.CellType

	resultPrefix := layout.ResultPrefix(v, ct)
	concated := layout.ConcatedResultsPath(v, ct)
	annotation := layout.AnnotationPrefix(ct)
	eqtl := layout.EQTLReferencePath(ct)
	screenPrefix := layout.ScreenSavePrefix(v, ct)
	permPValues := layout.PermutationPValuePath(v, ct)
	correctedPrefix := layout.CorrectionSavePrefix(v, ct)

	exitOK := 0

	return []domain.StageSpec{
		{
			Name:    "concat-" + v.Short(),
			Command: p.Interpreter,
			Args: []string{
				path.Join(p.ScriptsDir, scriptConcat),
				"--prefix", resultPrefix,
				"--savepath", concated,
				"--annotation_prefix", annotation,
			},
			Checks: domain.ChecksSpec{
				ExitCode: &exitOK,
				Files:    []domain.FileCheck{{Path: concated, MinBytes: 1}},
			},
		},
		{
			Name:    "screen-permutations-" + v.Short(),
			Command: p.Interpreter,
			Args: []string{
				path.Join(p.ScriptsDir, scriptScreen),
				"--eqtl_path", eqtl,
				"--result_prefix", resultPrefix,
				"--save_prefix", screenPrefix,
				"--annotation_prefix", annotation,
			},
			Checks: domain.ChecksSpec{
				ExitCode: &exitOK,
				Files:    []domain.FileCheck{{Path: permPValues, MinBytes: 1}},
			},
		},
		{
			Name:    "multipletesting-correction-" + v.Short(),
			Command: p.Interpreter,
			Args: []string{
				path.Join(p.ScriptsDir, scriptCorrect),
				"--permutation_pvalue_path", permPValues,
				"--coeqtl_path", concated,
				"--eqtl_path", eqtl,
				"--save_prefix", correctedPrefix,
			},
			Checks: domain.ChecksSpec{
				ExitCode: &exitOK,
			},
		},
	}
}
