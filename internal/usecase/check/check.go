// Package check evaluates post-stage checks: process exit status, wall-clock
// budget, declared output files, and JSONPath probes on a stage's JSON stdout.
package check

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/PaesslerAG/jsonpath"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

func ExitCode(expected int, got int) domain.CheckResult {
	if got == expected {
		return domain.CheckResult{
			Name:    "exit_code",
			Passed:  true,
			Message: fmt.Sprintf("exit code %d", got),
		}
	}

	return domain.CheckResult{
		Name:    "exit_code",
		Passed:  false,
		Message: fmt.Sprintf("expected exit code %d, got %d", expected, got),
	}
}

func MaxDuration(maxMs int, durationMs int64) domain.CheckResult {
	if durationMs <= int64(maxMs) {
		return domain.CheckResult{
			Name:    "max_ms",
			Passed:  true,
			Message: fmt.Sprintf("duration %dms <= %dms", durationMs, maxMs),
		}
	}

	return domain.CheckResult{
		Name:    "max_ms",
		Passed:  false,
		Message: fmt.Sprintf("expected duration <= %dms, got %dms", maxMs, durationMs),
	}
}

// OutputFile verifies that a declared output exists and reached its minimum
// size. Paths are already resolved by the time checks run.
func OutputFile(fc domain.FileCheck) domain.CheckResult {
	info, err := os.Stat(fc.Path)
	if err != nil {
		return domain.CheckResult{
			Name:    "file",
			Passed:  false,
			Message: fmt.Sprintf("output %q missing: %v", fc.Path, err),
		}
	}
	if info.IsDir() {
		return domain.CheckResult{
			Name:    "file",
			Passed:  false,
			Message: fmt.Sprintf("output %q is a directory", fc.Path),
		}
	}
	if info.Size() < fc.MinBytes {
		return domain.CheckResult{
			Name:    "file",
			Passed:  false,
			Message: fmt.Sprintf("output %q is %d bytes, want >= %d", fc.Path, info.Size(), fc.MinBytes),
		}
	}
	return domain.CheckResult{
		Name:    "file",
		Passed:  true,
		Message: fmt.Sprintf("output %q present (%d bytes)", fc.Path, info.Size()),
	}
}

// Evaluate applies the checks spec against the observed stage outcome.
// Stdout is parsed as JSON only if JSONPath checks are present.
func Evaluate(spec domain.ChecksSpec, exitCode int, durationMs int64, stdout []byte) []domain.CheckResult {
	var out []domain.CheckResult

	if spec.ExitCode != nil {
		out = append(out, ExitCode(*spec.ExitCode, exitCode))
	}
	if spec.MaxDurationMS != nil {
		out = append(out, MaxDuration(*spec.MaxDurationMS, durationMs))
	}
	for _, fc := range spec.Files {
		out = append(out, OutputFile(fc))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	var doc any
	if err := json.Unmarshal(stdout, &doc); err != nil {
		for expr, c := range spec.JSONPath {
			out = append(out, jsonPathChecks(expr, c, nil,
				fmt.Errorf("stage stdout is not valid JSON"))...)
		}
		return out
	}

	for expr, c := range spec.JSONPath {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, c, val, getErr)...)
	}

	return out
}

func jsonPathChecks(expr string, c domain.JSONPathCheck, val any, getErr error) []domain.CheckResult {
	var out []domain.CheckResult
	if c.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if c.Eq != nil {
		out = append(out, checkEq(expr, val, getErr, *c.Eq))
	}
	if c.Matches != nil {
		out = append(out, checkMatches(expr, val, getErr, *c.Matches))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("invalid jsonpath %q: %v", expr, getErr),
		}
	}
	if isEmptyValue(val) {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.exists",
		Passed:  true,
		Message: fmt.Sprintf("jsonpath %q exists", expr),
	}
}

func checkEq(expr string, val any, getErr error, expected string) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.eq",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	s, err := valueToString(val)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.eq",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if s == expected {
		return domain.CheckResult{
			Name:    "jsonpath.eq",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q eq %q", expr, expected),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.eq",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected %q, got %q", expr, expected, s),
	}
}

func checkMatches(expr string, val any, getErr error, pattern string) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	s, err := valueToString(val)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: invalid regex %q: %v", expr, pattern, err),
		}
	}
	if re.MatchString(s) {
		return domain.CheckResult{
			Name:    "jsonpath.matches",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q matches %q", expr, pattern),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.matches",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: %q does not match %q", expr, s, pattern),
	}
}

func valueToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}

	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
