package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderRunSummary(run domain.RunResult, id string) string {
	var b strings.Builder

	b.WriteString("Pipeline: ")
	b.WriteString(run.PipelineName)
	b.WriteString("\nProfile:  ")
	b.WriteString(run.ProfileName)
	if id != "" {
		b.WriteString("\nRun ID:   ")
		b.WriteString(id)
	}
	b.WriteString("\n\n")

	for _, sr := range run.Stages {
		failed := sr.Error != nil
		for _, c := range sr.Checks {
			if !c.Passed {
				failed = true
				break
			}
		}

		status := "OK"
		if failed {
			status = "FAIL"
		}

		b.WriteString(fmt.Sprintf("[%s] %s (%dms)\n", status, sr.Name, sr.DurationMS))
		if failed {
			for _, line := range strings.Split(strings.TrimRight(renderStageDetails(sr), "\n"), "\n") {
				b.WriteString("  ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func renderStageDetails(sr domain.StageResult) string {
	var b strings.Builder

	if sr.Error != nil {
		b.WriteString("Error:\n")
		b.WriteString("  - kind: ")
		b.WriteString(string(sr.Error.Kind))
		b.WriteString("\n  - msg: ")
		b.WriteString(sr.Error.Message)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Exit: %d\nDuration: %dms\n\n", sr.ExitCode, sr.DurationMS))

	if len(sr.Checks) > 0 {
		b.WriteString("Checks:\n")
		for _, c := range sr.Checks {
			status := "FAIL"
			if c.Passed {
				status = "PASS"
			}
			b.WriteString("  - ")
			b.WriteString(c.Name)
			b.WriteString(" [")
			b.WriteString(status)
			b.WriteString("] ")
			b.WriteString(c.Message)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sr.Extracts) > 0 {
		b.WriteString("Extracts:\n")
		for _, e := range sr.Extracts {
			status := "FAIL"
			if e.Success {
				status = "OK"
			}
			b.WriteString("  - ")
			b.WriteString(e.Name)
			b.WriteString(" [")
			b.WriteString(status)
			b.WriteString("] ")
			b.WriteString(e.Message)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sr.Extracted) > 0 {
		b.WriteString("Extracted Vars:\n")
		for k, v := range sr.Extracted {
			b.WriteString("  - ")
			b.WriteString(k)
			b.WriteString(" = ")
			b.WriteString(v)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sr.Output.Stderr) > 0 {
		b.WriteString("Stderr:\n")
		b.WriteString(clampString(strings.TrimSpace(string(sr.Output.Stderr)), 2000))
		if sr.Output.StderrTruncated {
			b.WriteString("\n(truncated)")
		}
		b.WriteString("\n")
	}

	return b.String()
}
