// Package buildinfo carries version metadata injected at link time.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("coeqtlctl %s (commit=%s, date=%s)", Version, Commit, Date)
}
