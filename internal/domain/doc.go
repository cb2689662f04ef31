// Package domain contains the core domain model for the coeQTL pipeline driver.
//
// The domain is scheduler- and persistence-agnostic: it does not depend on YAML
// parsing, os/exec, or the filesystem. Infra/adapters map into/from these types.
package domain
