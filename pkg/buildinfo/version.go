// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/deptree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/deptree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/deptree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/deptree
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the multi-line form printed by "deptree --version".
func String() string {
	return fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// UserAgent identifies deptree to package registries.
func UserAgent() string {
	return "deptree/" + Version + " (+https://github.com/matzehuels/deptree)"
}
