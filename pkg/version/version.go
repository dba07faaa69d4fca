// Package version records build metadata for the dagfang binary.
package version

// Populated at build time via -ldflags, e.g.
// -X github.com/Sumatoshi-tech/dagfang/pkg/version.Version=v1.0.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
