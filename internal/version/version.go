package version

// Set at build time via -ldflags.
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
