package version

// Set at build time via -ldflags "-X github.com/stupside/mp3relay/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
