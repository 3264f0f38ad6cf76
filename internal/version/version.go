package version

// Build information set via ldflags at compile time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns version information as a structured map.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
	}
}

// String renders the build information on one line.
func String() string {
	return Version + " (" + Commit + ", " + BuildDate + ")"
}
