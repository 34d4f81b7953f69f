package misc

// Build information, set at link time using ldflags.
var (
	appVersion = "development"
	appGitHash = "unknown"
)

// GetVersion returns program version set at build time.
func GetVersion() string {
	return appVersion
}

// GetGitHash returns git hash of the source tree the program was built from.
func GetGitHash() string {
	return appGitHash
}
