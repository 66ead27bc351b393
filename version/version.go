package version

// Version is the semver of the current build. The schema version tracked in
// migration_history is derived from the minor version.
var Version = "0.1.0"

func GetCurrentVersion() string {
	return Version
}
