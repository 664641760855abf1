package version

// Version is the current repodigest release.
const Version = "0.1.0"

// FullVersion returns the version with the v prefix used in tags.
func FullVersion() string {
	return "v" + Version
}
