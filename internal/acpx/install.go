package acpx

import "strings"

// PackageName is the npm package shipping the acpx binary.
const PackageName = "@openclaw/acpx"

const packageManager = "npm"

// defaultPinnedVersion is installed when no expected version is configured.
// Bump together with the bridge release that certifies it.
const defaultPinnedVersion = "0.4.2"

// pinVersion resolves the version an install must pin: the trimmed
// expectation when present, the default otherwise.
func pinVersion(expected string) string {
	if v := strings.TrimSpace(expected); v != "" {
		return v
	}
	return defaultPinnedVersion
}

// installArgs builds the npm argument list. Dev dependencies are omitted,
// the lockfile stays untouched, and the version is pinned exactly.
func installArgs(version string) []string {
	return []string{"install", "--omit=dev", "--no-package-lock", PackageName + "@" + version}
}

// InstallCommand returns the ready-to-run install string surfaced in check
// failures and warnings. It is for operators to copy, never parsed back.
func InstallCommand(expectedVersion string) string {
	return packageManager + " " + strings.Join(installArgs(pinVersion(expectedVersion)), " ")
}
