package store

import "path/filepath"

func StatePath(root string) string {
	return filepath.Join(root, "state.toml")
}

func AuditPath(root string) string {
	return filepath.Join(root, "audit.log")
}

func LogsRoot(root string) string {
	return filepath.Join(root, "logs")
}

func DefaultLogPath(root string) string {
	return filepath.Join(LogsRoot(root), "clawbridge.log")
}

// PluginsRoot is where npm provisions helper packages such as acpx.
func PluginsRoot(root string) string {
	return filepath.Join(root, "plugins")
}
