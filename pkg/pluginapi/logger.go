package pluginapi

// Logger is the host-supplied diagnostic sink. Plugins and helpers must
// tolerate its absence: a nil Logger is valid and means "stay quiet".
type Logger interface {
	Info(msg string)
	Warn(msg string)
}

// Info logs via l when it is non-nil.
func Info(l Logger, msg string) {
	if l != nil {
		l.Info(msg)
	}
}

// Warn logs via l when it is non-nil.
func Warn(l Logger, msg string) {
	if l != nil {
		l.Warn(msg)
	}
}
