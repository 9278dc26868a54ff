// Package acpx guarantees the acpx helper binary is present and
// version-matched before the bridge shells out to it. Checking is pure and
// returns data; ensuring installs via npm when permitted and deduplicates
// concurrent callers onto a single in-flight sequence.
package acpx
