// Package logging assembles structured slog loggers and formatting helpers used
// across shotlist components.
//
// It owns the configurable console/JSON handlers, rotates file output, and
// exposes attribute helpers so classifier, selection and watch code tag log
// lines with the same keys (component, session, group). The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Components never reach for a global logger: callers construct one here and
// inject it.
package logging
