// Package logging centralizes slog construction and the structured field
// vocabulary used across the daemon, the editor session, and the CLI.
//
// Two output formats are supported: a human console handler for interactive
// use and the stock JSON handler for log shipping. Components obtain child
// loggers through NewComponentLogger so every record carries a stable
// component attribute.
package logging
