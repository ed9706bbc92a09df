// Package console collects the messages a pattern program prints while it
// is evaluated.
package console

import (
	"context"
	"log/slog"
	"strings"
)

// Level is the severity of a console entry.
type Level uint8

const (
	Debug Level = iota
	Info
	Warning
	Error
)

var prefixes = [...]string{
	Debug:   "[-] ",
	Info:    "[i] ",
	Warning: "[*] ",
	Error:   "[!] ",
}

var slogLevels = [...]slog.Level{
	Debug:   slog.LevelDebug,
	Info:    slog.LevelInfo,
	Warning: slog.LevelWarn,
	Error:   slog.LevelError,
}

func (l Level) String() string {
	return strings.TrimSpace(prefixes[l])
}

// Entry is one logged message.
type Entry struct {
	Level   Level
	Message string
}

func (e Entry) String() string {
	return prefixes[e.Level] + e.Message
}

// AbortError ends an evaluation with a user supplied message.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string { return e.Message }

// Console buffers entries and mirrors them to a logger.
type Console struct {
	entries []Entry
	logger  *slog.Logger
}

// New returns a console that mirrors entries to logger. A nil logger
// disables mirroring.
func New(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

// Log appends a message.
func (c *Console) Log(level Level, msg string) {
	c.entries = append(c.entries, Entry{Level: level, Message: msg})
	if c.logger != nil {
		c.logger.Log(context.Background(), slogLevels[level], msg, "source", "console")
	}
}

// Abort records msg as an error and returns the error that stops the
// evaluation. Callers must return it.
func (c *Console) Abort(msg string) error {
	c.Log(Error, msg)
	return &AbortError{Message: msg}
}

// Entries returns the messages logged so far.
func (c *Console) Entries() []Entry {
	return c.entries
}

// Clear drops all entries.
func (c *Console) Clear() {
	c.entries = nil
}
