// Package logging holds the process-wide logger used by seedvault.
//
// The core never logs plaintext, passphrases or ciphertext; only record
// IDs, counts and storage conditions.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below rather than reaching for L directly.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	Prefix: "seedvault",
	Level:  clog.WarnLevel,
})

// Setup points L at w and sets its level from a name such as "debug" or
// "warn". An empty level keeps the current one.
func Setup(w io.Writer, level string) error {
	lvl := L.GetLevel()
	if level != "" {
		parsed, err := clog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	L = clog.NewWithOptions(w, clog.Options{
		Prefix: "seedvault",
		Level:  lvl,
	})
	return nil
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}
