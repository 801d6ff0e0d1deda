package wiring

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// LogLevelEnv overrides the log level of every command.
const LogLevelEnv = "SCOUT_LOG_LEVEL"

// NewLogger returns the root logger. Output goes to w, which must not be the
// stream results are written to. The environment wins over verbose.
func NewLogger(w io.Writer, verbose bool) hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	if env := hclog.LevelFromString(strings.TrimSpace(os.Getenv(LogLevelEnv))); env != hclog.NoLevel {
		level = env
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        "scout",
		DisableTime: true,
		Output:      w,
		Level:       level,
	})
}
