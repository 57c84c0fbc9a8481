// ABOUTME: Structured leveled logger built from gym configuration.
// ABOUTME: Logs go to stderr so command output on stdout stays clean.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gym/internal/config"
)

// New returns a logger writing to stderr.
func New(cfg *config.Config) *log.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w. Unknown levels fall back
// to warn and unknown formats to text.
func NewWithWriter(cfg *config.Config, w io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = log.WarnLevel
	}

	formatter := log.TextFormatter
	if cfg.GetLogFormat() == "json" {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       formatter,
		Prefix:          "gym",
	})
}
