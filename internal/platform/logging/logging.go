package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// New builds the root logger. Unknown level names fall back to info.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "sleeptrack",
		Level:  lvl,
		Output: out,
	})
}

// Discard is used where no logger was supplied.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
