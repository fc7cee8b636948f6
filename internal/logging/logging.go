// Package logging configures lgr for the bot and the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pkgz/lgr"
)

// Setup configures the global lgr logger and routes the std logger through it.
// Secrets are masked in every log line.
func Setup(level string, out io.Writer, secrets ...string) {
	opts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.Out(out)}
	if IsDebug(level) {
		opts = append(opts, lgr.Debug, lgr.CallerFunc)
	}

	var masked []string
	for _, s := range secrets {
		if s != "" {
			masked = append(masked, s)
		}
	}
	if len(masked) > 0 {
		opts = append(opts, lgr.Secret(masked...))
	}

	lgr.Setup(opts...)
	lgr.SetupStdLogger(opts...)
}

func IsDebug(level string) bool {
	return strings.EqualFold(strings.TrimSpace(level), "debug")
}

// BotLogger adapts lgr.L to the logger interface of the telegram library.
type BotLogger struct {
	L lgr.L
}

func (b BotLogger) Printf(format string, v ...interface{}) {
	b.L.Logf("[DEBUG] telegram: "+format, v...)
}

func (b BotLogger) Println(v ...interface{}) {
	b.L.Logf("[DEBUG] telegram: %s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}
