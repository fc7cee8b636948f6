// Package cli is the terminal front end of the to-do list.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/render"
	"github.com/agalitsyn/telegram-todo-bot/internal/todo"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitUsage   = 1
	ExitStorage = 2
)

// DefaultListKey is the snapshot key of the terminal list.
const DefaultListKey = "todos"

type Config struct {
	ListKey          string
	Quiet            bool
	DeadlineWindow   time.Duration
	PersistCompleted bool
	Location         *time.Location
}

type command struct {
	name     string
	aliases  []string
	usage    string
	synopsis string
	mutates  bool
	run      func(ctx context.Context, e *env, args []string) error
}

// env is what a command runs against.
type env struct {
	cfg    Config
	store  *todo.Store
	out    io.Writer
	errOut io.Writer
	styler render.Styler
}

// usageError is reported with exit code ExitUsage.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// Runner dispatches command lines against one list.
type Runner struct {
	cfg      Config
	storage  model.SnapshotStorage
	log      lgr.L
	now      func() time.Time
	commands []command
}

func NewRunner(cfg Config, storage model.SnapshotStorage, log lgr.L) *Runner {
	if cfg.ListKey == "" {
		cfg.ListKey = DefaultListKey
	}
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = todo.DefaultDeadlineWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Runner{
		cfg:      cfg,
		storage:  storage,
		log:      log,
		now:      time.Now,
		commands: commands(),
	}
}

// Run executes one command and returns the process exit code.
// No arguments lists all tasks.
func (r *Runner) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{"ls"}
	}

	cmd, ok := r.find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return ExitUsage
	}

	e := &env{cfg: r.cfg, out: out, errOut: errOut, styler: render.NewTerminal()}
	if cmd.name != "help" && cmd.name != "version" {
		e.store = todo.Open(ctx, r.storage, r.cfg.ListKey,
			todo.WithLogger(r.log),
			todo.WithClock(r.now),
			todo.WithDeadlineWindow(r.cfg.DeadlineWindow),
			todo.WithCompletionPersistence(r.cfg.PersistCompleted),
			todo.WithDeadlineWarning(func(t model.Task) {
				warn := color.New(color.FgYellow).SprintFunc()
				fmt.Fprintln(errOut, warn(fmt.Sprintf("⏰ %q is due soon: %s", t.Text, t.DueDate.In(r.cfg.Location).Format(model.DateLayout))))
			}),
		)
	}

	if err := cmd.run(ctx, e, args[1:]); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		if _, ok := err.(usageError); ok {
			fmt.Fprintf(errOut, "usage: %s\n", cmd.usage)
		}
		return ExitUsage
	}

	if cmd.mutates && !r.cfg.Quiet {
		printList(e, model.FilterAll, r.now())
	}
	return ExitSuccess
}

func (r *Runner) find(name string) (command, bool) {
	for _, c := range r.commands {
		if c.name == name {
			return c, true
		}
		for _, alias := range c.aliases {
			if alias == name {
				return c, true
			}
		}
	}
	return command{}, false
}

func printList(e *env, mode model.FilterMode, now time.Time) {
	render.Counters(e.out, e.store, e.styler)
	render.List(e.out, e.store, render.Options{
		Mode:     mode,
		Now:      now,
		Window:   e.store.DeadlineWindow(),
		Location: e.cfg.Location,
		Styler:   e.styler,
	})
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags reports bad flags as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s", strings.TrimPrefix(err.Error(), "flag "))
	}
	return nil
}
