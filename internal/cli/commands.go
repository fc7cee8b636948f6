package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/render"
	"github.com/agalitsyn/telegram-todo-bot/version"
)

func commands() []command {
	return []command{
		{name: "add", aliases: []string{"a"}, usage: "todo add [-due DATE] [-target DATE] <text...>", synopsis: "Add a task", mutates: true, run: runAdd},
		{name: "edit", aliases: []string{"e"}, usage: "todo edit <N> <text...>", synopsis: "Change the text of task N", mutates: true, run: runEdit},
		{name: "rm", aliases: []string{"del"}, usage: "todo rm <N>", synopsis: "Delete task N", mutates: true, run: runDelete},
		{name: "done", aliases: []string{"toggle"}, usage: "todo done <N>", synopsis: "Mark task N done or undone", mutates: true, run: runDone},
		{name: "mv", aliases: []string{"move"}, usage: "todo mv <N> <M>", synopsis: "Move task N to position M", mutates: true, run: runMove},
		{name: "ls", aliases: []string{"list"}, usage: "todo ls [all|completed|pending]", synopsis: "List tasks", run: runList},
		{name: "stats", usage: "todo stats", synopsis: "Show counters", run: runStats},
		{name: "version", usage: "todo version", synopsis: "Show version", run: runVersion},
		{name: "help", usage: "todo help", synopsis: "Show help", run: runHelp},
	}
}

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add")
	due := fs.String("due", "", "")
	target := fs.String("target", "", "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	draft := model.NewDraft(strings.Join(fs.Args(), " "))
	var err error
	if draft.DueDate, err = model.ParseOptionalDate(*due, e.cfg.Location); err != nil {
		return usagef("due date: %s", err)
	}
	if draft.CompletionTargetDate, err = model.ParseOptionalDate(*target, e.cfg.Location); err != nil {
		return usagef("target date: %s", err)
	}

	e.store.Add(ctx, draft)
	return nil
}

func runEdit(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return usagef("task number required")
	}
	index, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	// an empty text cancels the edit
	if t, ok := e.store.At(index); ok {
		e.store.Edit(ctx, t.ID, strings.Join(args[1:], " "))
	}
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	index, err := singlePosition(args)
	if err != nil {
		return err
	}
	if t, ok := e.store.At(index); ok {
		e.store.Delete(ctx, t.ID)
	}
	return nil
}

func runDone(ctx context.Context, e *env, args []string) error {
	index, err := singlePosition(args)
	if err != nil {
		return err
	}
	if t, ok := e.store.At(index); ok {
		e.store.ToggleComplete(ctx, t.ID)
	}
	return nil
}

func runMove(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return usagef("two task numbers required")
	}
	from, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	to, err := parsePosition(args[1])
	if err != nil {
		return err
	}

	if drag, ok := e.store.BeginDrag(from); ok {
		drag.Hover(ctx, to)
		drag.Drop()
	}
	return nil
}

func runList(_ context.Context, e *env, args []string) error {
	mode, err := model.ParseFilterMode(strings.Join(args, " "))
	if err != nil {
		return usagef("%s", err)
	}
	printList(e, mode, e.store.Now())
	return nil
}

func runStats(_ context.Context, e *env, _ []string) error {
	render.Counters(e.out, e.store, e.styler)
	return nil
}

func runVersion(_ context.Context, e *env, _ []string) error {
	fmt.Fprintf(e.out, "todo %s\n", version.String())
	return nil
}

func runHelp(_ context.Context, e *env, _ []string) error {
	fmt.Fprintln(e.out, "Usage: todo [flags] <command> [args]")
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Commands:")
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, c := range commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", c.usage, c.synopsis)
	}
	tw.Flush()
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Dates: YYYY-MM-DD HH:MM. Task numbers are positions shown by ls.")
	return nil
}

func singlePosition(args []string) (int, error) {
	if len(args) != 1 {
		return 0, usagef("task number required")
	}
	return parsePosition(args[0])
}

// parsePosition converts a 1-based position to an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("invalid task number: %s", s)
	}
	return n - 1, nil
}
