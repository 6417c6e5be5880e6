package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shotlist/internal/handoff"
	"shotlist/internal/selection"
	"shotlist/internal/textutil"
)

func commandTable() map[string]command {
	quit := command{usage: "quit", summary: "end the session", run: runQuit}
	return map[string]command{
		"add":         {usage: "add <path>...", summary: "classify paths and append them", run: runAdd},
		"list":        {usage: "list", summary: "show the selection tree", run: runList},
		"check":       {usage: "check <id>...", summary: "check nodes", run: runToggle(true)},
		"uncheck":     {usage: "uncheck <id>...", summary: "uncheck nodes", run: runToggle(false)},
		"check-all":   {usage: "check-all", summary: "check every node", run: runSetAll(true)},
		"uncheck-all": {usage: "uncheck-all", summary: "uncheck every node", run: runSetAll(false)},
		"remove":      {usage: "remove <id>...", summary: "remove nodes and their frames", run: runRemove},
		"up":          {usage: "up <id>...", summary: "move siblings up one slot", run: runMove(selection.Up)},
		"down":        {usage: "down <id>...", summary: "move siblings down one slot", run: runMove(selection.Down)},
		"validate":    {usage: "validate", summary: "require one format across checked images", run: runValidate},
		"extract":     {usage: "extract", summary: "show the checked selection", run: runExtract},
		"plan":        {usage: "plan [padding]", summary: "build encoder input from the selection", run: runPlan},
		"clear":       {usage: "clear", summary: "drop every node", run: runClear},
		"help":        {usage: "help", summary: "list commands", run: runHelp},
		"quit":        quit,
		"exit":        quit,
	}
}

func runQuit(context.Context, *Session, []string) (bool, error) {
	return true, nil
}

func runAdd(ctx context.Context, s *Session, args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("add: expected at least one path")
	}
	if err := s.Add(ctx, args); err != nil {
		return false, fmt.Errorf("add: %w", err)
	}
	return false, nil
}

func runList(_ context.Context, s *Session, _ []string) (bool, error) {
	if s.tree.Len() == 0 {
		s.printf("selection is empty\n")
		return false, nil
	}
	var rows [][]string
	s.tree.Walk(func(node selection.Node, depth int) bool {
		label := node.Label()
		if depth > 0 {
			label = strings.Repeat("  ", depth) + label
		}
		rows = append(rows, []string{
			strconv.FormatInt(int64(node.ID), 10),
			textutil.Ternary(node.Checked, "[x]", "[ ]"),
			label,
			node.Format,
			node.ImageSize,
			node.FileSize,
		})
		return true
	})
	s.printf("%s\n", textutil.RenderTable(
		[]string{"ID", "", "Name", "Format", "Size", "File Size"},
		rows,
		[]textutil.Align{textutil.AlignRight, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignRight, textutil.AlignRight},
	))
	return false, nil
}

func runToggle(checked bool) func(context.Context, *Session, []string) (bool, error) {
	return func(_ context.Context, s *Session, args []string) (bool, error) {
		ids, err := parseIDs(args)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if _, ok := s.tree.Node(id); !ok {
				return false, fmt.Errorf("node %d: %w", id, selection.ErrNodeNotFound)
			}
		}
		for _, id := range ids {
			if err := s.tree.Toggle(id, checked); err != nil {
				return false, err
			}
		}
		return false, nil
	}
}

func runSetAll(checked bool) func(context.Context, *Session, []string) (bool, error) {
	return func(_ context.Context, s *Session, _ []string) (bool, error) {
		s.tree.SetAll(checked)
		return false, nil
	}
}

func runRemove(_ context.Context, s *Session, args []string) (bool, error) {
	ids, err := parseIDs(args)
	if err != nil {
		return false, err
	}
	before := s.tree.Len()
	if err := s.tree.Remove(ids); err != nil {
		return false, err
	}
	s.printf("removed %d node(s)\n", before-s.tree.Len())
	return false, nil
}

func runMove(direction selection.Direction) func(context.Context, *Session, []string) (bool, error) {
	return func(_ context.Context, s *Session, args []string) (bool, error) {
		ids, err := parseIDs(args)
		if err != nil {
			return false, err
		}
		return false, s.tree.Move(ids, direction)
	}
}

func runValidate(_ context.Context, s *Session, _ []string) (bool, error) {
	if err := s.tree.ValidateUniformFormat(); err != nil {
		return false, err
	}
	formats := s.tree.CheckedFormats()
	if len(formats) == 0 {
		s.printf("ok: nothing checked\n")
		return false, nil
	}
	s.printf("ok: %s\n", formats[0])
	return false, nil
}

func runExtract(_ context.Context, s *Session, _ []string) (bool, error) {
	records := selection.Extract(s.tree)
	if len(records) == 0 {
		s.printf("nothing checked\n")
		return false, nil
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		first := ""
		if len(record.Paths) > 0 {
			first = record.Paths[0].Path
		}
		rows = append(rows, []string{
			record.Key(),
			string(record.Kind),
			record.Group,
			record.Format,
			strconv.Itoa(len(record.Paths)),
			first,
		})
	}
	s.printf("%s\n", textutil.RenderTable(
		[]string{"Key", "Kind", "Group", "Format", "Paths", "First"},
		rows,
		[]textutil.Align{textutil.AlignLeft, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignRight},
	))
	return false, nil
}

func runPlan(_ context.Context, s *Session, args []string) (bool, error) {
	padding := s.padding
	if len(args) > 1 {
		return false, errors.New("plan: expected at most one padding argument")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("plan: invalid padding %q", args[0])
		}
		padding = n
	}
	if err := s.tree.ValidateUniformFormat(); err != nil {
		return false, err
	}
	plan, err := handoff.Build(selection.Extract(s.tree), handoff.Options{Padding: padding})
	if err != nil {
		return false, err
	}
	if plan.Empty() {
		s.printf("nothing checked\n")
		return false, nil
	}
	if len(plan.Sequences) > 0 {
		rows := make([][]string, 0, len(plan.Sequences))
		for _, seq := range plan.Sequences {
			rows = append(rows, []string{seq.Group, seq.Template, seq.Range.Summary(), seq.Format})
		}
		s.printf("%s\n", textutil.RenderTable([]string{"Group", "Template", "Frames", "Format"}, rows, nil))
	}
	if len(plan.Singles) > 0 {
		s.printf("%s", handoff.ConcatList(plan.Singles))
	}
	return false, nil
}

func runClear(_ context.Context, s *Session, _ []string) (bool, error) {
	s.tree.Clear()
	return false, nil
}

func runHelp(_ context.Context, s *Session, _ []string) (bool, error) {
	for _, name := range s.commandNames() {
		if name == "exit" {
			continue
		}
		cmd := s.commands[name]
		s.printf("  %-16s %s\n", cmd.usage, cmd.summary)
	}
	return false, nil
}
