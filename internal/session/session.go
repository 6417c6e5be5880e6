package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"shotlist/internal/logging"
	"shotlist/internal/selection"
	"shotlist/internal/sequence"
)

const prompt = "shotlist> "

// ErrUnknownCommand is returned for unrecognized command names.
var ErrUnknownCommand = errors.New("unknown command")

// Classifier turns raw paths into groups and singles.
type Classifier interface {
	Classify(ctx context.Context, paths []string) (sequence.Result, error)
}

// Options configures a Session.
type Options struct {
	Classifier Classifier
	// Padding is the default template width for "plan". Zero derives it.
	Padding     int
	Out         io.Writer
	Interactive bool
	Logger      *slog.Logger
	// ID overrides the generated session id.
	ID string
}

// Session owns one selection tree and its command loop.
type Session struct {
	id          string
	tree        *selection.Tree
	classifier  Classifier
	padding     int
	out         io.Writer
	interactive bool
	logger      *slog.Logger
	commands    map[string]command
}

type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, s *Session, args []string) (quit bool, err error)
}

// New creates a session with an empty tree.
func New(opts Options) *Session {
	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = uuid.NewString()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := logging.WithSession(logging.NewComponentLogger(opts.Logger, "session"), id)
	return &Session{
		id:          id,
		tree:        selection.New(logger),
		classifier:  opts.Classifier,
		padding:     opts.Padding,
		out:         out,
		interactive: opts.Interactive,
		logger:      logger,
		commands:    commandTable(),
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Tree exposes the session's selection tree.
func (s *Session) Tree() *selection.Tree { return s.tree }

// Run executes commands read from in until quit, end of input or ctx is done.
// Command errors are printed; only read errors and cancellation are returned.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.logger.Info("session started", logging.Bool("interactive", s.interactive))
	defer s.logger.Info("session ended")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.interactive {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := s.Execute(ctx, scanner.Text())
		if err != nil {
			s.report(err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single command line.
func (s *Session) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := s.commands[name]
	if !ok {
		return false, fmt.Errorf("%w %q (try help)", ErrUnknownCommand, fields[0])
	}
	s.logger.Debug("command", logging.String("name", name), logging.Int("args", len(fields)-1))
	return cmd.run(ctx, s, fields[1:])
}

// Add classifies paths and appends the result to the tree. Nothing is added
// when any path is already listed.
func (s *Session) Add(ctx context.Context, paths []string) error {
	if s.classifier == nil {
		return errors.New("no classifier configured")
	}
	result, err := s.classifier.Classify(ctx, paths)
	if err != nil {
		return err
	}
	if result.Empty() {
		s.printf("nothing to add\n")
		return nil
	}
	ids, err := s.tree.Insert(result)
	if err != nil {
		return err
	}
	frames := 0
	for _, group := range result.Groups {
		frames += len(group.Members)
	}
	s.logger.Info("paths added",
		logging.Int("groups", len(result.Groups)),
		logging.Int("frames", frames),
		logging.Int("singles", len(result.Singles)))
	s.printf("added %d group(s) with %d frame(s) and %d single image(s) (%d node(s))\n",
		len(result.Groups), frames, len(result.Singles), len(ids))
	return nil
}

func (s *Session) report(err error) {
	var classified interface{ ErrorKind() string }
	if errors.As(err, &classified) {
		fmt.Fprintf(s.out, "error (%s): %v\n", classified.ErrorKind(), err)
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseIDs(args []string) ([]selection.NodeID, error) {
	if len(args) == 0 {
		return nil, errors.New("expected at least one node id")
	}
	ids := make([]selection.NodeID, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid node id %q", arg)
		}
		ids = append(ids, selection.NodeID(n))
	}
	return ids, nil
}

func (s *Session) commandNames() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
