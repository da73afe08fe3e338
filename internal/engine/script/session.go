package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"symtable/internal/core/errors"
	"symtable/internal/symtab"

	"github.com/google/uuid"
)

// Session drives one scope stack from textual commands and writes command
// output to its writer.
type Session struct {
	ID            string
	stack         *symtab.ScopeStack[string, string]
	out           io.Writer
	defaultFilter symtab.ScopeOption
	// line is the command being executed, trimmed.
	line string
}

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	filter    symtab.ScopeOption
	stackOpts []symtab.Option
}

// WithDefaultFilter sets the filter used by lookup and dump when none is given.
func WithDefaultFilter(opt symtab.ScopeOption) SessionOption {
	return func(c *sessionConfig) { c.filter = opt }
}

// WithStackOptions forwards options to the underlying scope stack.
func WithStackOptions(opts ...symtab.Option) SessionOption {
	return func(c *sessionConfig) { c.stackOpts = append(c.stackOpts, opts...) }
}

func NewSession(out io.Writer, opts ...SessionOption) *Session {
	cfg := sessionConfig{filter: symtab.All}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		ID:            uuid.New().String(),
		stack:         symtab.New[string, string](cfg.stackOpts...),
		out:           out,
		defaultFilter: cfg.filter,
	}
}

// Stack exposes the session's stack for read-only inspection.
func (s *Session) Stack() *symtab.ScopeStack[string, string] {
	return s.stack
}

// SetOutput redirects subsequent command output.
func (s *Session) SetOutput(w io.Writer) {
	s.out = w
}

// Run executes every line of r, stopping at the first failing command. The
// returned error carries the failing line number in its context.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		if err := s.Exec(scanner.Text()); err != nil {
			slog.Debug("script command failed", "session", s.ID, "line", lineNo, "error", err)
			return errors.AddContext(err, errors.CtxLine, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "read script")
	}
	return nil
}

// Exec runs a single command line. Blank lines and # comments are no-ops.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := commands[name]
	if !ok {
		return errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("unknown command %q (try help)", fields[0])),
			errors.CtxOperation, name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return errors.AddContext(
			errors.New(errors.CodeValidationError, "usage: "+cmd.usage),
			errors.CtxOperation, name)
	}

	slog.Debug("script command", "session", s.ID, "command", name, "args", len(args))
	s.line = line
	return cmd.run(s, args)
}

// tail returns the text of line after its first n fields with inner
// spacing kept.
func tail(line string, n int) string {
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace)
}

func (s *Session) filterArg(args []string, idx int) (symtab.ScopeOption, error) {
	if len(args) <= idx {
		return s.defaultFilter, nil
	}
	return symtab.ParseScopeOption(args[idx])
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}
