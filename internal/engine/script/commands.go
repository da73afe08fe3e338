package script

import (
	"sort"
	"strings"

	"symtable/internal/core/errors"
)

type command struct {
	usage   string
	minArgs int
	maxArgs int // -1 means unbounded
	run     func(s *Session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"enter": {
			usage: "enter <name>", minArgs: 1, maxArgs: 1,
			run: func(s *Session, args []string) error {
				s.stack.EnterScope(args[0])
				return nil
			},
		},
		"exit": {
			usage: "exit", maxArgs: 0,
			run: func(s *Session, args []string) error {
				return s.stack.ExitScope()
			},
		},
		"insert": {
			usage: "insert <key> <value...>", minArgs: 2, maxArgs: -1,
			run: func(s *Session, args []string) error {
				return s.stack.Insert(args[0], tail(s.line, 2))
			},
		},
		"lookup": {
			usage: "lookup <key> [all|cur|gbl]", minArgs: 1, maxArgs: 2,
			run: runLookup,
		},
		"size": {
			usage: "size", maxArgs: 0,
			run: func(s *Session, args []string) error {
				s.printf("size: %d\n", s.stack.Size())
				return nil
			},
		},
		"scopes": {
			usage: "scopes", maxArgs: 0,
			run: func(s *Session, args []string) error {
				s.printf("scopes: %d\n", s.stack.NumScopes())
				return nil
			},
		},
		"current": {
			usage: "current", maxArgs: 0,
			run: runCurrent,
		},
		"dump": {
			usage: "dump [all|cur|gbl]", maxArgs: 1,
			run: func(s *Session, args []string) error {
				opt, err := s.filterArg(args, 0)
				if err != nil {
					return err
				}
				return s.stack.Dump(s.out, opt)
			},
		},
		"help": {
			usage: "help", maxArgs: 0,
			run: runHelp,
		},
	}
}

func runLookup(s *Session, args []string) error {
	opt, err := s.filterArg(args, 1)
	if err != nil {
		return err
	}
	value, found, err := s.stack.Lookup(args[0], opt)
	if err != nil {
		return errors.AddContext(err, errors.CtxSymbol, args[0])
	}
	if !found {
		s.printf("%s not found\n", args[0])
		return nil
	}
	s.printf("%s = %s\n", args[0], value)
	return nil
}

func runCurrent(s *Session, args []string) error {
	scope, err := s.stack.CurrentScope()
	if err != nil {
		return err
	}
	if scope.Len() == 0 {
		s.printf("%s: (empty)\n", scope.Name)
		return nil
	}
	pairs := make([]string, 0, scope.Len())
	for _, key := range scope.Keys() {
		pairs = append(pairs, key+"="+scope.Symbols[key])
	}
	s.printf("%s: %s\n", scope.Name, strings.Join(pairs, ", "))
	return nil
}

func runHelp(s *Session, args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.printf("  %s\n", commands[name].usage)
	}
	return nil
}
