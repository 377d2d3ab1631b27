// SPDX-License-Identifier: MPL-2.0

package task

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

type (
	// EnvVar is a single environment assignment applied to a Command.
	EnvVar struct {
		Name  string
		Value string
	}

	// Command is an external program invocation kept as structured argv.
	// Values are never spliced into a shell string, so paths with spaces or
	// shell metacharacters reach the program unchanged.
	Command struct {
		// Env is applied on top of the inherited environment, in order.
		Env []EnvVar
		// Program is the executable name or path.
		Program string
		// Args are the arguments following Program.
		Args []string
	}
)

// NewCommand creates a Command for program with the given arguments.
func NewCommand(program string, args ...string) Command {
	return Command{Program: program, Args: args}
}

// WithEnv returns a copy of c with an additional environment assignment.
func (c Command) WithEnv(name, value string) Command {
	env := make([]EnvVar, 0, len(c.Env)+1)
	env = append(env, c.Env...)
	c.Env = append(env, EnvVar{Name: name, Value: value})
	return c
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// Environ returns the environment assignments in KEY=VALUE form.
func (c Command) Environ() []string {
	env := make([]string, 0, len(c.Env))
	for _, e := range c.Env {
		env = append(env, e.Name+"="+e.Value)
	}
	return env
}

// Script renders the command as a POSIX shell line: env assignments followed by
// the quoted argv. Words that cannot be quoted safely are reported as errors.
func (c Command) Script() (string, error) {
	words := make([]string, 0, len(c.Env)+len(c.Args)+1)
	for _, e := range c.Env {
		q, err := syntax.Quote(e.Value, syntax.LangPOSIX)
		if err != nil {
			return "", err
		}
		words = append(words, e.Name+"="+q)
	}
	for _, w := range c.Argv() {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", err
		}
		words = append(words, q)
	}
	return strings.Join(words, " "), nil
}

// String renders the command for display. It falls back to plain joining when
// a word cannot be quoted.
func (c Command) String() string {
	s, err := c.Script()
	if err != nil {
		return strings.Join(append(c.Environ(), c.Argv()...), " ")
	}
	return s
}
