// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conbuild/conbuild/internal/fsutil"
)

// rmCommand removes files and directories.
type rmCommand struct {
	name  string
	flags []FlagInfo
}

func init() {
	DefaultRegistry.Register(newRmCommand())
}

func newRmCommand() *rmCommand {
	return &rmCommand{
		name: "rm",
		flags: []FlagInfo{
			{Name: "r", Description: "remove directories and their contents recursively"},
			{Name: "R", Description: "same as -r"},
			{Name: "f", Description: "ignore nonexistent files"},
		},
	}
}

// Name returns the command name.
func (c *rmCommand) Name() string { return c.name }

// SupportedFlags returns the flags supported by this command.
func (c *rmCommand) SupportedFlags() []FlagInfo { return c.flags }

// Run executes rm.
// Usage: rm [-rRf] FILE...
func (c *rmCommand) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)

	fset := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	recursive := fset.Bool("r", false, "recursive")
	recursiveAlt := fset.Bool("R", false, "recursive")
	force := fset.Bool("f", false, "force")
	if err := fset.Parse(args[1:]); err != nil {
		return wrapError(c.name, err)
	}

	operands := fset.Args()
	if len(operands) == 0 {
		if *force {
			return nil
		}
		return wrapError(c.name, errors.New("missing operand"))
	}

	for _, target := range operands {
		if !filepath.IsAbs(target) {
			target = filepath.Join(hc.Dir, target)
		}
		if err := c.remove(target, *recursive || *recursiveAlt, *force); err != nil {
			return wrapError(c.name, err)
		}
	}
	return nil
}

func (c *rmCommand) remove(path string, recursive, force bool) error {
	info, err := os.Lstat(path)
	if err != nil {
		if force && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		if !recursive {
			return fmt.Errorf("%s: is a directory", path)
		}
		_, err := fsutil.RemoveAllIfExists(path)
		return err
	}
	return os.Remove(path)
}
