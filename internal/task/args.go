// SPDX-License-Identifier: MPL-2.0

package task

import (
	"fmt"
	"maps"
	"slices"
)

// Args holds resolved parameter values keyed by Param.Name.
// A fresh Args is produced for each invocation and discarded afterwards.
type Args map[string]any

// Resolve overlays overrides on the parameter defaults.
// Every declared parameter is present in the result. Overrides naming an undeclared
// parameter, or carrying a value of the wrong type, are rejected.
func Resolve(params []Param, overrides map[string]any) (Args, error) {
	args := make(Args, len(params))
	declared := make(map[string]Param, len(params))
	for _, p := range params {
		declared[p.Name] = p
		args[p.Name] = p.Default
	}

	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		p, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		v := overrides[name]
		if err := p.checkValue(v); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		args[name] = v
	}

	return args, nil
}

// String returns the string value of the named parameter, or "" if absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns the boolean value of the named parameter, or false if absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}
