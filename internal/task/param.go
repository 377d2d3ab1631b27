// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// TypeString marks a parameter holding a string value.
	TypeString ValueType = "string"
	// TypeBool marks a parameter holding a boolean value.
	TypeBool ValueType = "bool"
)

var (
	// ErrInvalidParam is the sentinel error wrapped by InvalidParamError.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrUnknownParam is returned when an override names an undeclared parameter.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrParamType is returned when a value does not match the parameter's type.
	ErrParamType = errors.New("parameter type mismatch")
)

type (
	// ValueType is the kind of value a Param carries.
	ValueType string

	// Param describes a named task parameter and how it is exposed as a CLI flag.
	Param struct {
		// Name identifies the parameter inside Args (e.g. "home_folder").
		Name string
		// Short is the single-character flag alias (e.g. "h"). Optional.
		Short string
		// Long is the long flag name (e.g. "home-folder").
		Long string
		// Type is the value kind.
		Type ValueType
		// Default is used when no override is supplied. Its dynamic type must match Type.
		Default any
		// Help is the flag usage text.
		Help string
	}

	// InvalidParamError reports a malformed Param declaration.
	InvalidParamError struct {
		Name   string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidParam for errors.Is compatibility.
func (e *InvalidParamError) Unwrap() error { return ErrInvalidParam }

// StringParam declares a string parameter.
func StringParam(name, short, long, def, help string) Param {
	return Param{Name: name, Short: short, Long: long, Type: TypeString, Default: def, Help: help}
}

// BoolParam declares a boolean parameter.
func BoolParam(name, short, long string, def bool, help string) Param {
	return Param{Name: name, Short: short, Long: long, Type: TypeBool, Default: def, Help: help}
}

// Validate checks that the declaration is well formed and that Default matches Type.
func (p Param) Validate() error {
	if p.Name == "" {
		return &InvalidParamError{Name: p.Name, Reason: "name must not be empty"}
	}
	if p.Long == "" {
		return &InvalidParamError{Name: p.Name, Reason: "long flag must not be empty"}
	}
	if utf8.RuneCountInString(p.Short) > 1 {
		return &InvalidParamError{Name: p.Name, Reason: fmt.Sprintf("short flag %q must be a single character", p.Short)}
	}
	if err := p.checkValue(p.Default); err != nil {
		return &InvalidParamError{Name: p.Name, Reason: "default: " + err.Error()}
	}
	return nil
}

// checkValue reports whether v has the dynamic type declared by the parameter.
func (p Param) checkValue(v any) error {
	switch p.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: want string, got %T", ErrParamType, v)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: want bool, got %T", ErrParamType, v)
		}
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrParamType, p.Type)
	}
	return nil
}
