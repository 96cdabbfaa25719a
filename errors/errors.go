// Package errors provides error handling for devize.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := resolve(s); err != nil {
//	    return errors.Wrapf(err, "resolving %q", name)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "define the type before using it")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnknownType) {
//	    // handle unknown type
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var AssertionFailedf = crdb.AssertionFailedf

// Resolution failures. All of them are fatal to the resolution call that
// produced them; wrap them with errors.Wrapf to add the type or property
// name, and test for them with errors.Is.
var (
	// ErrUnknownType indicates a spec referenced a type absent from the registry
	ErrUnknownType = New("unknown type")

	// ErrMissingProperty indicates a required property was absent from a spec
	ErrMissingProperty = New("missing required property")

	// ErrMalformedDefinition indicates a define spec lacked name, properties or implementation
	ErrMalformedDefinition = New("malformed type definition")

	// ErrRecursionLimit indicates decomposition exceeded the configured maximum depth
	ErrRecursionLimit = New("decomposition depth limit exceeded")

	// ErrImplementation indicates a function implementation returned an error or an unusable value
	ErrImplementation = New("implementation failed")

	// ErrIncompatibleLibrary indicates a type library requires a different engine version
	ErrIncompatibleLibrary = New("incompatible type library")
)

// IsUnknownType checks if an error is or wraps ErrUnknownType
func IsUnknownType(err error) bool {
	return err != nil && Is(err, ErrUnknownType)
}

// IsMissingProperty checks if an error is or wraps ErrMissingProperty
func IsMissingProperty(err error) bool {
	return err != nil && Is(err, ErrMissingProperty)
}

// IsMalformedDefinition checks if an error is or wraps ErrMalformedDefinition
func IsMalformedDefinition(err error) bool {
	return err != nil && Is(err, ErrMalformedDefinition)
}

// IsRecursionLimit checks if an error is or wraps ErrRecursionLimit
func IsRecursionLimit(err error) bool {
	return err != nil && Is(err, ErrRecursionLimit)
}

// NewUnknownTypeError creates an unknown-type error naming the type
func NewUnknownTypeError(typeName string) error {
	return WithHintf(Wrapf(ErrUnknownType, "%q", typeName),
		"register %q with a define spec or load a library that provides it", typeName)
}

// NewMissingPropertyError creates a missing-property error naming both the property and the type
func NewMissingPropertyError(typeName, property string) error {
	return Wrapf(ErrMissingProperty, "type %q requires property %q", typeName, property)
}

// NewMalformedDefinitionError creates a malformed-definition error with a formatted message
func NewMalformedDefinitionError(format string, args ...interface{}) error {
	return Wrap(ErrMalformedDefinition, Newf(format, args...).Error())
}
