// Package novaerr implements the error kinds and stack-trace rendering
// described in spec §7 and §6.3. It mirrors the teacher's VMError
// approach (a wrapped sentinel error plus contextual fields) rather than
// Go's plain error strings, so call sites can match on Kind with
// errors.Is/As the way the teacher's vm package matches on its sentinel
// Err* values.
package novaerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds of spec §7.
type Kind byte

const (
	KindTypeOp Kind = iota
	KindArithZero
	KindUndefinedProperty
	KindMissingArgument
	KindTooManyArguments
	KindUnknownNamedArgument
	KindNoMatchingConstructor
	KindInstantiateForbidden
	KindUnimplementedAbstract
	KindSealedExtension
	KindRecursionLimit
	KindResourceLimit
	KindTimeout
	KindInterrupted
	KindForeignAccess
	KindUserThrown
)

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	KindTypeOp:                "TypeOp",
	KindArithZero:             "ArithZero",
	KindUndefinedProperty:     "UndefinedProperty",
	KindMissingArgument:       "MissingArgument",
	KindTooManyArguments:      "TooManyArguments",
	KindUnknownNamedArgument:  "UnknownNamedArgument",
	KindNoMatchingConstructor: "NoMatchingConstructor",
	KindInstantiateForbidden:  "InstantiateForbidden",
	KindUnimplementedAbstract: "UnimplementedAbstract",
	KindSealedExtension:       "SealedExtension",
	KindRecursionLimit:        "RecursionLimit",
	KindResourceLimit:         "ResourceLimit",
	KindTimeout:               "Timeout",
	KindInterrupted:           "Interrupted",
	KindForeignAccess:         "ForeignAccess",
	KindUserThrown:            "UserThrown",
}

// sentinel errors, one per Kind, so callers can use errors.Is the way the
// teacher's vm package does against its Err* sentinels.
var sentinels = map[Kind]error{
	KindTypeOp:                errors.New("operator unsupported for operand types"),
	KindArithZero:             errors.New("division or modulo by zero"),
	KindUndefinedProperty:     errors.New("field or method lookup failed"),
	KindMissingArgument:       errors.New("missing required argument"),
	KindTooManyArguments:      errors.New("too many positional arguments"),
	KindUnknownNamedArgument:  errors.New("unknown named argument"),
	KindNoMatchingConstructor: errors.New("no matching constructor"),
	KindInstantiateForbidden:  errors.New("cannot instantiate abstract or annotation class"),
	KindUnimplementedAbstract: errors.New("concrete class omits an abstract method"),
	KindSealedExtension:       errors.New("sealed class extended outside its defining module"),
	KindRecursionLimit:        errors.New("recursion depth limit exceeded"),
	KindResourceLimit:         errors.New("resource limit exceeded"),
	KindTimeout:               errors.New("deadline exceeded"),
	KindInterrupted:           errors.New("task interrupted"),
	KindForeignAccess:         errors.New("host reflective access denied or failed"),
	KindUserThrown:            errors.New("user thrown value"),
}

// SourceLocation pinpoints the origin of a RuntimeError (spec §6.3).
type SourceLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

// Frame summarises one call-stack entry. ParamSummary is computed lazily
// by the caller only when an error is actually formatted (spec §4.7).
type Frame struct {
	DisplayName  string
	ParamSummary string
	Location     SourceLocation
}

// RuntimeError is the error surface of spec §6.3/§7: kind, message,
// optional source location and source line text, and a folded stack
// trace.
type RuntimeError struct {
	Kind       Kind
	Message    string
	Location   *SourceLocation
	SourceLine string
	Stack      []Frame

	// Thrown carries the language-level thrown value for KindUserThrown;
	// nil for every other kind.
	Thrown interface{}
}

func (e *RuntimeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

// Unwrap exposes the kind's sentinel so errors.Is(err,
// novaerr.Sentinel(novaerr.KindTypeOp)) style matching works without importing the Kind enum at every call
// site.
func (e *RuntimeError) Unwrap() error { return sentinels[e.Kind] }

// New builds a RuntimeError with a formatted message.
func New(kind Kind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithLocation attaches source position and line text, returning the
// same error for chaining.
func (e *RuntimeError) WithLocation(loc SourceLocation, line string) *RuntimeError {
	e.Location = &loc
	e.SourceLine = line
	return e
}

// WithStack attaches a folded call stack: at most maxFrames entries are
// kept verbatim; beyond that a single synthetic frame records the number
// omitted (spec §4.7 "N frames omitted").
func (e *RuntimeError) WithStack(frames []Frame, maxFrames int) *RuntimeError {
	if len(frames) <= maxFrames {
		e.Stack = frames
		return e
	}
	kept := make([]Frame, 0, maxFrames+1)
	kept = append(kept, frames[:maxFrames-1]...)
	omitted := len(frames) - (maxFrames - 1) - 1
	kept = append(kept, Frame{DisplayName: fmt.Sprintf("... %d frames omitted ...", omitted)})
	kept = append(kept, frames[len(frames)-1])
	e.Stack = kept
	return e
}

// Is reports whether target is the sentinel for this error's Kind, so
// errors.Is(err, novaerr.Sentinel(novaerr.KindTypeOp)) works.
func (e *RuntimeError) Is(target error) bool {
	return errors.Is(sentinels[e.Kind], target)
}

// Sentinel returns the package-level sentinel error for kind.
func Sentinel(kind Kind) error { return sentinels[kind] }

// KindOf extracts the Kind from err if it is (or wraps) a *RuntimeError.
func KindOf(err error) (Kind, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}
