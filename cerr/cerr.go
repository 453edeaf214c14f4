// Copyright 2025 The hdl-org Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cerr classifies compiler errors and attaches hierarchical context.
//
// Design trees are typically many levels deep, so every failure carries the
// path of generators, modules, and instances that led to it. Errors are
// classified by Kind; no kind is ever downgraded to a warning, the pipeline
// fails closed.
package cerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a compiler error.
type Kind int

const (
	// Configuration marks a bad top-level argument, a bad parameter
	// declaration, or a duplicate/incompatible registration.
	Configuration Kind = iota
	// TypeMismatch marks a wrong parameter type on a generator or
	// external-module call, or a generator returning a non-Module.
	TypeMismatch
	// Resolution marks a failed or ambiguous lookup: a signal, a port, or a
	// technology device model.
	Resolution
	// Consistency marks an internal invariant violation. It indicates a bug
	// in the compiler, not bad user input, and is never retried.
	Consistency
	// UserGenerator marks an error raised inside a user generator function,
	// re-wrapped with the elaboration call stack.
	UserGenerator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case TypeMismatch:
		return "type mismatch"
	case Resolution:
		return "resolution error"
	case Consistency:
		return "consistency error"
	case UserGenerator:
		return "generator error"
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Error is a classified compiler error.
type Error struct {
	kind Kind
	err  error
}

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Error returns the error message.
func (e *Error) Error() string { return e.err.Error() }

// Unwrap the underlying error.
func (e *Error) Unwrap() error { return e.err }

// Format writes the error into the state of the formatter.
func (e *Error) Format(s fmt.State, verb rune) {
	if f, ok := e.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprintf(s, "%v", e.err)
}

func newf(k Kind, format string, a ...any) error {
	return &Error{kind: k, err: errors.Errorf(format, a...)}
}

// Configf returns a new Configuration error.
func Configf(format string, a ...any) error {
	return newf(Configuration, format, a...)
}

// TypeMismatchf returns a new TypeMismatch error.
func TypeMismatchf(format string, a ...any) error {
	return newf(TypeMismatch, format, a...)
}

// Resolutionf returns a new Resolution error. The message must carry the
// lookup key that was attempted.
func Resolutionf(format string, a ...any) error {
	return newf(Resolution, format, a...)
}

// Consistencyf returns a new Consistency error, marked as an internal bug.
func Consistencyf(format string, a ...any) error {
	err := errors.Errorf(format, a...)
	return &Error{
		kind: Consistency,
		err:  errors.WithMessage(err, "internal error, this is a compiler bug, please report it"),
	}
}

// User wraps an error raised by a user generator function.
func User(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind: UserGenerator,
		err:  errors.WithMessagef(err, format, a...),
	}
}

// Wrap classifies an existing error, preserving its message and cause chain.
// A nil error stays nil; an already-classified error keeps its kind.
func Wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{kind: k, err: err}
}

// KindOf reports the classification of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// InPath prefixes an error with one frame of hierarchical context,
// e.g. "at instance inv_1". The classification is preserved.
func InPath(err error, frame string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, "at "+frame)
}
