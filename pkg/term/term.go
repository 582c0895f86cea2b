// Package term implements termination and error reporting (C9): the
// process-wide diagnostic stream that every other component raises through,
// a stack of pending source positions, and the throws/exits mode switch.
package term

import (
	"fmt"
	"io"
	"os"

	"eidos.dev/eidos/pkg/diag"
)

// Kind enumerates the error kinds of spec §7. Every diagnostic the core
// produces carries exactly one of these.
type Kind uint8

const (
	LexError Kind = iota
	ParseError
	IdentifierUndefined
	RedefinitionOfConstant
	TypeError
	LengthMismatch
	IndexOutOfRange
	InvalidAssignmentTarget
	InternalInvariant
)

var kindNames = [...]string{
	"LexError", "ParseError", "IdentifierUndefined", "RedefinitionOfConstant",
	"TypeError", "LengthMismatch", "IndexOutOfRange", "InvalidAssignmentTarget",
	"InternalInvariant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Diagnostic is a single error surfaced through a Stream. It implements
// error and diag.Shower, so Stream.Raise's Exits mode can hand it straight
// to diag.ShowError instead of formatting it itself.
type Diagnostic struct {
	Kind    Kind
	Message string
	Context diag.Context
}

// Error returns the one-line plain-text form: "ERROR (<kind>): <message>",
// matching spec §7's required message prefix.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("ERROR (%s): %s", d.Kind, d.Message)
}

// Show renders the diagnostic with a source excerpt and caret, for exits
// mode and for any host that wants the richer form.
func (d *Diagnostic) Show(indent string) string {
	return d.Error() + "\n" + indent + d.Context.ShowCompact(indent)
}

// Range returns the diagnostic's source position, so Diagnostic satisfies
// diag.Ranger.
func (d *Diagnostic) Range() diag.Ranging { return d.Context.Range() }

// Mode controls what Raise does once a diagnostic is constructed.
type Mode uint8

const (
	// Throws makes Raise return the Diagnostic as a normal Go error, to
	// propagate up through ordinary return values. This is the mode an
	// embedding host uses so it can recover and start a new script.
	Throws Mode = iota
	// Exits makes Raise print the diagnostic (with a source excerpt and
	// caret) to stderr and terminate the process with a nonzero status.
	Exits
)

// Stream is the process-wide error-collection channel described in spec §9:
// a mode switch plus a stack of pending source positions that error sites
// push before emitting and pop once consumed.
type Stream struct {
	Mode   Mode
	Out    io.Writer // destination for Exits-mode output; defaults to os.Stderr if nil
	name   string
	source string
	stack  []diag.Ranging
}

// NewStream creates a Stream over a named source, in the given mode.
func NewStream(name, source string, mode Mode) *Stream {
	return &Stream{Mode: mode, name: name, source: source}
}

// PushPosition pushes a source range that subsequent Raise calls will
// annotate their diagnostic with, until popped.
func (s *Stream) PushPosition(r diag.Ranger) {
	s.stack = append(s.stack, r.Range())
}

// PopPosition pops the most recently pushed position.
func (s *Stream) PopPosition() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *Stream) topPosition() diag.Ranging {
	if len(s.stack) == 0 {
		return diag.Unknown
	}
	return s.stack[len(s.stack)-1]
}

// Raise builds a Diagnostic of the given kind and message, annotated with
// the top of the position stack, and dispatches on Mode: in Throws mode it
// returns the Diagnostic as a plain error for the caller to propagate; in
// Exits mode it prints the diagnostic and terminates the process, never
// returning control to the caller in practice (the return statement exists
// only to satisfy the signature).
func (s *Stream) Raise(kind Kind, message string) error {
	d := &Diagnostic{
		Kind:    kind,
		Message: message,
		Context: *diag.NewContext(s.name, s.source, s.topPosition()),
	}
	if s.Mode == Exits {
		out := s.Out
		if out == nil {
			out = os.Stderr
		}
		diag.ShowError(out, d)
		os.Exit(1)
	}
	return d
}

// Raisef is Raise with fmt.Sprintf-style formatting of the message.
func (s *Stream) Raisef(kind Kind, format string, args ...any) error {
	return s.Raise(kind, fmt.Sprintf(format, args...))
}
