package asm

import (
	"fmt"
	"strings"
)

// Position identifies a location in an assembly source file.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// ErrorKind identifies which pass raised a diagnostic.
type ErrorKind int

const (
	ErrorLex ErrorKind = iota
	ErrorParse
	ErrorSemantic
	ErrorResolve
)

var kindNames = map[ErrorKind]string{
	ErrorLex:      "lex",
	ErrorParse:    "parse",
	ErrorSemantic: "semantic",
	ErrorResolve:  "resolve",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Diagnostic is a single accumulated error from one of the assembler's
// passes, formatted per spec as "<file>:<line>:<col>: <message>".
type Diagnostic struct {
	Pos     Position
	Kind    ErrorKind
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

func newDiagnostic(pos Position, kind ErrorKind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Diagnostics accumulates every error raised across all passes so the
// assembler can report as many problems as possible in one run instead of
// failing on the first one.
type Diagnostics struct {
	items []*Diagnostic
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(pos Position, kind ErrorKind, format string, args ...any) {
	d.items = append(d.items, newDiagnostic(pos, kind, format, args...))
}

// HasErrors reports whether any diagnostic has been recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.items) > 0
}

// Items returns the accumulated diagnostics in the order they were added.
func (d *Diagnostics) Items() []*Diagnostic {
	return d.items
}

// Error implements the error interface, rendering one diagnostic per line.
func (d *Diagnostics) Error() string {
	var sb strings.Builder
	for i, it := range d.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(it.Error())
	}
	return sb.String()
}
