// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package diag implements the four disjoint diagnostic kinds produced by the
// pipeline (scan, parse, resolve, runtime) and their shared terminal
// presentation: a bold red header, only when stderr is actually a terminal.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/EngFlow/liquidox/internal/token"
)

// Diagnostic is satisfied by every one of the four error kinds below. The CLI
// dispatches on it with errors.As instead of importing the scanner, parser,
// resolver or interpreter packages directly.
type Diagnostic interface {
	error
	Kind() string
	Message() string
	Lexeme() string
	Position() token.Cursor
}

// fields is embedded by each concrete diagnostic type.
type fields struct {
	message  string
	lexeme   string
	position token.Cursor
}

func (f fields) Message() string        { return f.message }
func (f fields) Lexeme() string         { return f.lexeme }
func (f fields) Position() token.Cursor { return f.position }

// ScanError is produced by the scanner: "Unterminated string", "Unidentified token".
type ScanError struct{ fields }

// ParseError is produced by the parser: "Expected ';'", "Invalid target", etc.
type ParseError struct{ fields }

// ResolveError is produced by the resolver's static pre-pass.
type ResolveError struct{ fields }

// RuntimeError is produced during interpretation.
type RuntimeError struct{ fields }

func (e *ScanError) Kind() string    { return "Scan" }
func (e *ParseError) Kind() string   { return "Parse" }
func (e *ResolveError) Kind() string { return "Resolve" }
func (e *RuntimeError) Kind() string { return "Runtime" }

func (e *ScanError) Error() string    { return formatMessage(e) }
func (e *ParseError) Error() string   { return formatMessage(e) }
func (e *ResolveError) Error() string { return formatMessage(e) }
func (e *RuntimeError) Error() string { return formatMessage(e) }

func formatMessage(d Diagnostic) string {
	return fmt.Sprintf("%s Error - %s", d.Kind(), d.Message())
}

func NewScanError(message, lexeme string, pos token.Cursor) *ScanError {
	return &ScanError{fields{message, lexeme, pos}}
}

func NewParseError(message, lexeme string, pos token.Cursor) *ParseError {
	return &ParseError{fields{message, lexeme, pos}}
}

func NewResolveError(message, lexeme string, pos token.Cursor) *ResolveError {
	return &ResolveError{fields{message, lexeme, pos}}
}

func NewRuntimeError(message, lexeme string, pos token.Cursor) *RuntimeError {
	return &RuntimeError{fields{message, lexeme, pos}}
}

// headerColor renders the "<kind> Error - <message>" line in bold red.
var headerColor = color.New(color.FgRed, color.Bold)

// Write prints d in the three-line layout spec'd for the CLI:
//
//	<kind> Error - <message>
//	Lexeme - <offending lexeme or token name>
//	Position - (<line>, <col>)
//
// The header is wrapped in ANSI red when w is a terminal.
func Write(w io.Writer, d Diagnostic) {
	header := fmt.Sprintf("%s Error - %s", d.Kind(), d.Message())
	if f, ok := w.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(f.Fd()) {
		header = headerColor.Sprint(header)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "Lexeme - %s\n", d.Lexeme())
	fmt.Fprintf(w, "Position - (%d, %d)\n", d.Position().Line, d.Position().Column)
}
