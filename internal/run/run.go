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

// Package run orchestrates the scan → parse → resolve → interpret pipeline
// for both CLI entry points (file mode, REPL mode) and the test suite: a
// thin main.go parses flags and hands off to a run.* function that does the
// actual work and returns a process exit code.
package run

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/EngFlow/liquidox/internal/ast"
	"github.com/EngFlow/liquidox/internal/collections"
	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/interp"
	"github.com/EngFlow/liquidox/internal/introspect"
	"github.com/EngFlow/liquidox/internal/parser"
	"github.com/EngFlow/liquidox/internal/resolver"
	"github.com/EngFlow/liquidox/internal/scanner"
)

// Exit codes, per spec.md §6.
const (
	ExitOK          = 0
	ExitStaticError = 65
	ExitRuntimeError = 70
)

// Dump kinds accepted by the -dump flag.
const (
	DumpTokens    = "tokens"
	DumpAST       = "ast"
	DumpDistances = "distances"
	DumpEnv       = "env"
)

// Options configures a run; Stdout/Stderr default to os.Stdout/os.Stderr
// when left nil, and Dump is one of the Dump* constants above or "" for no
// introspection output.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Dump   string
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// Path runs the script(s) named by pattern. pattern is first treated as a
// doublestar glob of ".lox" batches; a single match behaves identically to
// plain file mode, and more than one match shares a single global
// environment across files in path order, with the parse+resolve front end
// of every file running concurrently before any of them execute.
func Path(pattern string, opts Options) int {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		log.Printf("liquidox: %s: %v", pattern, err)
		return ExitRuntimeError
	}
	if len(paths) == 0 {
		paths = []string{pattern}
	}
	// doublestar can yield the same path twice for overlapping brace/glob
	// alternatives; collapse through a Set before imposing a deterministic
	// order across the batch.
	paths = collections.ToSet(paths).SortedValues(strings.Compare)

	if len(paths) == 1 {
		return runOne(paths[0], opts)
	}
	return runBatch(paths, opts)
}

type frontEndResult struct {
	path      string
	stmts     []ast.Stmt
	distances resolver.Distances
}

func runOne(path string, opts Options) int {
	source, err := os.ReadFile(path)
	if err != nil {
		log.Printf("liquidox: %v", err)
		return ExitRuntimeError
	}

	stmts, distances, diagErr := frontEnd(string(source), opts)
	if diagErr != nil {
		diag.Write(opts.stderr(), diagErr)
		return ExitStaticError
	}

	it := interp.New(opts.stdout())
	if rtErr := it.Run(stmts, distances); rtErr != nil {
		diag.Write(opts.stderr(), rtErr)
		return ExitRuntimeError
	}
	if opts.Dump == DumpEnv {
		_ = introspect.Env(opts.stderr(), it.Env())
	}
	return ExitOK
}

// runBatch parses and resolves every path concurrently (pure, no shared
// state), then interprets each file's statements in path order against one
// shared environment, strictly sequentially.
func runBatch(paths []string, opts Options) int {
	results := make([]frontEndResult, len(paths))
	g := new(errgroup.Group)
	for idx, path := range paths {
		idx, path := idx, path
		g.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			stmts, distances, diagErr := frontEnd(string(source), Options{})
			if diagErr != nil {
				return diagErr
			}
			results[idx] = frontEndResult{path: path, stmts: stmts, distances: distances}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var d diag.Diagnostic
		if errors.As(err, &d) {
			diag.Write(opts.stderr(), d)
			return ExitStaticError
		}
		log.Printf("liquidox: %v", err)
		return ExitRuntimeError
	}

	it := interp.New(opts.stdout())
	for _, result := range results {
		if rtErr := it.Run(result.stmts, result.distances); rtErr != nil {
			fmt.Fprintf(opts.stderr(), "%s:\n", result.path)
			diag.Write(opts.stderr(), rtErr)
			return ExitRuntimeError
		}
	}
	return ExitOK
}

// frontEnd scans, parses and resolves source, applying -dump=tokens|ast|
// distances introspection as each stage completes.
func frontEnd(source string, opts Options) ([]ast.Stmt, resolver.Distances, diag.Diagnostic) {
	tokens, scanErr := scanner.Scan(source)
	if scanErr != nil {
		return nil, nil, scanErr
	}
	if opts.Dump == DumpTokens {
		_ = introspect.Tokens(opts.stderr(), tokens)
	}

	stmts, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		return nil, nil, parseErr
	}
	if opts.Dump == DumpAST {
		_ = introspect.AST(opts.stderr(), stmts)
	}

	distances, resolveErr := resolver.New().Resolve(stmts)
	if resolveErr != nil {
		return nil, nil, resolveErr
	}
	if opts.Dump == DumpDistances {
		_ = introspect.Distances(opts.stderr(), distances)
	}

	return stmts, distances, nil
}

// REPL reads one statement or expression per line from in until EOF,
// retaining both the runtime environment and the resolver's scope stack
// across prompts, per spec.md §7/§9.
func REPL(in io.Reader, opts Options) int {
	it := interp.New(opts.stdout())
	res := resolver.New()

	scan := bufio.NewScanner(in)
	for scan.Scan() {
		line := scan.Text()
		if line == "" {
			continue
		}

		tokens, scanErr := scanner.Scan(line)
		if scanErr != nil {
			diag.Write(opts.stderr(), scanErr)
			continue
		}
		stmts, parseErr := parser.Parse(tokens)
		if parseErr != nil {
			diag.Write(opts.stderr(), parseErr)
			continue
		}
		distances, resolveErr := res.Resolve(stmts)
		if resolveErr != nil {
			diag.Write(opts.stderr(), resolveErr)
			continue
		}
		if rtErr := it.Run(stmts, distances); rtErr != nil {
			diag.Write(opts.stderr(), rtErr)
			continue
		}
	}
	return ExitOK
}
