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

// Command liquidox is a tree-walking interpreter for a small Lox-family
// scripting language: file mode runs one script (or a doublestar glob of
// scripts sharing one environment), no arguments starts a REPL.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/EngFlow/liquidox/internal/run"
)

func main() {
	dump := flag.String("dump", "", "dump pipeline intermediates to stderr: tokens, ast, distances, or env")
	flag.Parse()

	log.SetFlags(0)

	switch *dump {
	case "", run.DumpTokens, run.DumpAST, run.DumpDistances, run.DumpEnv:
	default:
		log.Fatalf("liquidox: -dump must be one of tokens, ast, distances, env, got %q", *dump)
	}

	opts := run.Options{Stdout: os.Stdout, Stderr: os.Stderr, Dump: *dump}

	if flag.NArg() == 0 {
		os.Exit(run.REPL(os.Stdin, opts))
	}
	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("liquidox: expected at most one script path or glob, got %d arguments", flag.NArg())
	}
	os.Exit(run.Path(flag.Arg(0), opts))
}
