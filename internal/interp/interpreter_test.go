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

package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/liquidox/internal/parser"
	"github.com/EngFlow/liquidox/internal/resolver"
	"github.com/EngFlow/liquidox/internal/scanner"
)

// run scans, parses, resolves and interprets source against a fresh
// Interpreter, returning everything print wrote and the first runtime error.
func run(t *testing.T, source string) (string, error) {
	t.Helper()
	tokens, scanErr := scanner.Scan(source)
	require.Nil(t, scanErr)
	stmts, parseErr := parser.Parse(tokens)
	require.Nil(t, parseErr)
	distances, resolveErr := resolver.New().Resolve(stmts)
	require.Nil(t, resolveErr)

	var out bytes.Buffer
	it := New(&out)
	if rtErr := it.Run(stmts, distances); rtErr != nil {
		return out.String(), rtErr
	}
	return out.String(), nil
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestLexicalScoping(t *testing.T) {
	out, err := run(t, `
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "local";
  show();
}`)
	require.Nil(t, err)
	assert.Equal(t, []string{"global", "global"}, lines(out))
}

func TestClosureCapture(t *testing.T) {
	out, err := run(t, `
fun makeCounter() {
  var i = 0;
  fun c() { i = i + 1; print i; }
  return c;
}
var c = makeCounter();
c();
c();`)
	require.Nil(t, err)
	assert.Equal(t, []string{"1", "2"}, lines(out))
}

func TestShortCircuit(t *testing.T) {
	out, err := run(t, `
fun sideEffect() { print "called"; return true; }
true or sideEffect();
false and sideEffect();`)
	require.Nil(t, err)
	assert.Empty(t, out)
}

func TestInitializerSemantics(t *testing.T) {
	out, err := run(t, `
class A { init() { this.x = 1; } }
print A().x;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"1"}, lines(out))
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class A { greet() { print "a"; } }
class B < A { greet() { super.greet(); print "b"; } }
B().greet();`)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, lines(out))
}

func TestArityMismatch(t *testing.T) {
	_, err := run(t, `
fun f(a, b) { return a + b; }
f(1, 2, 3);`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Arity = 2")
}

func TestTruthinessBoundaries(t *testing.T) {
	out, err := run(t, `if (0) print 1; else print 2;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"1"}, lines(out))

	out, err = run(t, `if ("") print 1; else print 2;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"1"}, lines(out))

	out, err = run(t, `if (nil) print 1; else print 2;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"2"}, lines(out))
}

func TestForDesugaring(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, lines(out))
}

func TestUndefinedVariable(t *testing.T) {
	_, err := run(t, `print undeclared;`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestInvalidOperands(t *testing.T) {
	_, err := run(t, `print 1 + "a";`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Invalid operands")
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.Nil(t, err)
	assert.Equal(t, []string{"foobar"}, lines(out))
}

func TestNumberDisplay(t *testing.T) {
	out, err := run(t, `print 1; print 1.5;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"1", "1.5"}, lines(out))
}

func TestUndefinedProperty(t *testing.T) {
	_, err := run(t, `
class A {}
print A().missing;`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Undefined property")
}

func TestOnlyInstancesHaveFields(t *testing.T) {
	_, err := run(t, `
fun f() {}
f().x;`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Only instances have fields")
}

func TestCallingNonFunction(t *testing.T) {
	_, err := run(t, `var x = 1; x();`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Calling non-function/non-class")
}

func TestClockIsCallableWithNoArgs(t *testing.T) {
	out, err := run(t, `print clock() > 0;`)
	require.Nil(t, err)
	assert.Equal(t, []string{"true"}, lines(out))
}

func TestReplPersistsEnvironmentAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	it := New(&out)
	res := resolver.New()

	for _, line := range []string{`var a = 1;`, `print a;`, `a = a + 1;`, `print a;`} {
		tokens, scanErr := scanner.Scan(line)
		require.Nil(t, scanErr)
		stmts, parseErr := parser.Parse(tokens)
		require.Nil(t, parseErr)
		distances, resolveErr := res.Resolve(stmts)
		require.Nil(t, resolveErr)
		require.Nil(t, it.Run(stmts, distances))
	}
	assert.Equal(t, []string{"1", "2"}, lines(out.String()))
}
