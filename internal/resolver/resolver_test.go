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

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/parser"
	"github.com/EngFlow/liquidox/internal/scanner"
	"github.com/EngFlow/liquidox/internal/token"
)

func resolve(t *testing.T, source string) (Distances, *diag.ResolveError) {
	t.Helper()
	tokens, scanErr := scanner.Scan(source)
	require.Nil(t, scanErr)
	stmts, parseErr := parser.Parse(tokens)
	require.Nil(t, parseErr)
	return New().Resolve(stmts)
}

func TestResolveGlobalsUntracked(t *testing.T) {
	d, err := resolve(t, `var a = "global"; { fun show() { print a; } show(); var a = "local"; show(); }`)
	require.Nil(t, err)
	assert.NotEmpty(t, d)
	for key := range d {
		assert.NotEqual(t, "a", key.Name, "the global use of a must be absent from Distances")
	}
}

func TestResolveVariableAlreadyDeclared(t *testing.T) {
	_, err := resolve(t, `{ var a = 1; var a = 2; }`)
	require.NotNil(t, err)
	assert.Equal(t, "Variable already declared", err.Message())
}

func TestResolveReadOwnInitializer(t *testing.T) {
	_, err := resolve(t, `{ var a = a; }`)
	require.NotNil(t, err)
	assert.Equal(t, "Can't read local variable in its own initializer", err.Message())
}

func TestResolveTopLevelReturn(t *testing.T) {
	_, err := resolve(t, `return 1;`)
	require.NotNil(t, err)
	assert.Equal(t, "Top level return", err.Message())
}

func TestResolveReturnValueFromInit(t *testing.T) {
	_, err := resolve(t, `class A { init() { return 2; } }`)
	require.NotNil(t, err)
	assert.Equal(t, "Can't return value from init", err.Message())
}

func TestResolveBareReturnFromInitIsLegal(t *testing.T) {
	_, err := resolve(t, `class A { init() { return; } }`)
	assert.Nil(t, err)
}

func TestResolveThisOutOfClass(t *testing.T) {
	_, err := resolve(t, `print this;`)
	require.NotNil(t, err)
	assert.Equal(t, "Used this out of class", err.Message())
}

func TestResolveSuperOutOfClass(t *testing.T) {
	_, err := resolve(t, `print super.x;`)
	require.NotNil(t, err)
	assert.Equal(t, "Used super out of class", err.Message())
}

func TestResolveSuperWithoutSuperclass(t *testing.T) {
	_, err := resolve(t, `class A { m() { super.m(); } }`)
	require.NotNil(t, err)
	assert.Equal(t, "Used super in class without superclass", err.Message())
}

func TestResolveSelfInheritance(t *testing.T) {
	_, err := resolve(t, `class A < A {}`)
	require.NotNil(t, err)
	assert.Equal(t, "Can't inherit from self", err.Message())
}

func TestResolveDistanceForEnclosingLocal(t *testing.T) {
	d, err := resolve(t, `{ var a = 1; { print a; } }`)
	require.Nil(t, err)
	assert.NotEmpty(t, d)
	assert.Equal(t, 1, d[UseKey{Name: "a", Pos: token.Cursor{Line: 1, Column: 22}}])
}
