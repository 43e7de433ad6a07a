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

package introspect

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/liquidox/internal/interp"
	"github.com/EngFlow/liquidox/internal/parser"
	"github.com/EngFlow/liquidox/internal/resolver"
	"github.com/EngFlow/liquidox/internal/scanner"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	return decoded
}

func TestTokensWritesJSONArray(t *testing.T) {
	tokens, scanErr := scanner.Scan(`var x = 1;`)
	require.Nil(t, scanErr)

	var buf bytes.Buffer
	require.NoError(t, Tokens(&buf, tokens))

	decoded := decode(t, &buf)
	items, ok := decoded["tokens"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, items)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "var", first["type"])
}

func TestASTDescribesBinaryExpression(t *testing.T) {
	tokens, scanErr := scanner.Scan(`1 + 2;`)
	require.Nil(t, scanErr)
	stmts, parseErr := parser.Parse(tokens)
	require.Nil(t, parseErr)

	var buf bytes.Buffer
	require.NoError(t, AST(&buf, stmts))

	decoded := decode(t, &buf)
	items := decoded["ast"].([]interface{})
	require.Len(t, items, 1)
	x := items[0].(map[string]interface{})["x"].(map[string]interface{})
	assert.Equal(t, "Binary", x["kind"])
	assert.Equal(t, "+", x["op"])
}

func TestDistancesWritesEntries(t *testing.T) {
	tokens, scanErr := scanner.Scan(`{ var a = 1; print a; }`)
	require.Nil(t, scanErr)
	stmts, parseErr := parser.Parse(tokens)
	require.Nil(t, parseErr)
	distances, resolveErr := resolver.New().Resolve(stmts)
	require.Nil(t, resolveErr)

	var buf bytes.Buffer
	require.NoError(t, Distances(&buf, distances))

	decoded := decode(t, &buf)
	items := decoded["distances"].([]interface{})
	assert.NotEmpty(t, items)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, "a", entry["name"])
}

func TestEnvWritesSnapshotOfCurrentScope(t *testing.T) {
	scope := interp.NewScope(nil)
	scope.Define("x", interp.NumberValue(3))

	var buf bytes.Buffer
	require.NoError(t, Env(&buf, scope))

	decoded := decode(t, &buf)
	env := decoded["env"].(map[string]interface{})
	assert.Equal(t, "3", env["x"])
}
