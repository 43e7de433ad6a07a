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

package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EngFlow/liquidox/internal/token"
)

func TestWriteThreeLineLayout(t *testing.T) {
	err := NewParseError("Expected ';'", ";", token.Cursor{Line: 3, Column: 7})
	var buf bytes.Buffer
	Write(&buf, err)
	assert.Equal(t, "Parse Error - Expected ';'\nLexeme - ;\nPosition - (3, 7)\n", buf.String())
}

func TestErrorMessage(t *testing.T) {
	err := NewRuntimeError("Undefined variable", "x", token.CursorInit)
	assert.Equal(t, "Runtime Error - Undefined variable", err.Error())
}

func TestDiagnosticKindsAreDisjoint(t *testing.T) {
	var scanErr error = NewScanError("Unidentified token", "@", token.CursorInit)
	var target *ParseError
	assert.False(t, errors.As(scanErr, &target))

	var d Diagnostic = NewResolveError("Top level return", "return", token.CursorInit)
	assert.Equal(t, "Resolve", d.Kind())
}
