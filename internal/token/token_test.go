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

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorAdvancedBy(t *testing.T) {
	testCases := []struct {
		name     string
		start    Cursor
		lexeme   string
		expected Cursor
	}{
		{
			name:     "single line advance",
			start:    CursorInit,
			lexeme:   "foo",
			expected: Cursor{Line: 1, Column: 4},
		},
		{
			name:     "single newline resets column",
			start:    CursorInit,
			lexeme:   "\n",
			expected: Cursor{Line: 2, Column: 1},
		},
		{
			name:     "multiline string tracks trailing column",
			start:    CursorInit,
			lexeme:   "abc\ndef\ngh",
			expected: Cursor{Line: 3, Column: 3},
		},
		{
			name:     "multibyte runes count once",
			start:    CursorInit,
			lexeme:   "héllo",
			expected: Cursor{Line: 1, Column: 6},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.start.AdvancedBy(tc.lexeme))
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "+", Plus.String())
	assert.Equal(t, "==", EqualEqual.String())
	assert.Equal(t, "Type(999)", Type(999).String())
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, Class, Keywords["class"])
	assert.Equal(t, While, Keywords["while"])
	_, ok := Keywords["notakeyword"]
	assert.False(t, ok)
}
