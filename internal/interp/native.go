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
	"time"

	"github.com/EngFlow/liquidox/internal/diag"
)

// newClock returns the clock() native: zero arity, returns the current
// wall-clock time in seconds since the Unix epoch as a NumberValue.
func newClock() *NativeFunctionValue {
	return &NativeFunctionValue{
		Name: "clock",
		Ar:   0,
		Fn: func(args []Value) (Value, *diag.RuntimeError) {
			return NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
		},
	}
}
