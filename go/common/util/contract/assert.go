// Copyright 2019-2025, Stratus Technologies, Inc.
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

package contract

import (
	"fmt"
)

// Assert ensures an internal invariant holds, abandoning the process when it does not.
func Assert(cond bool) {
	if !cond {
		failfast("an invariant was violated")
	}
}

// Assertf is like Assert, with a formatted description of the invariant.
func Assertf(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	failfast(fmt.Sprintf("invariant violated: %s", fmt.Sprintf(msg, args...)))
}

// Require validates an argument passed by a caller inside the SDK, abandoning the process when it
// is invalid.
func Require(cond bool, param string) {
	if !cond {
		failfast(fmt.Sprintf("invalid argument %q", param))
	}
}

// Requiref is like Require, with a formatted description of what the argument violated.
func Requiref(cond bool, param string, msg string, args ...interface{}) {
	if cond {
		return
	}
	failfast(fmt.Sprintf("invalid argument %q: %s", param, fmt.Sprintf(msg, args...)))
}
