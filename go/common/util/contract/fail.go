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

// Package contract enforces internal invariants. A violated contract is a bug in the SDK, not a
// user error, so every helper here abandons the process rather than returning.
package contract

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// failfast surfaces the violation through the ambient logging layer before abandoning the
// process, so embedders that capture SDK logs see the message even when glog's fatal output has
// been redirected elsewhere.
func failfast(msg string) {
	logging.Errorf("fatal: %s", msg)
	glog.FatalDepth(2, msg)
}

// Fail abandons the process: the code has reached a state its author believed unreachable.
func Fail() {
	failfast("the impossible happened")
}

// Failf is like Fail, with a formatted explanation of what was violated.
func Failf(msg string, args ...interface{}) {
	failfast(fmt.Sprintf("the impossible happened: %s", fmt.Sprintf(msg, args...)))
}
