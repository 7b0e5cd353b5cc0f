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

// Package logging is a thin wrapper around glog so that the rest of the SDK does not
// take a direct dependency on a particular logging backend.
package logging

import (
	"github.com/golang/glog"
)

// Verbose gates log statements on the glog verbosity level.
type Verbose glog.Verbose

// V reports whether logging at the given verbosity level is enabled.
func V(level glog.Level) Verbose {
	return Verbose(glog.V(level))
}

// Infof logs at the wrapped verbosity level.
func (v Verbose) Infof(format string, args ...interface{}) {
	if v {
		glog.InfoDepthf(1, format, args...)
	}
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	glog.InfoDepthf(1, format, args...)
}

// Warningf logs a warning.
func Warningf(format string, args ...interface{}) {
	glog.WarningDepthf(1, format, args...)
}

// Errorf logs an error that is surfaced to the user.
func Errorf(format string, args ...interface{}) {
	glog.ErrorDepthf(1, format, args...)
}
