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

package stratus

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// ErrPropertyConflict is reported when property transfer would install an output over a property
// the resource already owns.
var ErrPropertyConflict = errors.New("conflicting property name")

// IsGrpcError classifies an error as originating in the gRPC transport. Such errors are reported
// by the surrounding RPC and must not additionally surface through individual property outputs.
func IsGrpcError(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	return ok && s.Code() != codes.OK
}

// muffleGrpcRejection attaches an observer to the given output that consumes its rejection if the
// error is a recognized gRPC transport error; anything else is logged and left for downstream
// awaiters. The output is returned unchanged, so consumers still observe the rejection.
func muffleGrpcRejection(o Output) Output {
	go func() {
		_, _, _, _, err := o.getState().await(context.Background())
		if err == nil || IsGrpcError(err) {
			return
		}
		logging.V(3).Infof("output rejected without a gRPC cause: %v", err)
	}()
	return o
}
