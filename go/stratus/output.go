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
	"sync"
)

// Output helps encode the relationship between resources in a program. Specifically an output
// property holds onto a value and the resource it came from. An output value can then be provided
// when constructing new resources, allowing that new resource to know both the value as well as
// the resource the value came from, building a precise dependency graph.
type Output interface {
	getState() *OutputState
}

// UnknownValue is the sentinel standing in for a value that will only be computed at apply time.
// It appears in place of real values during previews.
type UnknownValue struct{}

// IsUnknown returns true if the given value is the unknown sentinel.
func IsUnknown(v interface{}) bool {
	_, is := v.(UnknownValue)
	return is
}

type outputStatus int

const (
	outputPending outputStatus = iota
	outputResolved
	outputRejected
)

// OutputState holds the internal details of an Output: its eventual value, whether that value is
// known and/or secret, the resources it depends on, and the synchronization used to rendezvous
// with its production.
type OutputState struct {
	mu     sync.Mutex
	done   chan struct{}
	status outputStatus

	value  interface{} // the value of this output, if it is resolved.
	known  bool        // true if this output's value is known.
	secret bool        // true if this output's value is secret.
	err    error       // the error, if this output was rejected.
	deps   []Resource  // the dependencies associated with this output.
}

func newOutputState(deps ...Resource) *OutputState {
	return &OutputState{
		done: make(chan struct{}),
		deps: deps,
	}
}

func (o *OutputState) getState() *OutputState { return o }

// String renders a fixed placeholder: an output's value cannot be stringified without awaiting it,
// and diagnostics must never block or fail on rendering one.
func (o *OutputState) String() string {
	return "Output<T>"
}

// dependencies returns the resources this output directly depends on.
func (o *OutputState) dependencies() []Resource {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Resource(nil), o.deps...)
}

// fulfill moves the output out of its pending state exactly once; later calls are no-ops.
func (o *OutputState) fulfill(value interface{}, known, secret bool, deps []Resource, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != outputPending {
		return
	}
	if err != nil {
		o.status, o.err, o.known = outputRejected, err, true
	} else {
		o.status, o.value, o.known, o.secret = outputResolved, value, known, secret
	}
	o.deps = mergeDependencies(o.deps, deps)
	close(o.done)
}

func (o *OutputState) resolve(value interface{}, known, secret bool, deps []Resource) {
	o.fulfill(value, known, secret, deps, nil)
}

func (o *OutputState) reject(err error) {
	o.fulfill(nil, true, false, nil, err)
}

// await blocks until the output is resolved or rejected, unwrapping any nested outputs along the
// way and accumulating known-ness, secret-ness, and dependencies across the chain.
func (o *OutputState) await(ctx context.Context) (interface{}, bool, bool, []Resource, error) {
	known, secret := true, false
	var deps []Resource

	state := o
	for {
		select {
		case <-ctx.Done():
			return nil, false, secret, deps, ctx.Err()
		case <-state.done:
		}

		deps = mergeDependencies(deps, state.dependencies())
		if state.err != nil {
			return nil, true, secret, deps, state.err
		}
		known = known && state.known
		secret = secret || state.secret
		if !state.known {
			return nil, false, secret, deps, nil
		}
		if inner, isOutput := state.value.(Output); isOutput {
			state = inner.getState()
			continue
		}
		return state.value, known, secret, deps, nil
	}
}

// AnyOutput is an output of dynamically typed values; it is the currency of the marshaling core.
type AnyOutput struct{ *OutputState }

// NewOutput returns an output value that can be used to rendezvous with the production of a value
// or error. The function returns the output itself, plus two functions: one for resolving a value,
// and another for rejecting with an error; exactly one function must be called. This acts like a
// promise.
func NewOutput(deps ...Resource) (AnyOutput, func(interface{}), func(error)) {
	state := newOutputState(deps...)

	resolve := func(v interface{}) {
		state.resolve(v, true, false, nil)
	}
	reject := func(err error) {
		state.reject(err)
	}

	return AnyOutput{state}, resolve, reject
}

// ApplyT transforms the data of the output using the applier func. The result remains an output,
// and accumulates all implicated dependencies. This function does not block awaiting the value;
// instead, it spawns a goroutine that will await its availability.
func (o AnyOutput) ApplyT(applier func(v interface{}) (interface{}, error)) AnyOutput {
	result := newOutputState(o.dependencies()...)
	go func() {
		v, known, secret, deps, err := o.await(context.Background())
		if err != nil || !known {
			result.fulfill(nil, known, secret, deps, err)
			return
		}
		u, err := applier(v)
		if err != nil {
			result.fulfill(nil, true, secret, deps, err)
			return
		}
		if inner, isOutput := u.(Output); isOutput {
			iv, iknown, isecret, ideps, ierr := inner.getState().await(context.Background())
			result.fulfill(iv, known && iknown, secret || isecret, mergeDependencies(deps, ideps), ierr)
			return
		}
		result.fulfill(u, known, secret, deps, nil)
	}()
	return AnyOutput{result}
}

// All returns an output that resolves once every given input has resolved, yielding a slice of
// the resolved values in input order. Plain values pass through unchanged. Known-ness, secret-ness,
// and dependencies accumulate across the inputs; the result is rejected as soon as any input is.
func All(inputs ...interface{}) AnyOutput {
	result := newOutputState()
	go func() {
		values := make([]interface{}, len(inputs))
		known, secret := true, false
		var deps []Resource
		for i, input := range inputs {
			o, isOutput := input.(Output)
			if !isOutput {
				values[i] = input
				continue
			}
			v, vknown, vsecret, vdeps, err := o.getState().await(context.Background())
			if err != nil {
				result.fulfill(nil, true, secret, deps, err)
				return
			}
			known = known && vknown
			secret = secret || vsecret
			deps = mergeDependencies(deps, vdeps)
			values[i] = v
		}
		result.resolve(values, known, secret, deps)
	}()
	return AnyOutput{result}
}

// ToSecret wraps the given value in an output marked as secret that resolves once any output
// contained in the value has resolved.
func ToSecret(v interface{}) AnyOutput {
	result := newOutputState()
	go func() {
		if o, isOutput := v.(Output); isOutput {
			iv, known, _, deps, err := o.getState().await(context.Background())
			result.fulfill(iv, known, true, deps, err)
			return
		}
		result.resolve(v, true, true, nil)
	}()
	return AnyOutput{result}
}

// mergeDependencies unions two dependency slices, preserving order of first appearance.
func mergeDependencies(ours, theirs []Resource) []Resource {
	if len(theirs) == 0 {
		return ours
	}
	seen := make(map[Resource]struct{}, len(ours)+len(theirs))
	merged := make([]Resource, 0, len(ours)+len(theirs))
	for _, lists := range [][]Resource{ours, theirs} {
		for _, d := range lists {
			if _, has := seen[d]; !has {
				seen[d] = struct{}{}
				merged = append(merged, d)
			}
		}
	}
	return merged
}
