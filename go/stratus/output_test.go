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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputResolve(t *testing.T) {
	out, resolve, _ := NewOutput()
	resolve("value")

	v, known, secret, deps, err := out.getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.True(t, known)
	assert.False(t, secret)
	assert.Empty(t, deps)
}

func TestOutputReject(t *testing.T) {
	out, _, reject := NewOutput()
	boom := errors.New("boom")
	reject(boom)

	_, _, _, _, err := out.getState().await(context.Background())
	assert.Equal(t, boom, err)
}

func TestOutputFulfillIsOnce(t *testing.T) {
	out, resolve, reject := NewOutput()
	resolve("first")
	reject(errors.New("late"))
	resolve("also late")

	v, _, _, _, err := out.getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestOutputNestedUnwrap(t *testing.T) {
	dep := newSimpleCustomResource(testCustomURN, "id-1")

	inner, resolveInner, _ := NewOutput(dep)
	resolveInner(5)

	outer, resolveOuter, _ := NewOutput()
	resolveOuter(inner)

	v, known, _, deps, err := outer.getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, known)
	assert.Contains(t, deps, Resource(dep))
}

func TestOutputNestedUnknownAndSecret(t *testing.T) {
	inner := AnyOutput{newOutputState()}
	inner.getState().resolve(nil, false, true, nil)

	outer, resolveOuter, _ := NewOutput()
	resolveOuter(inner)

	_, known, secret, _, err := outer.getState().await(context.Background())
	require.NoError(t, err)
	assert.False(t, known)
	assert.True(t, secret)
}

func TestOutputApplyT(t *testing.T) {
	out, resolve, _ := NewOutput()
	resolve(2)

	doubled := out.ApplyT(func(v interface{}) (interface{}, error) {
		return v.(int) * 2, nil
	})
	v, _, _, _, err := doubled.getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	failed := out.ApplyT(func(v interface{}) (interface{}, error) {
		return nil, errors.New("applier failed")
	})
	_, _, _, _, err = failed.getState().await(context.Background())
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	dep := newSimpleCustomResource(testCustomURN, "id-1")

	a, resolveA, _ := NewOutput(dep)
	resolveA("one")
	b := AnyOutput{newOutputState()}
	b.getState().resolve(2, true, true, nil)

	v, known, secret, deps, err := All(a, b, "three").getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"one", 2, "three"}, v)
	assert.True(t, known)
	assert.True(t, secret)
	assert.Contains(t, deps, Resource(dep))
}

func TestAllPropagatesUnknownsAndErrors(t *testing.T) {
	unknown := AnyOutput{newOutputState()}
	unknown.getState().resolve(nil, false, false, nil)

	_, known, _, _, err := All("x", unknown).getState().await(context.Background())
	require.NoError(t, err)
	assert.False(t, known)

	rejected, _, reject := NewOutput()
	boom := errors.New("boom")
	reject(boom)

	_, _, _, _, err = All(rejected).getState().await(context.Background())
	assert.Equal(t, boom, err)
}

func TestToSecret(t *testing.T) {
	v, known, secret, _, err := ToSecret("shh").getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shh", v)
	assert.True(t, known)
	assert.True(t, secret)

	inner, resolve, _ := NewOutput()
	resolve(7)
	v, _, secret, _, err = ToSecret(inner).getState().await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, secret)
}

func TestAwaitRespectsContext(t *testing.T) {
	out, _, _ := NewOutput()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, _, err := out.getState().await(canceled)
	assert.Equal(t, context.Canceled, err)
}

func TestMergeDependencies(t *testing.T) {
	a := newSimpleCustomResource(testCustomURN, "a")
	b := newSimpleComponentResource(testComponentURN)

	merged := mergeDependencies([]Resource{a}, []Resource{b, a})
	assert.Equal(t, []Resource{a, b}, merged)
}

func TestExpandDependenciesFollowsChildren(t *testing.T) {
	parent := newSimpleComponentResource(testComponentURN)
	child := newSimpleCustomResource(testCustomURN, "id-1")
	parent.addChild(child)

	urns, err := expandDependencies(context.Background(), []Resource{parent})
	require.NoError(t, err)
	assert.Equal(t, []URN{testComponentURN, testCustomURN}, urns)
}

func TestExpandDependenciesTerminatesOnCycles(t *testing.T) {
	a := newSimpleComponentResource(testComponentURN)
	b := newSimpleComponentResource(URN("urn:pulumi:stack::project::test:index:component::other"))
	a.addChild(b)
	b.addChild(a)

	urns, err := expandDependencies(context.Background(), []Resource{a})
	require.NoError(t, err)
	assert.Len(t, urns, 2)
}
