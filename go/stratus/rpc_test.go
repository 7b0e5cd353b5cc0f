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
	"fmt"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-iac/stratus/sdk/go/common/resource"
)

type simpleCustomResource struct {
	CustomResourceState
}

func newSimpleCustomResource(urn URN, id ID) *simpleCustomResource {
	res := &simpleCustomResource{}
	res.urn = URNOutput{newOutputState(res)}
	res.urn.getState().resolve(urn, true, false, nil)
	res.id = IDOutput{newOutputState(res)}
	res.id.getState().resolve(id, id != "", false, nil)
	return res
}

type simpleComponentResource struct {
	ResourceState
}

func newSimpleComponentResource(urn URN) *simpleComponentResource {
	res := &simpleComponentResource{}
	res.urn = URNOutput{newOutputState(res)}
	res.urn.getState().resolve(urn, true, false, nil)
	return res
}

type simpleProviderResource struct {
	ProviderResourceState
}

func newSimpleProviderResource(urn URN, id ID) *simpleProviderResource {
	res := &simpleProviderResource{}
	res.urn = URNOutput{newOutputState(res)}
	res.urn.getState().resolve(urn, true, false, nil)
	res.id = IDOutput{newOutputState(res)}
	res.id.getState().resolve(id, id != "", false, nil)
	res.pkg = resource.URN(urn).Type().Name()
	return res
}

type testResourceModule struct {
	version *semver.Version
}

func (m *testResourceModule) Version() *semver.Version { return m.version }

func (m *testResourceModule) Construct(ctx *Context, name, typ, urn string) (Resource, error) {
	switch typ {
	case "test:index:custom":
		id := ID("id")
		if name == "preview" {
			id = ""
		}
		return newSimpleCustomResource(URN(urn), id), nil
	case "test:index:component":
		return newSimpleComponentResource(URN(urn)), nil
	default:
		return nil, fmt.Errorf("unknown resource type %v", typ)
	}
}

type testResourcePackage struct {
	version *semver.Version
}

func (p *testResourcePackage) Version() *semver.Version { return p.version }

func (p *testResourcePackage) ConstructProvider(ctx *Context, name, typ, urn string) (ProviderResource, error) {
	if typ != "pulumi:providers:test" {
		return nil, fmt.Errorf("unknown provider type %v", typ)
	}
	return newSimpleProviderResource(URN(urn), "id"), nil
}

const (
	testCustomURN    = URN("urn:pulumi:stack::project::test:index:custom::res")
	testComponentURN = URN("urn:pulumi:stack::project::test:index:component::comp")
)

func TestMarshalInputsBasicShapes(t *testing.T) {
	ctx := NewContext(context.Background())

	pmap, pdeps, urns, err := ctx.marshalInputs(map[string]interface{}{
		"a": 1,
		"b": nil,
		"c": []interface{}{2, nil},
	}, marshalOptions{})
	require.NoError(t, err)

	assert.Equal(t, resource.PropertyMap{
		"a": resource.NewNumberProperty(1),
		"c": resource.NewArrayProperty([]resource.PropertyValue{
			resource.NewNumberProperty(2),
			resource.NewNullProperty(),
		}),
	}, pmap)
	assert.Empty(t, pdeps)
	assert.Empty(t, urns)
}

func TestMarshalResolvedOutput(t *testing.T) {
	ctx := NewContext(context.Background())
	res := newSimpleCustomResource(testCustomURN, "id-1")

	out, resolve, _ := NewOutput(res)
	resolve(42)

	pmap, pdeps, urns, err := ctx.marshalInputs(map[string]interface{}{"v": out}, marshalOptions{})
	require.NoError(t, err)

	assert.Equal(t, resource.NewNumberProperty(42), pmap["v"])
	assert.Equal(t, []URN{testCustomURN}, pdeps["v"])
	assert.Equal(t, []URN{testCustomURN}, urns)
}

func TestMarshalUnknownOutput(t *testing.T) {
	ctx := NewContext(context.Background())

	out := AnyOutput{newOutputState()}
	out.getState().resolve(nil, false, false, nil)

	v, deps, err := ctx.marshalInput("root", out, marshalOptions{})
	require.NoError(t, err)
	assert.True(t, v.IsComputed())
	assert.True(t, v.ContainsUnknowns())
	assert.Empty(t, deps)
}

func TestMarshalUnknownSentinel(t *testing.T) {
	ctx := NewContext(context.Background())

	v, _, err := ctx.marshalInput("root", UnknownValue{}, marshalOptions{})
	require.NoError(t, err)
	assert.True(t, v.IsComputed())
}

func TestMarshalSecretOutput(t *testing.T) {
	ctx := NewContext(context.Background())

	v, _, err := ctx.marshalInput("x", ToSecret("hi"), marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsSecret())
	assert.Equal(t, resource.NewStringProperty("hi"), v.SecretValue().Element)

	// Without engine support, the secret collapses to its plain value.
	legacy := NewContext(context.Background(), WithSecretsSupport(false))
	v, _, err = legacy.marshalInput("x", ToSecret("hi"), marshalOptions{})
	require.NoError(t, err)
	assert.Equal(t, resource.NewStringProperty("hi"), v)
}

func TestMarshalOutputValueEnvelope(t *testing.T) {
	ctx := NewContext(context.Background())
	res := newSimpleCustomResource(testCustomURN, "id-1")

	out := AnyOutput{newOutputState(res)}
	out.getState().resolve(7, true, true, nil)

	v, deps, err := ctx.marshalInput("root", out, marshalOptions{KeepOutputValues: true})
	require.NoError(t, err)
	require.True(t, v.IsOutput())

	ov := v.OutputValue()
	assert.True(t, ov.Known)
	assert.True(t, ov.Secret)
	assert.Equal(t, resource.NewNumberProperty(7), ov.Element)
	assert.Equal(t, []resource.URN{resource.URN(testCustomURN)}, ov.Dependencies)
	assert.Equal(t, []Resource{res}, deps)
}

func TestMarshalUnknownOutputValueEnvelope(t *testing.T) {
	ctx := NewContext(context.Background())

	out := AnyOutput{newOutputState()}
	out.getState().resolve(nil, false, false, nil)

	v, _, err := ctx.marshalInput("root", out, marshalOptions{KeepOutputValues: true})
	require.NoError(t, err)
	require.True(t, v.IsOutput())
	assert.False(t, v.OutputValue().Known)
	assert.True(t, v.OutputValue().Element.IsNull())
}

func TestMarshalOutputValueUnsupported(t *testing.T) {
	ctx := NewContext(context.Background(), WithOutputValuesSupport(false))

	out := AnyOutput{newOutputState()}
	out.getState().resolve(7, true, true, nil)

	v, _, err := ctx.marshalInput("root", out, marshalOptions{KeepOutputValues: true})
	require.NoError(t, err)
	require.True(t, v.IsSecret())
	assert.Equal(t, resource.NewNumberProperty(7), v.SecretValue().Element)
}

func TestMarshalDependencyCollection(t *testing.T) {
	res := newSimpleCustomResource(testCustomURN, "id-1")

	ctx := NewContext(context.Background())

	v, deps, err := ctx.marshalInput("root", res, marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsResourceReference())
	ref := v.ResourceReferenceValue()
	assert.Equal(t, resource.URN(testCustomURN), ref.URN)
	assert.Equal(t, resource.NewStringProperty("id-1"), ref.ID)
	assert.Equal(t, []Resource{res}, deps)

	// Exclusion keeps the reference but drops the dependency edge.
	v, deps, err = ctx.marshalInput("root", res,
		marshalOptions{ExcludeResourceReferencesFromDependencies: true})
	require.NoError(t, err)
	assert.True(t, v.IsResourceReference())
	assert.Empty(t, deps)

	// Exclusion is inert when the engine does not understand resource references.
	legacy := NewContext(context.Background(), WithResourceReferencesSupport(false))
	v, deps, err = legacy.marshalInput("root", res,
		marshalOptions{ExcludeResourceReferencesFromDependencies: true})
	require.NoError(t, err)
	assert.Equal(t, resource.NewStringProperty("id-1"), v)
	assert.Equal(t, []Resource{res}, deps)
}

func TestMarshalCustomResourceUnknownID(t *testing.T) {
	ctx := NewContext(context.Background())
	res := newSimpleCustomResource(testCustomURN, "")

	v, _, err := ctx.marshalInput("root", res, marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsResourceReference())
	assert.True(t, v.ResourceReferenceValue().ID.IsComputed())

	legacy := NewContext(context.Background(), WithResourceReferencesSupport(false))
	v, _, err = legacy.marshalInput("root", res, marshalOptions{})
	require.NoError(t, err)
	assert.True(t, v.IsComputed())
}

func TestMarshalComponentCycle(t *testing.T) {
	comp := newSimpleComponentResource(testComponentURN)
	comp.addChild(comp)

	ctx := NewContext(context.Background())
	v, deps, err := ctx.marshalInput("root", comp, marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsResourceReference())
	ref := v.ResourceReferenceValue()
	assert.Equal(t, resource.URN(testComponentURN), ref.URN)
	assert.True(t, ref.ID.IsNull())
	assert.Equal(t, []Resource{comp}, deps)

	legacy := NewContext(context.Background(), WithResourceReferencesSupport(false))
	v, _, err = legacy.marshalInput("root", comp, marshalOptions{})
	require.NoError(t, err)
	assert.Equal(t, resource.NewStringProperty(string(testComponentURN)), v)
}

func TestMarshalCyclicComponentInOutputEnvelope(t *testing.T) {
	comp := newSimpleComponentResource(testComponentURN)
	comp.addChild(comp)

	ctx := NewContext(context.Background())
	out := AnyOutput{newOutputState(comp)}
	out.getState().resolve("v", true, false, nil)

	v, _, err := ctx.marshalInput("root", out, marshalOptions{KeepOutputValues: true})
	require.NoError(t, err)
	require.True(t, v.IsOutput())
	assert.Equal(t, []resource.URN{resource.URN(testComponentURN)}, v.OutputValue().Dependencies)
}

func TestMarshalAssetsAndArchives(t *testing.T) {
	ctx := NewContext(context.Background())

	v, _, err := ctx.marshalInput("a", NewStringAsset("hello"), marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsAsset())
	assert.Equal(t, "hello", v.AssetValue().Text)

	v, _, err = ctx.marshalInput("ar", NewAssetArchive(map[string]interface{}{
		"member": NewFileAsset("/tmp/file"),
	}), marshalOptions{})
	require.NoError(t, err)
	require.True(t, v.IsArchive())
	member, has := v.ArchiveValue().Assets["member"]
	require.True(t, has)
	assert.Equal(t, "/tmp/file", member.(*resource.Asset).Path)
}

func TestOutputStringPlaceholder(t *testing.T) {
	out, _, _ := NewOutput()
	assert.Equal(t, "Output<T>", fmt.Sprint(out))
}

func TestMarshalInvalidMapKeys(t *testing.T) {
	ctx := NewContext(context.Background())
	_, _, err := ctx.marshalInput("root", map[int]interface{}{1: "x"}, marshalOptions{})
	assert.Error(t, err)
}
