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
	"github.com/pkg/errors"

	"github.com/stratus-iac/stratus/sdk/go/common/resource"
	"github.com/stratus-iac/stratus/sdk/go/common/resource/plugin"
)

// unmarshalPropertyValue unmarshals a single engine property value into its runtime
// representation, returning a bool that indicates whether the value was secret-wrapped anywhere
// within. Secret-ness is reported at the outermost level only; interior wrappers are removed.
func (ctx *Context) unmarshalPropertyValue(v resource.PropertyValue,
	keepUnknowns bool) (interface{}, bool, error) {

	switch {
	case v.IsComputed():
		if ctx.dryRun || keepUnknowns {
			return UnknownValue{}, false, nil
		}
		return nil, false, nil
	case v.IsOutput():
		return ctx.unmarshalOutputValue(v.OutputValue(), keepUnknowns)
	case v.IsSecret():
		sv, _, err := ctx.unmarshalPropertyValue(v.SecretValue().Element, keepUnknowns)
		if err != nil {
			return nil, false, err
		}
		return sv, true, nil
	case v.IsArray():
		arr := v.ArrayValue()
		rv := make([]interface{}, len(arr))
		secret := false
		for i, e := range arr {
			ev, esecret, err := ctx.unmarshalPropertyValue(e, keepUnknowns)
			if err != nil {
				return nil, false, err
			}
			secret = secret || esecret
			rv[i] = ev
		}
		return rv, secret, nil
	case v.IsObject():
		m := make(map[string]interface{})
		secret := false
		for k, e := range v.ObjectValue() {
			// Ignore properties internal to the engine.
			if resource.IsInternalPropertyKey(k) {
				continue
			}
			ev, esecret, err := ctx.unmarshalPropertyValue(e, keepUnknowns)
			if err != nil {
				return nil, false, err
			}
			secret = secret || esecret
			m[string(k)] = ev
		}
		return m, secret, nil
	case v.IsAsset():
		asset, err := assetFromWire(v.AssetValue())
		return asset, false, err
	case v.IsArchive():
		archive, err := archiveFromWire(v.ArchiveValue())
		return archive, false, err
	case v.IsResourceReference():
		return ctx.unmarshalResourceReference(v.ResourceReferenceValue(), keepUnknowns)
	default:
		return v.V, false, nil
	}
}

// unmarshalOutputValue reconstructs a live output from a wire output value: already resolved, with
// one dependency-only resource per reported URN. An envelope that is both unknown and secret keeps
// both bits.
func (ctx *Context) unmarshalOutputValue(out resource.Output,
	keepUnknowns bool) (interface{}, bool, error) {

	var value interface{}
	secret := out.Secret
	if out.Known {
		v, vsecret, err := ctx.unmarshalPropertyValue(out.Element, keepUnknowns)
		if err != nil {
			return nil, false, err
		}
		value, secret = v, secret || vsecret
	}

	deps := make([]Resource, len(out.Dependencies))
	for i, urn := range out.Dependencies {
		deps[i] = ctx.newDependencyResource(URN(urn))
	}

	state := newOutputState(deps...)
	state.resolve(value, out.Known, secret, nil)
	return AnyOutput{state}, false, nil
}

// unmarshalResourceReference resolves a resource reference against the registries, falling back to
// the reference's id (custom) or URN (component) when no constructor has been registered. An empty
// id is promoted to unknown.
func (ctx *Context) unmarshalResourceReference(ref resource.ResourceReference,
	keepUnknowns bool) (interface{}, bool, error) {

	version, err := parsePackageVersion(ref.PackageVersion)
	if err != nil {
		return nil, false, err
	}

	typ := ref.URN.Type()
	name := ref.URN.Name()

	if typ.IsProvider() {
		if pkg, has := ctx.resourcePackages.lookup(typ.Name(), version); has {
			res, err := pkg.ConstructProvider(ctx, name, string(typ), string(ref.URN))
			if err != nil {
				return nil, false, errors.Wrapf(err, "constructing provider %v", ref.URN)
			}
			return res, false, nil
		}
	} else {
		if mod, has := ctx.resourceModules.lookup(moduleKey(typ.Package(), typ.Module()), version); has {
			res, err := mod.Construct(ctx, name, string(typ), string(ref.URN))
			if err != nil {
				return nil, false, errors.Wrapf(err, "constructing resource %v", ref.URN)
			}
			return res, false, nil
		}
	}

	if ref.IsCustom() {
		id := ref.ID
		if id.IsString() && id.StringValue() == "" {
			id = resource.MakeComputed(resource.NewStringProperty(""))
		}
		return ctx.unmarshalPropertyValue(id, keepUnknowns)
	}
	return string(ref.URN), false, nil
}

func assetFromWire(a *resource.Asset) (Asset, error) {
	switch {
	case a.IsPath():
		return NewFileAsset(a.Path), nil
	case a.IsText():
		return NewStringAsset(a.Text), nil
	case a.IsURI():
		return NewRemoteAsset(a.URI), nil
	}
	return nil, errors.Wrap(plugin.ErrMalformedWire, "expected asset to be one of File, String, or Remote; got none")
}

func archiveFromWire(a *resource.Archive) (Archive, error) {
	switch {
	case a.IsAssets():
		as := make(map[string]interface{}, len(a.Assets))
		for k, v := range a.Assets {
			switch t := v.(type) {
			case *resource.Asset:
				asset, err := assetFromWire(t)
				if err != nil {
					return nil, err
				}
				as[k] = asset
			case *resource.Archive:
				sub, err := archiveFromWire(t)
				if err != nil {
					return nil, err
				}
				as[k] = sub
			default:
				return nil, errors.Wrapf(plugin.ErrMalformedWire,
					"archive member %q must be an asset or archive, got %T", k, v)
			}
		}
		return NewAssetArchive(as), nil
	case a.IsPath():
		return NewFileArchive(a.Path), nil
	case a.IsURI():
		return NewRemoteArchive(a.URI), nil
	}
	return nil, errors.Wrap(plugin.ErrMalformedWire, "expected archive to be one of Assets, File, or Remote; got none")
}
