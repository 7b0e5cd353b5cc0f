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
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"

	"github.com/stratus-iac/stratus/sdk/go/common/resource"
	"github.com/stratus-iac/stratus/sdk/go/common/util/contract"
	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// marshalOptions configures a single marshaling pass over a resource's inputs.
type marshalOptions struct {
	// KeepOutputValues preserves unresolved outputs as rich output-value envelopes when the engine
	// supports them; otherwise outputs collapse to their resolved value or the unknown marker.
	KeepOutputValues bool
	// ExcludeResourceReferencesFromDependencies keeps referenced resources out of the collected
	// dependency set when the engine supports resource references. The reference itself still
	// carries the URN, so the engine loses no information.
	ExcludeResourceReferencesFromDependencies bool
}

// marshalInputs turns a map of resource property inputs into a property map suitable for
// marshaling to the engine, together with the per-property and total dependency URNs accumulated
// while awaiting the inputs.
func (ctx *Context) marshalInputs(props map[string]interface{},
	opts marshalOptions) (resource.PropertyMap, map[string][]URN, []URN, error) {

	var depURNs []URN
	depset := map[URN]bool{}
	pmap, pdeps := resource.PropertyMap{}, map[string][]URN{}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, pname := range keys {
		// Get the underlying value, possibly waiting for an output to arrive.
		v, resourceDeps, err := ctx.marshalInput(pname, props[pname], opts)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "awaiting input property %q", pname)
		}

		// Record all dependencies accumulated from reading this property.
		var deps []URN
		pdepset := map[URN]bool{}
		for _, dep := range resourceDeps {
			depURN, known, _, err := dep.URN().awaitURN(ctx.ctx)
			if err != nil {
				return nil, nil, nil, err
			}
			if !known {
				continue
			}
			if !pdepset[depURN] {
				deps = append(deps, depURN)
				pdepset[depURN] = true
			}
			if !depset[depURN] {
				depURNs = append(depURNs, depURN)
				depset[depURN] = true
			}
		}
		if len(deps) > 0 {
			pdeps[pname] = deps
		}

		if !v.IsNull() || len(deps) > 0 {
			pmap[resource.PropertyKey(pname)] = v
		}
	}

	return pmap, pdeps, depURNs, nil
}

// marshalInput marshals a single input value, returning its raw serializable value along with any
// resources that contributed to it. The label names the property path for diagnostics.
func (ctx *Context) marshalInput(label string, v interface{},
	opts marshalOptions) (resource.PropertyValue, []Resource, error) {

	for {
		// If v is nil, just return a null.
		if v == nil {
			return resource.NewNullProperty(), nil, nil
		}

		// Look for some well known types.
		switch t := v.(type) {
		case UnknownValue:
			return resource.MakeComputed(resource.NewStringProperty("")), nil, nil
		case Output:
			return ctx.marshalOutput(label, t, opts)
		case Asset:
			return resource.NewAssetProperty(&resource.Asset{
				Path: t.Path(),
				Text: t.Text(),
				URI:  t.URI(),
			}), nil, nil
		case Archive:
			return ctx.marshalArchive(label, t, opts)
		case Resource:
			return ctx.marshalResourceReference(label, t, opts)
		}

		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Bool:
			return resource.NewBoolProperty(rv.Bool()), nil, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return resource.NewNumberProperty(float64(rv.Int())), nil, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return resource.NewNumberProperty(float64(rv.Uint())), nil, nil
		case reflect.Float32, reflect.Float64:
			return resource.NewNumberProperty(rv.Float()), nil, nil
		case reflect.String:
			return resource.NewStringProperty(rv.String()), nil, nil
		case reflect.Ptr, reflect.Interface:
			// Dereference non-nil pointers and interfaces.
			if rv.IsNil() {
				return resource.NewNullProperty(), nil, nil
			}
			v = rv.Elem().Interface()
			continue
		case reflect.Array, reflect.Slice:
			if rv.IsNil() {
				return resource.NewNullProperty(), nil, nil
			}

			// Create a new array by recursing into elements. Elements marshaling to nothing become
			// nulls, preserving positions.
			var deps []Resource
			arr := make([]resource.PropertyValue, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				e, d, err := ctx.marshalInput(fmt.Sprintf("%s[%d]", label, i), rv.Index(i).Interface(), opts)
				if err != nil {
					return resource.PropertyValue{}, nil, err
				}
				arr = append(arr, e)
				deps = mergeDependencies(deps, d)
			}
			return resource.NewArrayProperty(arr), deps, nil
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return resource.PropertyValue{}, nil,
					errors.Errorf("%s: expected map keys to be strings; got %v", label, rv.Type().Key())
			}

			if rv.IsNil() {
				return resource.NewNullProperty(), nil, nil
			}

			// For maps, recurse into the values; keys whose values marshal to null are omitted.
			var deps []Resource
			obj := resource.PropertyMap{}
			for _, key := range rv.MapKeys() {
				value := rv.MapIndex(key)
				mv, d, err := ctx.marshalInput(fmt.Sprintf("%s.%s", label, key.String()), value.Interface(), opts)
				if err != nil {
					return resource.PropertyValue{}, nil, err
				}
				if !mv.IsNull() {
					obj[resource.PropertyKey(key.String())] = mv
				}
				deps = mergeDependencies(deps, d)
			}
			return resource.NewObjectProperty(obj), deps, nil
		}
		return resource.PropertyValue{}, nil, errors.Errorf("%s: unrecognized input property type %v (%T)", label, v, v)
	}
}

// marshalOutput awaits an output and marshals its resolution per the negotiated wire encodings.
func (ctx *Context) marshalOutput(label string, out Output,
	opts marshalOptions) (resource.PropertyValue, []Resource, error) {

	logging.V(9).Infof("Awaiting output for %s: %v", label, out.getState())

	value, known, secret, outputDeps, err := out.getState().await(ctx.ctx)
	if err != nil {
		return resource.PropertyValue{}, nil, err
	}

	var deps []Resource
	if !(opts.ExcludeResourceReferencesFromDependencies && ctx.supportsResourceReferences) {
		deps = mergeDependencies(deps, outputDeps)
	}

	// Marshal the inner value; the outer wrapping, if any, decides the encoding, so nested
	// output-value envelopes are never produced here.
	var element resource.PropertyValue
	var elementDeps []Resource
	if known {
		elemOpts := opts
		elemOpts.KeepOutputValues = false
		element, elementDeps, err = ctx.marshalInput(label, value, elemOpts)
		if err != nil {
			return resource.PropertyValue{}, nil, err
		}
		deps = mergeDependencies(deps, elementDeps)
	}

	if opts.KeepOutputValues && ctx.supportsOutputValues {
		urns, err := expandDependencies(ctx.ctx, mergeDependencies(outputDeps, elementDeps))
		if err != nil {
			return resource.PropertyValue{}, nil, err
		}
		wireURNs := make([]resource.URN, len(urns))
		for i, urn := range urns {
			wireURNs[i] = resource.URN(urn)
		}

		result := resource.Output{
			Known:        known,
			Secret:       secret,
			Dependencies: wireURNs,
		}
		if known {
			result.Element = element
		}
		return resource.NewOutputProperty(result), deps, nil
	}

	// If the value is unknown, the appropriate sentinel stands in for it.
	if !known {
		return resource.MakeComputed(resource.NewStringProperty("")), deps, nil
	}
	if secret && ctx.supportsSecrets {
		return resource.MakeSecret(element), deps, nil
	}
	return element, deps, nil
}

// marshalArchive marshals an archive, recursing into its named sub-assets.
func (ctx *Context) marshalArchive(label string, v Archive,
	opts marshalOptions) (resource.PropertyValue, []Resource, error) {

	var assets map[string]interface{}
	if as := v.Assets(); as != nil {
		elemOpts := opts
		elemOpts.KeepOutputValues = false
		assets = make(map[string]interface{}, len(as))
		for k, a := range as {
			aa, _, err := ctx.marshalInput(fmt.Sprintf("%s.%s", label, k), a, elemOpts)
			if err != nil {
				return resource.PropertyValue{}, nil, err
			}
			assets[k] = aa.V
		}
	}
	return resource.NewArchiveProperty(&resource.Archive{
		Assets: assets,
		Path:   v.Path(),
		URI:    v.URI(),
	}), nil, nil
}

// marshalResourceReference marshals a reference to another resource. Component resources are
// serialized only as their URN, never by expanding their children: this is the sole break for
// cyclic component graphs.
func (ctx *Context) marshalResourceReference(label string, res Resource,
	opts marshalOptions) (resource.PropertyValue, []Resource, error) {

	var deps []Resource
	if !(opts.ExcludeResourceReferencesFromDependencies && ctx.supportsResourceReferences) {
		deps = append(deps, res)
	}

	urn, known, secretURN, err := res.URN().awaitURN(ctx.ctx)
	if err != nil {
		return resource.PropertyValue{}, nil, err
	}
	contract.Assertf(known, "the URN of %s must be known", label)
	contract.Assertf(!secretURN, "the URN of %s must not be secret", label)

	custom, isCustom := res.(CustomResource)
	if !isCustom {
		if ctx.supportsResourceReferences {
			return resource.MakeComponentResourceReference(resource.URN(urn), ""), deps, nil
		}
		// Backward compatibility: the bare URN.
		return resource.NewStringProperty(string(urn)), deps, nil
	}

	id, idKnown, idSecret, err := custom.ID().awaitID(ctx.ctx)
	if err != nil {
		return resource.PropertyValue{}, nil, err
	}
	contract.Assertf(!idSecret, "the ID of %s must not be secret", label)

	idProp := resource.NewStringProperty(string(id))
	if !idKnown {
		idProp = resource.MakeComputed(resource.NewStringProperty(""))
	}

	if ctx.supportsResourceReferences {
		return resource.MakeCustomResourceReference(resource.URN(urn), idProp, ""), deps, nil
	}
	// Backward compatibility: the id alone.
	return idProp, deps, nil
}
