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
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/stratus-iac/stratus/sdk/go/common/resource"
	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// propertyResolver drives a single transferred property to its terminal state. It must be called
// at most once per property; the RPC response handler is responsible for observing this.
type propertyResolver func(v interface{}, known, secret bool, deps []Resource, err error)

// resourceState tracks the unresolved outputs installed on a resource at construction time, and
// the resolvers used to finalize them once the engine responds.
type resourceState struct {
	typ  string
	name string

	outputs   map[string]AnyOutput
	resolvers map[string]propertyResolver
}

func (state *resourceState) resolverKeys() []string {
	keys := make([]string, 0, len(state.resolvers))
	for k := range state.resolvers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// makeResourceState installs an unresolved output on the target resource for each input property,
// plus the reserved urn and id outputs, and returns resolvers used to finalize them from engine
// results. Installing over a property the resource already owns is refused.
func (ctx *Context) makeResourceState(t, name string, res Resource,
	inputs map[string]interface{}) (*resourceState, error) {

	state := &resourceState{
		typ:       t,
		name:      name,
		outputs:   map[string]AnyOutput{},
		resolvers: map[string]propertyResolver{},
	}

	rs := res.base()
	rs.name = name
	rs.urn = URNOutput{newOutputState(res)}
	state.outputs["urn"] = AnyOutput{rs.urn.OutputState}

	if _, isCustom := res.(CustomResource); isCustom {
		crs := res.(interface{ baseCustom() *CustomResourceState }).baseCustom()
		crs.id = IDOutput{newOutputState(res)}
		state.outputs["id"] = AnyOutput{crs.id.OutputState}
	}

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		// The reserved urn and id properties are owned by the runtime, never transferred.
		if key == "urn" || key == "id" {
			continue
		}
		output := AnyOutput{newOutputState(res)}
		if !rs.ownProperty(key, output) {
			return nil, errors.Wrapf(ErrPropertyConflict, "property %q on resource %s (%s)", key, name, t)
		}
		state.outputs[key] = output
		state.resolvers[key] = makePropertyResolver(output, key)
	}

	return state, nil
}

func makePropertyResolver(output AnyOutput, key string) propertyResolver {
	return func(v interface{}, known, secret bool, deps []Resource, err error) {
		if err != nil {
			if IsGrpcError(err) {
				// The surrounding RPC already failed and will be reported there; resolving the
				// property with this error would surface it twice.
				logging.V(9).Infof("leaving property %q unresolved after gRPC error: %v", key, err)
				return
			}
			output.getState().reject(err)
			return
		}
		output.getState().resolve(v, known, secret, deps)
	}
}

// resolveProperties finalizes a resource's transferred properties from the engine's response. Any
// error makes every resolver observe it; otherwise each returned property is unmarshaled and fed
// to its resolver, extra engine properties are skipped, and resolvers the engine did not satisfy
// are driven to a terminal state so downstream awaiters do not hang.
func (ctx *Context) resolveProperties(state *resourceState, allProps resource.PropertyMap,
	deps map[string][]Resource, err error, keepUnknowns bool) error {

	if err != nil {
		// Recognized transport errors are dropped inside the resolver itself.
		for _, key := range state.resolverKeys() {
			state.resolvers[key](nil, true, false, nil, err)
		}
		return nil
	}

	var result *multierror.Error
	resolved := map[string]bool{}

	for _, key := range allProps.StableKeys() {
		k := string(key)
		if k == "urn" || k == "id" {
			continue
		}
		resolver, has := state.resolvers[k]
		if !has {
			// The engine returned a property we did not transfer, as happens for outputs
			// registered out of band; overwriting a user-assigned field would race.
			logging.V(9).Infof("skipping untransferred property %q on %s (%s)", k, state.name, state.typ)
			continue
		}
		resolved[k] = true

		v := allProps[key]
		secret := false
		if v.IsSecret() {
			v, secret = v.SecretValue().Element, true
		}

		value, vsecret, uerr := ctx.unmarshalPropertyValue(v, keepUnknowns)
		if uerr != nil {
			wrapped := errors.Wrapf(uerr, "resolving property %q on %s (%s)", k, state.name, state.typ)
			result = multierror.Append(result, wrapped)
			resolver(nil, true, false, nil, wrapped)
			continue
		}

		known := true
		if v.IsNull() || v.IsComputed() || v.IsOutput() {
			known = !ctx.dryRun
		}

		resolver(value, known, secret || vsecret, deps[k], nil)
	}

	for _, k := range state.resolverKeys() {
		if resolved[k] {
			continue
		}
		if !ctx.dryRun && keepUnknowns {
			state.resolvers[k](UnknownValue{}, true, false, nil, nil)
			continue
		}
		state.resolvers[k](nil, !ctx.dryRun && !keepUnknowns, false, nil, nil)
	}

	return result.ErrorOrNil()
}
