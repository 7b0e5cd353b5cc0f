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
	"sort"
	"sync"

	"github.com/spf13/cast"
)

// URN is a unique, structured identifier automatically assigned to a resource by the engine.
type URN string

// ID is a unique identifier assigned to a custom resource by its provider.
type ID string

// Resource represents a cloud resource managed by the engine.
type Resource interface {
	// URN is this resource's stable logical URN, assigned by the engine.
	URN() URNOutput

	getChildren() []Resource
	base() *ResourceState
}

// CustomResource is a cloud resource whose create, read, update, and delete operations are
// implemented by its provider, and which carries a provider-assigned physical ID.
type CustomResource interface {
	Resource

	// ID is the provider-assigned unique ID for this resource. It is set during deployments and
	// may be missing (unknown) during planning phases.
	ID() IDOutput
}

// ComponentResource is a resource that aggregates one or more other child resources into a higher
// level abstraction. The component resource itself is a resource, but does not require custom CRUD
// operations for provisioning.
type ComponentResource interface {
	Resource
}

// ProviderResource is a resource that implements CRUD operations for other custom resources.
type ProviderResource interface {
	CustomResource

	getPackage() string
}

// ResourceState is the base state shared by all resources.
type ResourceState struct {
	m sync.Mutex

	urn      URNOutput
	name     string
	children []Resource
	outputs  map[string]AnyOutput
}

func (s *ResourceState) URN() URNOutput {
	return s.urn
}

func (s *ResourceState) base() *ResourceState {
	return s
}

func (s *ResourceState) getChildren() []Resource {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]Resource(nil), s.children...)
}

// addChild records a child of this resource, making it reachable when the resource's transitive
// dependency URNs are collected.
func (s *ResourceState) addChild(child Resource) {
	s.m.Lock()
	defer s.m.Unlock()
	s.children = append(s.children, child)
}

// ownProperty claims the named property slot on this resource, installing the given output.
// Returns false if the resource already owns a property with that name.
func (s *ResourceState) ownProperty(key string, o AnyOutput) bool {
	s.m.Lock()
	defer s.m.Unlock()
	if s.outputs == nil {
		s.outputs = map[string]AnyOutput{}
	}
	if _, exists := s.outputs[key]; exists {
		return false
	}
	s.outputs[key] = o
	return true
}

// CustomResourceState is the state shared by all custom resources.
type CustomResourceState struct {
	ResourceState

	id IDOutput
}

func (s *CustomResourceState) ID() IDOutput {
	return s.id
}

func (s *CustomResourceState) baseCustom() *CustomResourceState {
	return s
}

// ProviderResourceState is the state shared by all provider resources.
type ProviderResourceState struct {
	CustomResourceState

	pkg string
}

func (s *ProviderResourceState) getPackage() string {
	return s.pkg
}

var (
	_ Resource         = (*ResourceState)(nil)
	_ CustomResource   = (*CustomResourceState)(nil)
	_ ProviderResource = (*ProviderResourceState)(nil)
)

// URNOutput is an Output that returns URN values.
type URNOutput struct{ *OutputState }

func (o URNOutput) awaitURN(ctx context.Context) (URN, bool, bool, error) {
	urn, known, secret, _, err := o.getState().await(ctx)
	if !known || err != nil {
		return "", known, secret, err
	}
	return URN(cast.ToString(urn)), true, secret, nil
}

// IDOutput is an Output that returns ID values.
type IDOutput struct{ *OutputState }

func (o IDOutput) awaitID(ctx context.Context) (ID, bool, bool, error) {
	id, known, secret, _, err := o.getState().await(ctx)
	if !known || err != nil {
		return "", known, secret, err
	}
	return ID(cast.ToString(id)), true, secret, nil
}

// dependencyResource stands in for a resource that is known only by its URN, as happens when an
// output value arrives over the wire annotated with dependency URNs.
type dependencyResource struct {
	ResourceState
}

// newDependencyResource creates a resource handle that carries nothing but an already-known URN.
func (ctx *Context) newDependencyResource(urn URN) Resource {
	res := &dependencyResource{}
	res.urn = URNOutput{newOutputState(res)}
	res.urn.getState().resolve(urn, true, false, nil)
	return res
}

// expandDependencies computes the set of URNs transitively reachable from the given resources,
// following component children. The result is sorted and free of duplicates.
func expandDependencies(ctx context.Context, inputs []Resource) ([]URN, error) {
	seen := map[Resource]struct{}{}
	urns := map[URN]struct{}{}

	var visit func(r Resource) error
	visit = func(r Resource) error {
		if _, has := seen[r]; has {
			return nil
		}
		seen[r] = struct{}{}

		urn, known, _, err := r.URN().awaitURN(ctx)
		if err != nil {
			return err
		}
		if known {
			urns[urn] = struct{}{}
		}
		for _, child := range r.getChildren() {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range inputs {
		if err := visit(r); err != nil {
			return nil, err
		}
	}

	sorted := make([]URN, 0, len(urns))
	for urn := range urns {
		sorted = append(sorted, urn)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted, nil
}
