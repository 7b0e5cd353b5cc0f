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
	"sync"

	"github.com/blang/semver"
	"github.com/pkg/errors"

	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// ResourcePackage constructs provider resources for a package when a provider reference is
// deserialized. A nil Version acts as a wildcard compatible with any requested version.
type ResourcePackage interface {
	Version() *semver.Version
	ConstructProvider(ctx *Context, name, typ, urn string) (ProviderResource, error)
}

// ResourceModule constructs resources for a "package:module" pair when a resource reference is
// deserialized. A nil Version acts as a wildcard compatible with any requested version.
type ResourceModule interface {
	Version() *semver.Version
	Construct(ctx *Context, name, typ, urn string) (Resource, error)
}

type versionedValue[T any] struct {
	version *semver.Version
	value   T
}

// versionedRegistry maps keys to versioned entries. The same key may be registered at several
// versions, as happens when multiple transitive dependencies each carry a copy of a package.
type versionedRegistry[T any] struct {
	kind    string
	mu      *sync.RWMutex
	entries map[string][]versionedValue[T]
}

func newVersionedRegistry[T any](kind string) versionedRegistry[T] {
	return versionedRegistry[T]{
		kind:    kind,
		mu:      &sync.RWMutex{},
		entries: map[string][]versionedValue[T]{},
	}
}

// register appends an entry for the given key unless an entry with an equal version already
// exists, in which case the registration is skipped and false is returned. A nil version compares
// equal to anything.
func (r *versionedRegistry[T]) register(key string, version *semver.Version, value T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries[key] {
		if versionsEqual(existing.version, version) {
			logging.V(5).Infof("skipping duplicate registration of %s %q at version %v", r.kind, key, version)
			return false
		}
	}
	r.entries[key] = append(r.entries[key], versionedValue[T]{version: version, value: value})
	return true
}

// lookup finds the best entry for the given key: the greatest-versioned entry compatible with the
// requested floor. Compatibility means same major version with at least the requested minor and
// patch; a nil version on either side is compatible with anything. Versionless entries rank below
// any versioned entry, and ties go to the earliest registration.
func (r *versionedRegistry[T]) lookup(key string, want *semver.Version) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *versionedValue[T]
	entries := r.entries[key]
	for i := range entries {
		e := &entries[i]
		if !versionCompatible(e.version, want) {
			continue
		}
		if best == nil || versionGreater(e.version, best.version) {
			best = e
		}
	}
	if best == nil {
		var zero T
		return zero, false
	}
	return best.value, true
}

func versionsEqual(a, b *semver.Version) bool {
	if a == nil || b == nil {
		return true
	}
	return a.EQ(*b)
}

func versionCompatible(have, want *semver.Version) bool {
	if have == nil || want == nil {
		return true
	}
	return have.Major == want.Major && have.Minor >= want.Minor && have.Patch >= want.Patch
}

func versionGreater(a, b *semver.Version) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.GT(*b)
	}
}

// parsePackageVersion parses the optional packageVersion field of a resource reference. The empty
// string acts as a wildcard.
func parsePackageVersion(version string) (*semver.Version, error) {
	if version == "" {
		return nil, nil
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid package version %q", version)
	}
	return &v, nil
}

func moduleKey(pkg, mod string) string {
	return fmt.Sprintf("%s:%s", pkg, mod)
}

// RegisterResourcePackage registers a resource package with this context's runtime, making its
// provider resources reconstructible from provider references. Returns false if an equal-versioned
// registration already existed.
func (ctx *Context) RegisterResourcePackage(pkg string, resourcePackage ResourcePackage) bool {
	return ctx.resourcePackages.register(pkg, resourcePackage.Version(), resourcePackage)
}

// RegisterResourceModule registers a resource module with this context's runtime, making its
// resources reconstructible from resource references. Returns false if an equal-versioned
// registration already existed.
func (ctx *Context) RegisterResourceModule(pkg, mod string, module ResourceModule) bool {
	return ctx.resourceModules.register(moduleKey(pkg, mod), module.Version(), module)
}
