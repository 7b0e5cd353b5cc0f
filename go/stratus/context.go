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
)

// Context handles registration of resources and exposes the SDK's view of the engine it is talking
// to: whether the current deployment is a dry run and which wire encodings the engine has
// negotiated support for. It also owns the resource registries so that multiple embedders can
// coexist in one process and tests can reset state deterministically.
type Context struct {
	ctx context.Context

	dryRun bool

	// Feature flags advertised by the engine during handshake. When a flag is off the marshaler
	// falls back to the corresponding legacy encoding.
	supportsSecrets            bool
	supportsResourceReferences bool
	supportsOutputValues       bool

	resourcePackages versionedRegistry[ResourcePackage]
	resourceModules  versionedRegistry[ResourceModule]
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithDryRun marks the context as previewing rather than applying.
func WithDryRun(dryRun bool) ContextOption {
	return func(ctx *Context) { ctx.dryRun = dryRun }
}

// WithSecretsSupport records whether the engine accepts strongly-typed secret envelopes.
func WithSecretsSupport(on bool) ContextOption {
	return func(ctx *Context) { ctx.supportsSecrets = on }
}

// WithResourceReferencesSupport records whether the engine accepts strongly-typed resource
// references.
func WithResourceReferencesSupport(on bool) ContextOption {
	return func(ctx *Context) { ctx.supportsResourceReferences = on }
}

// WithOutputValuesSupport records whether the engine accepts strongly-typed output values.
func WithOutputValuesSupport(on bool) ContextOption {
	return func(ctx *Context) { ctx.supportsOutputValues = on }
}

// NewContext creates a fresh context. All wire encodings are assumed supported unless an option
// says otherwise; an SDK embedder is expected to wire the engine's negotiated capabilities in.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		ctx:                        ctx,
		supportsSecrets:            true,
		supportsResourceReferences: true,
		supportsOutputValues:       true,
		resourcePackages:           newVersionedRegistry[ResourcePackage]("package"),
		resourceModules:            newVersionedRegistry[ResourceModule]("module"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Context returns the inner Go context governing the lifetime of in-flight awaits.
func (ctx *Context) Context() context.Context { return ctx.ctx }

// DryRun returns true during previews, when resources have not actually been created yet.
func (ctx *Context) DryRun() bool { return ctx.dryRun }
