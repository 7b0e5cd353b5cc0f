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

package resource

import (
	"strings"

	"github.com/pkg/errors"
)

// URN is a friendly, but unique, identifier for a resource, most often auto-assigned by the engine.
// These are used as unique IDs for objects, and help us to perform graph diffing and resolution of
// resource objects.
//
// Each resource URN is of the form:
//
//	urn:pulumi:<Stack>::<Project>::<Qualified$Type$Name>::<Name>
//
// wherein each element is the following:
//
//	<Stack>                 The stack being deployed into
//	<Project>               The project being evaluated
//	<Qualified$Type$Name>   The object type's qualified type token (including the parent type)
//	<Name>                  The human-friendly name identifier assigned by the developer or provider
type URN string

const (
	// URNPrefix is the standard URN prefix. The namespace identifier is shared with the other SDKs
	// that speak this protocol and must not change.
	URNPrefix = "urn:" + URNNamespaceID + ":"
	// URNNamespaceID is the URN namespace.
	URNNamespaceID = "pulumi"
	// URNNameDelimiter is the delimiter between URN name elements.
	URNNameDelimiter = "::"
	// URNTypeDelimiter is the delimiter between URN type elements.
	URNTypeDelimiter = "$"
)

// ParseURN attempts to parse a string into a URN, returning an error if it's not valid.
func ParseURN(s string) (URN, error) {
	if !strings.HasPrefix(s, URNPrefix) {
		return "", errors.Errorf("invalid URN %q: missing %q prefix", s, URNPrefix)
	}
	if len(strings.Split(s, URNNameDelimiter)) != 4 {
		return "", errors.Errorf("invalid URN %q: expected 4 %q-delimited components", s, URNNameDelimiter)
	}
	return URN(s), nil
}

func (urn URN) split() []string {
	return strings.Split(string(urn), URNNameDelimiter)
}

// Stack returns the stack component of the URN.
func (urn URN) Stack() string {
	return strings.TrimPrefix(urn.split()[0], URNPrefix)
}

// Project returns the project component of the URN.
func (urn URN) Project() string {
	return urn.split()[1]
}

// QualifiedType returns the resource type component of the URN, including any parent types.
func (urn URN) QualifiedType() string {
	return urn.split()[2]
}

// Type returns the resource type of the URN: the last element of the qualified type's
// "$"-delimited parent chain.
func (urn URN) Type() Type {
	qt := urn.QualifiedType()
	if ix := strings.LastIndex(qt, URNTypeDelimiter); ix != -1 {
		qt = qt[ix+len(URNTypeDelimiter):]
	}
	return Type(qt)
}

// Name returns the name component of the URN.
func (urn URN) Name() string {
	return urn.split()[3]
}

// Type is a resource type token of the form "package:module:typeName".
type Type string

func (t Type) parts() []string {
	return strings.SplitN(string(t), ":", 3)
}

// Package returns the package component of the type token.
func (t Type) Package() string {
	return t.parts()[0]
}

// Module returns the module component of the type token, or "" if there is none.
func (t Type) Module() string {
	if parts := t.parts(); len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// Name returns the unqualified type name component of the type token.
func (t Type) Name() string {
	parts := t.parts()
	return parts[len(parts)-1]
}

// IsProvider reports whether the type token denotes a provider resource. Provider types live in the
// engine's reserved "pulumi:providers" module, with the provider's package as the type name.
func (t Type) IsProvider() bool {
	return t.Package() == URNNamespaceID && t.Module() == "providers"
}
