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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURN(t *testing.T) {
	urn, err := ParseURN("urn:pulumi:stack::project::pkg:mod:Typ::name")
	require.NoError(t, err)
	assert.Equal(t, "stack", urn.Stack())
	assert.Equal(t, "project", urn.Project())
	assert.Equal(t, "pkg:mod:Typ", urn.QualifiedType())
	assert.Equal(t, Type("pkg:mod:Typ"), urn.Type())
	assert.Equal(t, "name", urn.Name())

	_, err = ParseURN("not-a-urn")
	assert.Error(t, err)

	_, err = ParseURN("urn:pulumi:stack::project::missing-name")
	assert.Error(t, err)
}

func TestURNQualifiedTypeChain(t *testing.T) {
	urn := URN("urn:pulumi:stack::project::parent:mod:Comp$pkg:mod:Typ::name")
	assert.Equal(t, Type("pkg:mod:Typ"), urn.Type())
	assert.Equal(t, "parent:mod:Comp$pkg:mod:Typ", urn.QualifiedType())
}

func TestTypeTokens(t *testing.T) {
	typ := Type("aws:s3/bucket:Bucket")
	assert.Equal(t, "aws", typ.Package())
	assert.Equal(t, "s3/bucket", typ.Module())
	assert.Equal(t, "Bucket", typ.Name())
	assert.False(t, typ.IsProvider())

	provider := Type("pulumi:providers:aws")
	assert.Equal(t, "aws", provider.Name())
	assert.True(t, provider.IsProvider())
}
