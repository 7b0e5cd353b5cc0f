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
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/stratus-iac/stratus/sdk/go/common/util/contract"
)

const (
	// AssetTextProperty is the dynamic property for an asset's text.
	AssetTextProperty = "text"
	// AssetPathProperty is the dynamic property for an asset's path.
	AssetPathProperty = "path"
	// AssetURIProperty is the dynamic property for an asset's URI.
	AssetURIProperty = "uri"
)

// Asset is the wire representation of a file that is managed in conjunction with resources. An
// asset may be backed by a number of sources: a local filesystem path, an in-memory blob of text,
// or a remote file referenced by a URI. Exactly one discriminant is set.
type Asset struct {
	Path string // the path to a local file.
	Text string // an in-memory blob of text.
	URI  string // a remote URI.
}

func (a *Asset) IsPath() bool { return a.Path != "" }
func (a *Asset) IsText() bool { return a.Text != "" }
func (a *Asset) IsURI() bool  { return a.URI != "" }

// Serialize returns a weakly typed map that contains the right signature for serialization
// purposes.
func (a *Asset) Serialize() map[string]interface{} {
	result := map[string]interface{}{
		SigKey: AssetSig,
	}
	if a.Path != "" {
		result[AssetPathProperty] = a.Path
	}
	if a.Text != "" {
		result[AssetTextProperty] = a.Text
	}
	if a.URI != "" {
		result[AssetURIProperty] = a.URI
	}
	return result
}

// DeserializeAsset checks to see if the map contains an asset, using its signature, and if so
// deserializes it.
func DeserializeAsset(obj map[string]interface{}) (*Asset, bool, error) {
	sig, hasSig := obj[SigKey]
	if !hasSig || sig != AssetSig {
		return &Asset{}, false, nil
	}

	var asset Asset
	for _, prop := range []struct {
		key  string
		dest *string
	}{
		{AssetPathProperty, &asset.Path},
		{AssetTextProperty, &asset.Text},
		{AssetURIProperty, &asset.URI},
	} {
		if v, has := obj[prop.key]; has {
			s, err := cast.ToStringE(v)
			if err != nil {
				return &Asset{}, false, errors.Wrapf(err, "unexpected asset %s of type %T", prop.key, v)
			}
			*prop.dest = s
		}
	}
	return &asset, true, nil
}

const (
	// ArchiveAssetsProperty is the dynamic property for an archive's assets.
	ArchiveAssetsProperty = "assets"
	// ArchivePathProperty is the dynamic property for an archive's path.
	ArchivePathProperty = "path"
	// ArchiveURIProperty is the dynamic property for an archive's URI.
	ArchiveURIProperty = "uri"
)

// Archive is the wire representation of a collection of assets. An archive may be a map of named
// assets and sub-archives, a local filesystem path, or a remote URI. Exactly one discriminant is
// set; Assets values are *Asset or *Archive.
type Archive struct {
	Assets map[string]interface{} // a map of named assets.
	Path   string                 // the path to a local archive file.
	URI    string                 // a remote URI for the archive.
}

func (a *Archive) IsAssets() bool { return a.Assets != nil }
func (a *Archive) IsPath() bool   { return a.Path != "" }
func (a *Archive) IsURI() bool    { return a.URI != "" }

// Serialize returns a weakly typed map that contains the right signature for serialization
// purposes. Nested assets and archives are serialized recursively.
func (a *Archive) Serialize() map[string]interface{} {
	result := map[string]interface{}{
		SigKey: ArchiveSig,
	}
	if a.Assets != nil {
		assets := make(map[string]interface{}, len(a.Assets))
		for name, child := range a.Assets {
			switch t := child.(type) {
			case *Asset:
				assets[name] = t.Serialize()
			case *Archive:
				assets[name] = t.Serialize()
			default:
				contract.Failf("archive member %q must be an *Asset or *Archive, got %T", name, child)
			}
		}
		result[ArchiveAssetsProperty] = assets
	}
	if a.Path != "" {
		result[ArchivePathProperty] = a.Path
	}
	if a.URI != "" {
		result[ArchiveURIProperty] = a.URI
	}
	return result
}

// DeserializeArchive checks to see if the map contains an archive, using its signature, and if so
// deserializes it.
func DeserializeArchive(obj map[string]interface{}) (*Archive, bool, error) {
	sig, hasSig := obj[SigKey]
	if !hasSig || sig != ArchiveSig {
		return &Archive{}, false, nil
	}

	var archive Archive
	if v, has := obj[ArchiveAssetsProperty]; has {
		assets, ok := v.(map[string]interface{})
		if !ok {
			return &Archive{}, false, errors.Errorf("unexpected archive assets of type %T", v)
		}
		archive.Assets = make(map[string]interface{}, len(assets))
		for name, child := range assets {
			childObj, ok := child.(map[string]interface{})
			if !ok {
				return &Archive{}, false,
					errors.Errorf("archive member %q must be an asset or archive, got %T", name, child)
			}
			if asset, isAsset, err := DeserializeAsset(childObj); err != nil {
				return &Archive{}, false, err
			} else if isAsset {
				archive.Assets[name] = asset
				continue
			}
			if sub, isArchive, err := DeserializeArchive(childObj); err != nil {
				return &Archive{}, false, err
			} else if isArchive {
				archive.Assets[name] = sub
				continue
			}
			return &Archive{}, false,
				errors.Errorf("archive member %q must be an asset or archive", name)
		}
	}
	for _, prop := range []struct {
		key  string
		dest *string
	}{
		{ArchivePathProperty, &archive.Path},
		{ArchiveURIProperty, &archive.URI},
	} {
		if v, has := obj[prop.key]; has {
			s, err := cast.ToStringE(v)
			if err != nil {
				return &Archive{}, false, errors.Wrapf(err, "unexpected archive %s of type %T", prop.key, v)
			}
			*prop.dest = s
		}
	}
	return &archive, true, nil
}
