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

// Package plugin converts between the in-memory property value model and the protocol's
// structured-value envelope (a protobuf Struct).
package plugin

import (
	"sort"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stratus-iac/stratus/sdk/go/common/resource"
	"github.com/stratus-iac/stratus/sdk/go/common/util/logging"
)

// UnknownStringValue is the sentinel standing in for a value that is not yet computed during a
// preview. It is shared with the other SDKs that speak this protocol and must not change.
//
// `gosec` thinks this is a credential, but it is not.
//nolint:gosec
const UnknownStringValue = "04da6b54-80e4-46f7-96ec-b56ff0331ba9"

// ErrMalformedWire indicates a wire value that violates the protocol: a missing value, an envelope
// missing its required payload, or a payload of the wrong shape.
var ErrMalformedWire = errors.New("malformed wire value")

// ErrUnknownSignature indicates a tagged wire object whose signature is not recognized.
var ErrUnknownSignature = errors.New("unrecognized value signature")

// MarshalOptions controls the marshaling of RPC structures.
type MarshalOptions struct {
	Label            string // an optional label for debugging.
	KeepUnknowns     bool   // true if we are keeping unknown values (otherwise they are elided).
	KeepSecrets      bool   // true if the peer accepts strongly-typed secret envelopes.
	KeepResources    bool   // true if the peer accepts strongly-typed resource references.
	KeepOutputValues bool   // true if the peer accepts strongly-typed output values.
}

// IsSecretEnvelope returns true if the given raw wire object is a secret envelope.
func IsSecretEnvelope(obj map[string]interface{}) bool {
	sig, has := obj[resource.SigKey]
	return has && sig == resource.SecretSig
}

// UnwrapSecretEnvelope returns the payload of a secret envelope, if the given raw wire object is
// one.
func UnwrapSecretEnvelope(obj map[string]interface{}) (interface{}, bool) {
	if !IsSecretEnvelope(obj) {
		return nil, false
	}
	return obj["value"], true
}

// MarshalProperties marshals a resource's property map so that it's suitable for marshaling to the
// wire. Keys whose values marshal to nothing (for example unknowns when KeepUnknowns is off) are
// omitted from the result.
func MarshalProperties(props resource.PropertyMap, opts MarshalOptions) (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{}
	for _, key := range props.StableKeys() {
		v := props[key]
		logging.V(9).Infof("Marshaling property for RPC[%s]: %s=%v", opts.Label, key, v)
		mv, err := MarshalPropertyValue(string(key), v, opts)
		if err != nil {
			return nil, err
		}
		if mv != nil {
			fields[string(key)] = mv
		}
	}
	return &structpb.Struct{Fields: fields}, nil
}

// MarshalPropertyValue marshals a single resource property value into its structpb shape. A nil
// result with a nil error means the value should be elided from its enclosing object.
func MarshalPropertyValue(key string, v resource.PropertyValue, opts MarshalOptions) (*structpb.Value, error) {
	switch {
	case v.IsNull():
		return structpb.NewNullValue(), nil
	case v.IsBool():
		return structpb.NewBoolValue(v.BoolValue()), nil
	case v.IsNumber():
		return structpb.NewNumberValue(v.NumberValue()), nil
	case v.IsString():
		return structpb.NewStringValue(v.StringValue()), nil
	case v.IsArray():
		elems := v.ArrayValue()
		items := make([]*structpb.Value, 0, len(elems))
		for _, elem := range elems {
			e, err := MarshalPropertyValue(key, elem, opts)
			if err != nil {
				return nil, err
			}
			if e == nil {
				// Preserve the array shape: elided elements become nulls.
				e = structpb.NewNullValue()
			}
			items = append(items, e)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: items}), nil
	case v.IsAsset():
		return marshalTaggedObject(key, v.AssetValue().Serialize())
	case v.IsArchive():
		return marshalTaggedObject(key, v.ArchiveValue().Serialize())
	case v.IsComputed():
		if !opts.KeepUnknowns {
			return nil, nil
		}
		return structpb.NewStringValue(UnknownStringValue), nil
	case v.IsOutput():
		return marshalOutputValue(key, v.OutputValue(), opts)
	case v.IsSecret():
		element, err := MarshalPropertyValue(key, v.SecretValue().Element, opts)
		if err != nil || element == nil {
			return nil, err
		}
		if !opts.KeepSecrets {
			logging.V(5).Infof("marshaling secret value for %q as raw value, peer does not accept secrets", key)
			return element, nil
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			resource.SigKey: structpb.NewStringValue(resource.SecretSig),
			"value":         element,
		}}), nil
	case v.IsResourceReference():
		return marshalResourceReference(key, v.ResourceReferenceValue(), opts)
	}
	return nil, errors.Errorf("%s: unrecognized property value %v", key, v.V)
}

func marshalTaggedObject(key string, obj map[string]interface{}) (*structpb.Value, error) {
	s, err := structpb.NewStruct(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "marshaling tagged object for %q", key)
	}
	return structpb.NewStructValue(s), nil
}

func marshalOutputValue(key string, out resource.Output, opts MarshalOptions) (*structpb.Value, error) {
	if !opts.KeepOutputValues {
		// Degrade to the legacy encodings: unknown marker, secret envelope, or the plain value.
		if !out.Known {
			return MarshalPropertyValue(key, resource.MakeComputed(resource.NewStringProperty("")), opts)
		}
		if out.Secret {
			return MarshalPropertyValue(key, resource.MakeSecret(out.Element), opts)
		}
		return MarshalPropertyValue(key, out.Element, opts)
	}

	fields := map[string]*structpb.Value{
		resource.SigKey: structpb.NewStringValue(resource.OutputValueSig),
	}
	if out.Known {
		element, err := MarshalPropertyValue(key, out.Element, opts)
		if err != nil {
			return nil, err
		}
		if element == nil {
			element = structpb.NewNullValue()
		}
		fields["value"] = element
	}
	if out.Secret {
		fields["secret"] = structpb.NewBoolValue(true)
	}
	if len(out.Dependencies) > 0 {
		deps := make([]*structpb.Value, len(out.Dependencies))
		for i, urn := range out.Dependencies {
			deps[i] = structpb.NewStringValue(string(urn))
		}
		fields["dependencies"] = structpb.NewListValue(&structpb.ListValue{Values: deps})
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}

func marshalResourceReference(key string, ref resource.ResourceReference, opts MarshalOptions) (*structpb.Value, error) {
	if !opts.KeepResources {
		// Backward compatibility: custom resources collapse to their id, components to their URN.
		if ref.IsCustom() {
			return MarshalPropertyValue(key, ref.ID, opts)
		}
		return structpb.NewStringValue(string(ref.URN)), nil
	}

	fields := map[string]*structpb.Value{
		resource.SigKey: structpb.NewStringValue(resource.ResourceReferenceSig),
		"urn":           structpb.NewStringValue(string(ref.URN)),
	}
	if ref.IsCustom() {
		idOpts := opts
		idOpts.KeepUnknowns = true
		id, err := MarshalPropertyValue(key, ref.ID, idOpts)
		if err != nil {
			return nil, err
		}
		fields["id"] = id
	}
	if ref.PackageVersion != "" {
		fields["packageVersion"] = structpb.NewStringValue(ref.PackageVersion)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}

// UnmarshalProperties unmarshals a "JSON-like" protobuf structure into a new resource property map.
func UnmarshalProperties(props *structpb.Struct, opts MarshalOptions) (resource.PropertyMap, error) {
	result := resource.PropertyMap{}
	if props == nil {
		return result, nil
	}

	// Sort the keys so that we iterate in a deterministic order; this matters for logging only.
	keys := make([]string, 0, len(props.Fields))
	for k := range props.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		logging.V(9).Infof("Unmarshaling property for RPC[%s]: %s", opts.Label, key)
		v, err := UnmarshalPropertyValue(key, props.Fields[key], opts)
		if err != nil {
			return nil, err
		}
		if v != nil {
			result[resource.PropertyKey(key)] = *v
		}
	}
	return result, nil
}

// UnmarshalPropertyValue unmarshals a single "JSON-like" value into a new property value. A nil
// result with a nil error means the value is absent and should be elided from its enclosing
// object.
func UnmarshalPropertyValue(key string, v *structpb.Value, opts MarshalOptions) (*resource.PropertyValue, error) {
	if v == nil {
		return nil, errors.Wrapf(ErrMalformedWire, "%s: missing value", key)
	}

	switch kind := v.Kind.(type) {
	case *structpb.Value_NullValue:
		pv := resource.NewNullProperty()
		return &pv, nil
	case *structpb.Value_BoolValue:
		pv := resource.NewBoolProperty(kind.BoolValue)
		return &pv, nil
	case *structpb.Value_NumberValue:
		pv := resource.NewNumberProperty(kind.NumberValue)
		return &pv, nil
	case *structpb.Value_StringValue:
		if kind.StringValue == UnknownStringValue {
			if !opts.KeepUnknowns {
				return nil, nil
			}
			pv := resource.MakeComputed(resource.NewStringProperty(""))
			return &pv, nil
		}
		pv := resource.NewStringProperty(kind.StringValue)
		return &pv, nil
	case *structpb.Value_ListValue:
		elems := kind.ListValue.GetValues()
		items := make([]resource.PropertyValue, 0, len(elems))
		for _, elem := range elems {
			e, err := UnmarshalPropertyValue(key, elem, opts)
			if err != nil {
				return nil, err
			}
			if e != nil {
				items = append(items, *e)
			}
		}
		pv := bubbleSecretsArray(items)
		return &pv, nil
	case *structpb.Value_StructValue:
		obj := kind.StructValue.GetFields()
		if sig, hasSig := obj[resource.SigKey]; hasSig {
			return unmarshalTaggedObject(key, sig, obj, opts)
		}

		result := resource.PropertyMap{}
		for k, elem := range obj {
			e, err := UnmarshalPropertyValue(k, elem, opts)
			if err != nil {
				return nil, err
			}
			if e != nil {
				result[resource.PropertyKey(k)] = *e
			}
		}
		pv := bubbleSecretsObject(result)
		return &pv, nil
	default:
		return nil, errors.Wrapf(ErrMalformedWire, "%s: unrecognized structure kind %T", key, v.Kind)
	}
}

// bubbleSecretsArray lifts interior secrets to a single envelope around the whole array. Secret-ness
// is never observable strictly inside a composite.
func bubbleSecretsArray(items []resource.PropertyValue) resource.PropertyValue {
	secret := false
	for _, e := range items {
		if e.IsSecret() {
			secret = true
			break
		}
	}
	if !secret {
		return resource.NewArrayProperty(items)
	}
	unwrapped := make([]resource.PropertyValue, len(items))
	for i, e := range items {
		if e.IsSecret() {
			unwrapped[i] = e.SecretValue().Element
		} else {
			unwrapped[i] = e
		}
	}
	return resource.MakeSecret(resource.NewArrayProperty(unwrapped))
}

// bubbleSecretsObject is the object analog of bubbleSecretsArray.
func bubbleSecretsObject(obj resource.PropertyMap) resource.PropertyValue {
	secret := false
	for _, e := range obj {
		if e.IsSecret() {
			secret = true
			break
		}
	}
	if !secret {
		return resource.NewObjectProperty(obj)
	}
	unwrapped := make(resource.PropertyMap, len(obj))
	for k, e := range obj {
		if e.IsSecret() {
			unwrapped[k] = e.SecretValue().Element
		} else {
			unwrapped[k] = e
		}
	}
	return resource.MakeSecret(resource.NewObjectProperty(unwrapped))
}

func unmarshalTaggedObject(key string, sig *structpb.Value, obj map[string]*structpb.Value,
	opts MarshalOptions) (*resource.PropertyValue, error) {

	sigStr, isString := sig.Kind.(*structpb.Value_StringValue)
	if !isString {
		return nil, errors.Wrapf(ErrMalformedWire, "%s: signature is not a string", key)
	}

	switch sigStr.StringValue {
	case resource.AssetSig:
		asset, isAsset, err := resource.DeserializeAsset(rawMap(obj))
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: %v", key, err)
		} else if !isAsset {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: expected an asset", key)
		}
		pv := resource.NewAssetProperty(asset)
		return &pv, nil
	case resource.ArchiveSig:
		archive, isArchive, err := resource.DeserializeArchive(rawMap(obj))
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: %v", key, err)
		} else if !isArchive {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: expected an archive", key)
		}
		pv := resource.NewArchiveProperty(archive)
		return &pv, nil
	case resource.SecretSig:
		value, has := obj["value"]
		if !has {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: secret envelope is missing its value", key)
		}
		element, err := UnmarshalPropertyValue(key, value, opts)
		if err != nil || element == nil {
			return nil, err
		}
		if !opts.KeepSecrets {
			return element, nil
		}
		pv := resource.MakeSecret(*element)
		return &pv, nil
	case resource.ResourceReferenceSig:
		return unmarshalResourceReference(key, obj, opts)
	case resource.OutputValueSig:
		return unmarshalOutputValue(key, obj, opts)
	default:
		return nil, errors.Wrapf(ErrUnknownSignature, "%s: %q", key, sigStr.StringValue)
	}
}

func unmarshalResourceReference(key string, obj map[string]*structpb.Value,
	opts MarshalOptions) (*resource.PropertyValue, error) {

	urnV, has := obj["urn"]
	if !has || urnV.GetStringValue() == "" {
		return nil, errors.Wrapf(ErrMalformedWire, "%s: resource reference is missing its urn", key)
	}
	urn, err := resource.ParseURN(urnV.GetStringValue())
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedWire, "%s: %v", key, err)
	}

	var packageVersion string
	if pv, has := obj["packageVersion"]; has {
		s, isString := pv.Kind.(*structpb.Value_StringValue)
		if !isString {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: resource reference packageVersion is not a string", key)
		}
		packageVersion = s.StringValue
	}

	id := resource.NewNullProperty()
	if idV, has := obj["id"]; has {
		// The id must survive even when unknowns are being elided, otherwise a custom reference
		// would silently degrade to a component one.
		idOpts := opts
		idOpts.KeepUnknowns = true
		idPV, err := UnmarshalPropertyValue(key, idV, idOpts)
		if err != nil {
			return nil, err
		}
		if idPV != nil && !idPV.IsString() && !idPV.IsComputed() {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: resource reference id is not a string", key)
		}
		if idPV != nil {
			id = *idPV
		}
	}

	if !opts.KeepResources {
		if !id.IsNull() {
			if id.IsComputed() && !opts.KeepUnknowns {
				return nil, nil
			}
			return &id, nil
		}
		pv := resource.NewStringProperty(string(urn))
		return &pv, nil
	}

	pv := resource.NewResourceReferenceProperty(resource.ResourceReference{
		URN:            urn,
		ID:             id,
		PackageVersion: packageVersion,
	})
	return &pv, nil
}

func unmarshalOutputValue(key string, obj map[string]*structpb.Value,
	opts MarshalOptions) (*resource.PropertyValue, error) {

	var out resource.Output
	if value, has := obj["value"]; has {
		element, err := UnmarshalPropertyValue(key, value, opts)
		if err != nil {
			return nil, err
		}
		out.Known = true
		if element != nil {
			out.Element = *element
		}
	}
	if secret, has := obj["secret"]; has {
		b, isBool := secret.Kind.(*structpb.Value_BoolValue)
		if !isBool {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: output value secret flag is not a bool", key)
		}
		out.Secret = b.BoolValue
	}
	if deps, has := obj["dependencies"]; has {
		list, isList := deps.Kind.(*structpb.Value_ListValue)
		if !isList {
			return nil, errors.Wrapf(ErrMalformedWire, "%s: output value dependencies is not a list", key)
		}
		for _, dep := range list.ListValue.GetValues() {
			s, isString := dep.Kind.(*structpb.Value_StringValue)
			if !isString {
				return nil, errors.Wrapf(ErrMalformedWire, "%s: output value dependency is not a string", key)
			}
			urn, err := resource.ParseURN(s.StringValue)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedWire, "%s: %v", key, err)
			}
			out.Dependencies = append(out.Dependencies, urn)
		}
	}

	if !opts.KeepOutputValues {
		// Degrade symmetrically with marshalOutputValue.
		if !out.Known {
			if !opts.KeepUnknowns {
				return nil, nil
			}
			pv := resource.MakeComputed(resource.NewStringProperty(""))
			return &pv, nil
		}
		if out.Secret && opts.KeepSecrets {
			pv := resource.MakeSecret(out.Element)
			return &pv, nil
		}
		return &out.Element, nil
	}

	pv := resource.NewOutputProperty(out)
	return &pv, nil
}

// rawMap converts a structpb field map into the weakly typed map shape used by the asset codec.
func rawMap(obj map[string]*structpb.Value) map[string]interface{} {
	result := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		result[k] = v.AsInterface()
	}
	return result
}
