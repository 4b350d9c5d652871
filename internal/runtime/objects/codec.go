package objects

import (
	"encoding/json"
	"fmt"

	"github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/jsoncodec"
)

// discriminator is the probe decoded first to pick the concrete shape.
type discriminator struct {
	CoreType   CoreType `json:"coreType"`
	ObjectType string   `json:"objectType"`
}

// DecodeObject reconstructs a single domain object from its wire form,
// resolving the concrete shape through the registry's two-stage lookup.
// A nil registry restricts resolution to the built-in family.
func DecodeObject(reg *Registry, data []byte) (Object, error) {
	var disc discriminator
	if err := jsoncodec.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecodingFailure, err)
	}

	factory, ok := reg.resolve(disc.ObjectType, disc.CoreType)
	if !ok {
		return nil, fmt.Errorf("%w: no shape registered for objectType %q, coreType %q",
			errors.ErrDecodingFailure, disc.ObjectType, disc.CoreType)
	}

	obj := factory()
	if err := jsoncodec.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("%w: structural decode of %q: %v",
			errors.ErrDecodingFailure, disc.ObjectType, err)
	}
	return obj, nil
}

// DecodeObjectAs decodes a single object and requires it to be of the
// concrete shape T. A resolvable object of a different shape is a decoding
// failure, not a silent nil.
func DecodeObjectAs[T Object](reg *Registry, data []byte) (T, error) {
	var zero T
	obj, err := DecodeObject(reg, data)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: decoded %T is not the requested shape %T",
			errors.ErrDecodingFailure, obj, zero)
	}
	return typed, nil
}

// DecodeObjects reconstructs a heterogeneous ordered sequence of objects.
// The decode is all-or-nothing: a single unresolvable element fails the
// whole sequence, elements are never silently skipped.
func DecodeObjects(reg *Registry, data []byte) ([]Object, error) {
	var raw []json.RawMessage
	if err := jsoncodec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecodingFailure, err)
	}

	result := make([]Object, 0, len(raw))
	for i, elem := range raw {
		obj, err := DecodeObject(reg, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		result = append(result, obj)
	}
	return result, nil
}

// EncodeObject serializes a domain object including its discriminator
// fields. The registry is never consulted on the encode path.
func EncodeObject(obj Object) ([]byte, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: object must not be nil", errors.ErrInvalidArgument)
	}
	return jsoncodec.Marshal(obj)
}
