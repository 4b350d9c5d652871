// Package jsoncodec is the single place the module's JSON codec is
// configured. All object and event serialization goes through it, so the
// wire format stays byte-compatible with encoding/json regardless of the
// backing implementation.
package jsoncodec

import (
	"github.com/bytedance/sonic"
)

// cfg selects sonic in standard-library compatible mode. Sorted map keys
// and HTML escaping match encoding/json output exactly.
var cfg = sonic.ConfigStd

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return cfg.Marshal(v)
}

// MarshalIndent encodes v as indented JSON, for diagnostics and examples.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return cfg.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return cfg.Unmarshal(data, v)
}
