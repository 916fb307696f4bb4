package task

import (
	"bytes"
	"encoding/gob"
	"reflect"
)

// Transport serializes captured task arguments and memoized values. New
// uses it to prove, at construction time, that every argument survives a
// marshal/unmarshal round trip; persistent memoization strategies use it
// to encode stored values.
type Transport interface {
	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into the value pointed to by into.
	Unmarshal(data []byte, into any) error
}

// DefaultTransport is the Transport used when a Def does not set one.
var DefaultTransport Transport = GobTransport{}

// GobTransport implements Transport with encoding/gob. Values are encoded
// as interface values so they can be decoded without knowing the concrete
// type up front; struct and pointer arguments must therefore be registered
// with gob.Register before use. Basic types need no registration.
type GobTransport struct{}

// Marshal encodes v as a gob interface value.
func (GobTransport) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the value pointed to by into, typically a
// *any produced by Marshal's interface encoding.
func (GobTransport) Unmarshal(data []byte, into any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(into)
}

// RoundTrip marshals v and unmarshals it back, returning the decoded copy
// so callers can compare it against the original.
func RoundTrip(transport Transport, v any) (any, error) {
	data, err := transport.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := transport.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transportable reports whether v survives a round trip through transport
// to a deeply equal value.
func Transportable(transport Transport, v any) bool {
	out, err := RoundTrip(transport, v)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(v, out)
}
