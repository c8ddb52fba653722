// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsontree models arbitrary JSON values as a closed set of Go
// types: nil, bool, float64, string, []any, and *Object. Objects keep
// their key insertion order so key previews and redaction walks are
// deterministic, which map[string]any cannot guarantee.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Kind classifies a JSON value. The declared order is the fixed type
// precedence used wherever types are listed (typed previews, mixed-type
// summaries).
type Kind string

const (
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// KindOrder is the fixed type precedence list.
var KindOrder = []Kind{KindNumber, KindString, KindBoolean, KindNull, KindObject, KindArray}

// KindOf classifies a value. Booleans are never classified as numbers.
// Unknown Go types classify as object, mirroring a JSON re-encode.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case *Object:
		return KindObject
	case map[string]any:
		return KindObject
	default:
		return KindObject
	}
}

// AsFloat converts any numeric representation to float64. The second
// result is false for non-numeric values (including booleans).
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Object is a JSON object that preserves key insertion order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores a value, appending the key on first insertion.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order. The slice is shared; callers
// must not modify it.
func (o *Object) Keys() []string { return o.keys }

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses JSON into the jsontree representation: objects become
// *Object, arrays []any, numbers float64, plus string/bool/nil.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	v, err := decodeValue(dec, tok)
	if err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding json: trailing data after value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("decoding object key: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("decoding object key: unexpected token %v", keyTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("decoding object value: %w", err)
				}
				val, err := decodeValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, fmt.Errorf("decoding object close: %w", err)
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				valTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("decoding array element: %w", err)
				}
				val, err := decodeValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, fmt.Errorf("decoding array close: %w", err)
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("decoding json: unexpected delimiter %v", t)
		}
	default:
		return tok, nil
	}
}

// Marshal encodes a jsontree value back to JSON, preserving object key
// order via Object.MarshalJSON.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Clone deep-copies a jsontree value so later mutation of the source
// cannot corrupt the copy. Scalars are returned as-is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		out := NewObject()
		for _, key := range t.keys {
			out.Set(key, Clone(t.values[key]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Equal reports deep structural equality. Numbers compare numerically
// regardless of Go representation; object key order is ignored.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindNumber:
		fa, _ := AsFloat(a)
		fb, _ := AsFloat(b)
		return fa == fb
	case KindString:
		return a.(string) == b.(string)
	case KindArray:
		aa, ba := a.([]any), b.([]any)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		oa, aok := a.(*Object)
		ob, bok := b.(*Object)
		if !aok || !bok {
			return false
		}
		if oa.Len() != ob.Len() {
			return false
		}
		for _, key := range oa.keys {
			bv, ok := ob.Get(key)
			if !ok || !Equal(oa.values[key], bv) {
				return false
			}
		}
		return true
	}
	return false
}

// DepthExceeds reports whether v nests deeper than maxDepth. The walk is
// iterative; adversarial nesting cannot blow the call stack.
func DepthExceeds(v any, maxDepth int) bool {
	type frame struct {
		node  any
		depth int
	}
	stack := []frame{{v, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			return true
		}
		switch t := f.node.(type) {
		case *Object:
			for _, key := range t.keys {
				stack = append(stack, frame{t.values[key], f.depth + 1})
			}
		case []any:
			for _, item := range t {
				stack = append(stack, frame{item, f.depth + 1})
			}
		}
	}
	return false
}
