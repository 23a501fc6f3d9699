package wave

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Metadata is an open string-keyed bag of values attached to a pattern.
// Values are restricted to a small set of kinds (string, number, bool,
// nested map) so that persistence round-trips are lossless.
type Metadata map[string]Value

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindMap
)

// Value is a tagged union of the metadata kinds.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	m    Metadata
}

// String creates a string metadata value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric metadata value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool creates a boolean metadata value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Map creates a nested-map metadata value.
func Map(m Metadata) Value {
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant held by the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsString returns the string variant and whether the value holds one.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric variant and whether the value holds one.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean variant and whether the value holds one.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsMap returns the nested-map variant and whether the value holds one.
func (v Value) AsMap() (Metadata, bool) {
	return v.m, v.kind == KindMap
}

// Equal reports whether two values hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindMap:
		return v.m.Equal(o.m)
	}
	return false
}

// Equal reports whether two metadata maps hold the same keys and values.
func (m Metadata) Equal(o Metadata) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		if v.kind == KindMap {
			v.m = v.m.Clone()
		}
		out[k] = v
	}
	return out
}

// MarshalJSON emits the natural JSON form of the value (no type tags).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		return json.Marshal(v.m)
	}
	return nil, fmt.Errorf("unknown metadata value kind %d", v.kind)
}

// UnmarshalJSON infers the variant from the JSON type. Numbers always decode
// as float64; arrays and nulls are rejected to keep the bag round-trippable.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	case map[string]any:
		// Re-decode through Metadata so nesting is validated recursively.
		var m Metadata
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Map(m)
	default:
		return fmt.Errorf("unsupported metadata value type %T", raw)
	}
	return nil
}

// Keys returns the metadata keys in sorted order, for stable output.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
