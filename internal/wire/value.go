package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Value is the schema-free dynamic value used to pass OpenAI tool JSON
// schemas (and other ad-hoc JSON) across the wire. It mirrors the shape
// protobuf's own well-known Struct/Value types use for the same problem:
// a oneof over {null, bool, number, string, list, object}, field numbers
// 1 through 6 respectively. Object keys preserve the caller's order rather
// than a map, since callers may depend on stable JSON schema ordering.
type Value struct {
	Kind ValueKind

	Bool   bool
	Number float64
	Str    string
	List   []Value
	Object []ValueEntry
}

type ValueEntry struct {
	Key   string
	Value Value
}

type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

const (
	fieldNull   = 1
	fieldBool   = 2
	fieldNumber = 3
	fieldString = 4
	fieldList   = 5
	fieldObject = 6

	fieldListItem     = 1 // within the ListValue body
	fieldObjectEntry  = 1 // within the Struct body
	fieldEntryKey     = 1
	fieldEntryValue   = 2
)

// NullValue, BoolValue, NumberValue, StringValue, ListValueOf, and
// ObjectValueOf are convenience constructors.
func NullValue() Value                    { return Value{Kind: KindNull} }
func BoolValue(b bool) Value              { return Value{Kind: KindBool, Bool: b} }
func NumberValue(n float64) Value         { return Value{Kind: KindNumber, Number: n} }
func StringValue(s string) Value          { return Value{Kind: KindString, Str: s} }
func ListValueOf(items []Value) Value     { return Value{Kind: KindList, List: items} }
func ObjectValueOf(ent []ValueEntry) Value { return Value{Kind: KindObject, Object: ent} }

// Encode appends the wire encoding of v. Unlike scalar message fields
// elsewhere in the codec, a Value's variant is always emitted (even
// KindNull, even an empty object) because the oneof tag itself carries
// meaning the default-omission rule would otherwise erase.
func Encode(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		buf = AppendTag(buf, fieldNull, Varint)
		buf = AppendVarint(buf, 1)
	case KindBool:
		buf = AppendTag(buf, fieldBool, Varint)
		if v.Bool {
			buf = AppendVarint(buf, 1)
		} else {
			buf = AppendVarint(buf, 0)
		}
	case KindNumber:
		var bits [8]byte
		binary.LittleEndian.PutUint64(bits[:], math.Float64bits(v.Number))
		buf = AppendBytesField(buf, fieldNumber, bits[:])
	case KindString:
		buf = AppendTag(buf, fieldString, Len)
		buf = appendLenPrefixed(buf, []byte(v.Str))
	case KindList:
		var body []byte
		for _, item := range v.List {
			itemBody := Encode(nil, item)
			body = AppendMessageField(body, fieldListItem, itemBody)
		}
		buf = AppendTag(buf, fieldList, Len)
		buf = appendLenPrefixed(buf, body)
	case KindObject:
		var body []byte
		for _, e := range v.Object {
			var entryBody []byte
			entryBody = AppendStringField(entryBody, fieldEntryKey, e.Key)
			entryBody = AppendMessageField(entryBody, fieldEntryValue, Encode(nil, e.Value))
			body = AppendMessageField(body, fieldObjectEntry, entryBody)
		}
		buf = AppendTag(buf, fieldObject, Len)
		buf = appendLenPrefixed(buf, body)
	}
	return buf
}

func appendLenPrefixed(buf, b []byte) []byte {
	buf = AppendVarint(buf, uint64(len(b)))
	buf = append(buf, b...)
	return buf
}

// Decode parses a single Value message body (the bytes inside the LEN
// payload that carried the Value, or a top-level buffer holding exactly
// one Value's fields).
func Decode(buf []byte) (Value, error) {
	fields, err := ParseFields(buf)
	if err != nil {
		return Value{}, err
	}
	if len(fields) == 0 {
		return NullValue(), nil
	}
	f := fields[len(fields)-1] // oneof: last writer wins if duplicated
	switch f.Number {
	case fieldNull:
		return NullValue(), nil
	case fieldBool:
		return BoolValue(f.GetBool()), nil
	case fieldNumber:
		if len(f.Payload) != 8 {
			return Value{}, fmt.Errorf("wire: number value must be 8 bytes, got %d", len(f.Payload))
		}
		bits := binary.LittleEndian.Uint64(f.Payload)
		return NumberValue(math.Float64frombits(bits)), nil
	case fieldString:
		return StringValue(f.GetString()), nil
	case fieldList:
		inner, err := ParseFields(f.Payload)
		if err != nil {
			return Value{}, err
		}
		var items []Value
		for _, itemField := range inner {
			if itemField.Number != fieldListItem {
				continue
			}
			item, err := Decode(itemField.Payload)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return ListValueOf(items), nil
	case fieldObject:
		inner, err := ParseFields(f.Payload)
		if err != nil {
			return Value{}, err
		}
		var entries []ValueEntry
		for _, entryField := range inner {
			if entryField.Number != fieldObjectEntry {
				continue
			}
			entryParts, err := ParseFields(entryField.Payload)
			if err != nil {
				return Value{}, err
			}
			var entry ValueEntry
			for _, part := range entryParts {
				switch part.Number {
				case fieldEntryKey:
					entry.Key = part.GetString()
				case fieldEntryValue:
					v, err := Decode(part.Payload)
					if err != nil {
						return Value{}, err
					}
					entry.Value = v
				}
			}
			entries = append(entries, entry)
		}
		return ObjectValueOf(entries), nil
	default:
		return NullValue(), nil
	}
}

// FromJSON converts a parsed JSON value (as produced by encoding/json's
// json.Unmarshal into `any`, or json.Decoder with UseNumber) into a Value.
// Object key order from map[string]any is not stable; callers that need
// order preservation should build Value trees directly rather than routing
// through a Go map.
func FromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return NullValue()
		}
		return NumberValue(f)
	case string:
		return StringValue(t)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromJSON(item))
		}
		return ListValueOf(items)
	case map[string]any:
		entries := make([]ValueEntry, 0, len(t))
		for k, val := range t {
			entries = append(entries, ValueEntry{Key: k, Value: FromJSON(val)})
		}
		return ObjectValueOf(entries)
	default:
		return NullValue()
	}
}

// ToJSON converts a Value back into plain Go values suitable for
// encoding/json.Marshal.
func ToJSON(v Value) any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindList:
		out := make([]any, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, ToJSON(item))
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for _, e := range v.Object {
			out[e.Key] = ToJSON(e.Value)
		}
		return out
	default:
		return nil
	}
}
