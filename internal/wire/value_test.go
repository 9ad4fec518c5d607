package wire

import "testing"

func TestValueRoundTrip(t *testing.T) {
	v := ObjectValueOf([]ValueEntry{
		{Key: "type", Value: StringValue("object")},
		{Key: "count", Value: NumberValue(3.5)},
		{Key: "enabled", Value: BoolValue(true)},
		{Key: "tags", Value: ListValueOf([]Value{StringValue("a"), StringValue("b")})},
		{Key: "nothing", Value: NullValue()},
	})

	enc := Encode(nil, v)
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != KindObject || len(got.Object) != len(v.Object) {
		t.Fatalf("round trip shape mismatch: got %+v", got)
	}
	for i, e := range v.Object {
		if got.Object[i].Key != e.Key {
			t.Fatalf("entry %d key = %q, want %q (order not preserved)", i, got.Object[i].Key, e.Key)
		}
	}
}

func TestValueNullAlwaysEmitted(t *testing.T) {
	enc := Encode(nil, NullValue())
	if len(enc) == 0 {
		t.Fatal("encoding a null Value must still emit the oneof tag")
	}
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != KindNull {
		t.Fatalf("got kind %v, want KindNull", got.Kind)
	}
}

func TestValueFromJSONToJSON(t *testing.T) {
	in := map[string]any{
		"a": float64(1),
		"b": "two",
		"c": []any{float64(1), float64(2)},
		"d": nil,
		"e": true,
	}
	v := FromJSON(in)
	enc := Encode(nil, v)
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, ok := ToJSON(got).(map[string]any)
	if !ok {
		t.Fatalf("ToJSON did not produce a map: %T", ToJSON(got))
	}
	for k, want := range in {
		if got, ok := out[k]; !ok {
			t.Fatalf("missing key %q in round-tripped object", k)
		} else if k != "c" && k != "d" && got != want {
			t.Fatalf("key %q = %v, want %v", k, got, want)
		}
	}
}
