package binio

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

func TestJSONRoundTrip(t *testing.T) {
	b := sampleBin()
	data, err := WriteJSON(b, 2)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got := &bin.Bin{}
	if err := ReadJSON(got, data); err != nil {
		t.Fatalf("ReadJSON: %v\n%s", err, data)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONHashShapes(t *testing.T) {
	b := &bin.Bin{}
	b.Set("type", &bin.String{Value: "PROP"})
	b.Set("version", &bin.U32{Value: 1})
	entry := &bin.Embed{Name: hashes.NewFNV1a("Named")}
	entry.Items = append(entry.Items,
		bin.Field{Key: hashes.NewFNV1a("known"), Value: &bin.Hash{Value: hashes.NewFNV1a("value")}},
		bin.Field{Key: hashes.FNV1aFrom(0x1234), Value: &bin.Hash{Value: hashes.FNV1aFrom(0x5678)}},
	)
	b.Set("entries", &bin.Map{
		KeyType:   bin.HashType,
		ValueType: bin.EmbedType,
		Items:     bin.PairList{{Key: &bin.Hash{Value: hashes.NewFNV1a("Entry")}, Value: entry}},
	})

	data, err := WriteJSON(b, 0)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	// Recovered strings serialize as strings, bare hashes as numbers.
	if !strings.Contains(string(data), `"name":"Named"`) {
		t.Errorf("named hash must serialize as a string: %s", data)
	}
	if !strings.Contains(string(data), `"key":4660`) {
		t.Errorf("bare hash must serialize as a number: %s", data)
	}

	got := &bin.Bin{}
	if err := ReadJSON(got, data); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	gotEntry := got.Get("entries").(*bin.Map).Items[0].Value.(*bin.Embed)
	if gotEntry.Name.Str() != "Named" {
		t.Errorf("name string lost: %+v", gotEntry.Name)
	}
}

func TestJSONSectionOrderPreserved(t *testing.T) {
	b := sampleBin()
	data, err := WriteJSON(b, 2)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got := &bin.Bin{}
	if err := ReadJSON(got, data); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	for i := range b.Sections {
		if got.Sections[i].Name != b.Sections[i].Name {
			t.Fatalf("section %d = %q, want %q", i, got.Sections[i].Name, b.Sections[i].Name)
		}
	}
}

func TestJSONReadErrorsCarryPath(t *testing.T) {
	input := `{"entries": {"type": "map", "value": {
		"keyType": "hash", "valueType": "embed",
		"items": [{"key": 1, "value": {"name": 2, "items": [{"key": 3, "type": "u32", "value": "oops"}]}}]
	}}}`
	b := &bin.Bin{}
	err := ReadJSON(b, []byte(input))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrFormat) {
		t.Errorf("error is not ErrFormat: %v", err)
	}
	want := "bin['entries'].value.items[0].value.items[0].value"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q is missing path %q", err.Error(), want)
	}
}

func TestJSONReadRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not object", `[1]`},
		{"missing type", `{"a": {"value": 1}}`},
		{"missing value", `{"a": {"type": "u32"}}`},
		{"unknown type", `{"a": {"type": "quaternion", "value": 1}}`},
		{"vector too long", `{"a": {"type": "vec2", "value": [1,2,3]}}`},
		{"list without valueType", `{"a": {"type": "list", "value": {"items": []}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &bin.Bin{}
			if err := ReadJSON(b, []byte(tt.input)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestJSONInfoShape(t *testing.T) {
	b := &bin.Bin{}
	b.Set("type", &bin.String{Value: "PROP"})
	entry := &bin.Embed{Name: hashes.NewFNV1a("Champion")}
	entry.Items = append(entry.Items,
		bin.Field{Key: hashes.NewFNV1a("health"), Value: &bin.F32{Value: 550}},
		bin.Field{Key: hashes.FNV1aFrom(0xAB), Value: &bin.Option{ValueType: bin.U32Type}},
		bin.Field{Key: hashes.NewFNV1a("tags"), Value: &bin.List{
			ValueType: bin.StringType,
			Items:     bin.ElementList{&bin.String{Value: "fighter"}},
		}},
	)
	b.Set("entries", &bin.Map{
		KeyType:   bin.HashType,
		ValueType: bin.EmbedType,
		Items:     bin.PairList{{Key: &bin.Hash{Value: hashes.FNV1aFrom(0xC0FFEE)}, Value: entry}},
	})

	data, err := WriteJSONInfo(b, 2)
	if err != nil {
		t.Fatalf("WriteJSONInfo: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("info output is not valid json: %v\n%s", err, data)
	}
	entries := doc["entries"].(map[string]any)
	// Map keys flatten to their printed form; structs carry ~class.
	inner, ok := entries["0xc0ffee"].(map[string]any)
	if !ok {
		t.Fatalf("entries = %#v", entries)
	}
	if inner["~class"] != "Champion" {
		t.Errorf("~class = %v", inner["~class"])
	}
	if inner["health"] != float64(550) {
		t.Errorf("health = %v", inner["health"])
	}
	if v, present := inner["tags"]; !present {
		t.Error("tags missing")
	} else if list, ok := v.([]any); !ok || list[0] != "fighter" {
		t.Errorf("tags = %#v", v)
	}
	if v, present := inner["0xab"]; !present || v != nil {
		t.Errorf("empty option must flatten to null, got %#v", v)
	}
}

func TestJSONInfoIsWriteOnly(t *testing.T) {
	f, err := Lookup("info")
	if err != nil {
		t.Fatal(err)
	}
	b := &bin.Bin{}
	if err := f.Read(b, []byte(`{}`)); err == nil {
		t.Error("info format must refuse to read")
	}
}
