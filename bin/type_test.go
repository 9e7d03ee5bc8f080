package bin

import "testing"

func TestTypeNamesRoundTrip(t *testing.T) {
	for _, tt := range Types() {
		got, err := ParseType(tt.String())
		if err != nil {
			t.Fatalf("ParseType(%q): %v", tt.String(), err)
		}
		if got != tt {
			t.Errorf("ParseType(%q) = %v, want %v", tt.String(), got, tt)
		}
	}
	if _, err := ParseType("quaternion"); err == nil {
		t.Error("ParseType must reject unknown names")
	}
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		t         Type
		primitive bool
		container bool
		cat       Category
	}{
		{NoneType, true, false, NoneCategory},
		{BoolType, true, false, NumberCategory},
		{U64Type, true, false, NumberCategory},
		{F32Type, true, false, NumberCategory},
		{Mtx44Type, true, false, VectorCategory},
		{RGBAType, true, false, VectorCategory},
		{StringType, true, false, StringCategory},
		{HashType, true, false, HashCategory},
		{FileType, true, false, HashCategory},
		{ListType, false, true, ListCategory},
		{List2Type, false, true, ListCategory},
		{OptionType, false, true, OptionCategory},
		{MapType, false, true, MapCategory},
		{PointerType, false, false, ClassCategory},
		{EmbedType, false, false, ClassCategory},
		{LinkType, false, false, HashCategory},
		{FlagType, false, false, NumberCategory},
	}
	for _, tt := range tests {
		if got := tt.t.IsPrimitive(); got != tt.primitive {
			t.Errorf("%v.IsPrimitive() = %v, want %v", tt.t, got, tt.primitive)
		}
		if got := tt.t.IsContainer(); got != tt.container {
			t.Errorf("%v.IsContainer() = %v, want %v", tt.t, got, tt.container)
		}
		if got := tt.t.Category(); got != tt.cat {
			t.Errorf("%v.Category() = %v, want %v", tt.t, got, tt.cat)
		}
	}
}

func TestTagValues(t *testing.T) {
	if uint8(FileType) != 18 {
		t.Errorf("FileType = %d, want 18", FileType)
	}
	if uint8(ListType) != 0x80 || uint8(FlagType) != 0x87 {
		t.Errorf("complex range = [%#x, %#x], want [0x80, 0x87]", uint8(ListType), uint8(FlagType))
	}
}

func TestNewCoversAllTypes(t *testing.T) {
	for _, tt := range Types() {
		v := New(tt)
		if v == nil {
			t.Fatalf("New(%v) = nil", tt)
		}
		if v.Type() != tt {
			t.Errorf("New(%v).Type() = %v", tt, v.Type())
		}
	}
	if New(Type(0x55)) != nil {
		t.Error("New of an unknown tag must be nil")
	}
}

func TestBinSections(t *testing.T) {
	b := &Bin{}
	b.Set("type", &String{Value: "PROP"})
	b.Set("version", &U32{Value: 1})
	b.Set("type", &String{Value: "PTCH"})
	if len(b.Sections) != 2 {
		t.Fatalf("Set must replace in place, have %d sections", len(b.Sections))
	}
	if b.Sections[0].Name != "type" || b.Sections[1].Name != "version" {
		t.Errorf("section order not preserved: %v", []string{b.Sections[0].Name, b.Sections[1].Name})
	}
	if got := b.Get("type").(*String).Value; got != "PTCH" {
		t.Errorf("Get(type) = %q", got)
	}
	if b.Get("entries") != nil {
		t.Error("Get of a missing section must be nil")
	}
}
