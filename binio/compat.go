package binio

import "github.com/prop-tools/propbin/bin"

// TypeMap converts between the 8-bit wire tag and the logical bin.Type.
// Two generations of the on-disk layout exist; the latest stores logical
// tags verbatim while legacy files use a dense renumbering of the complex
// tags.
type TypeMap interface {
	Name() string
	RawToType(raw uint8) (bin.Type, bool)
	TypeToRaw(t bin.Type) (uint8, bool)
}

type latestMap struct{}

func (latestMap) Name() string { return "bin" }

func (latestMap) RawToType(raw uint8) (bin.Type, bool) {
	t := bin.Type(raw)
	if t.IsPrimitive() {
		return t, t <= bin.MaxPrimitiveType
	}
	return t, t <= bin.MaxComplexType
}

func (latestMap) TypeToRaw(t bin.Type) (uint8, bool) {
	return uint8(t), true
}

// legacy1Map is the first-generation renumbering.  Legacy files have no
// FILE primitive and pack the complex tags densely after the primitives;
// the translation is kept as a fixed table rather than arithmetic.
type legacy1Map struct{}

var legacy1RawToType = map[uint8]bin.Type{
	18: bin.ListType,
	19: bin.PointerType,
	20: bin.EmbedType,
	21: bin.LinkType,
	22: bin.OptionType,
	23: bin.MapType,
	24: bin.FlagType,
}

var legacy1TypeToRaw = func() map[bin.Type]uint8 {
	m := make(map[bin.Type]uint8, len(legacy1RawToType)+1)
	for raw, t := range legacy1RawToType {
		m[t] = raw
	}
	// list2 shares the legacy list tag.
	m[bin.List2Type] = m[bin.ListType]
	return m
}()

func (legacy1Map) Name() string { return "bin-legacy1" }

func (legacy1Map) RawToType(raw uint8) (bin.Type, bool) {
	if t, ok := legacy1RawToType[raw]; ok {
		return t, true
	}
	t := bin.Type(raw)
	if t.IsPrimitive() && t < bin.FileType {
		return t, true
	}
	return t, false
}

func (legacy1Map) TypeToRaw(t bin.Type) (uint8, bool) {
	if raw, ok := legacy1TypeToRaw[t]; ok {
		return raw, true
	}
	if t.IsPrimitive() && t < bin.FileType {
		return uint8(t), true
	}
	return 0, false
}

var (
	// Latest is the identity mapping of the current layout generation.
	Latest TypeMap = latestMap{}
	// Legacy1 remaps the older dense tag numbering.
	Legacy1 TypeMap = legacy1Map{}
)

// TypeMaps lists the known wire generations, newest first.
func TypeMaps() []TypeMap {
	return []TypeMap{Latest, Legacy1}
}

// TypeMapByName resolves a generation by its registry name.
func TypeMapByName(name string) (TypeMap, bool) {
	for _, tm := range TypeMaps() {
		if tm.Name() == name {
			return tm, true
		}
	}
	return nil, false
}
