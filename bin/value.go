package bin

import "github.com/prop-tools/propbin/hashes"

// Value is the tagged sum of the 27 variants.  Concrete values are always
// handled through pointers so containers can be edited in place and so deep
// nesting costs one box per level regardless of variant size.
type Value interface {
	Type() Type
}

// ElementList is the ordered payload of lists and options.
type ElementList []Value

// Pair is one ordered entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// PairList is the ordered payload of maps.
type PairList []Pair

// Field is one named member of an Embed or Pointer.
type Field struct {
	Key   hashes.FNV1a
	Value Value
}

// FieldList is the ordered payload of embeds and pointers.
type FieldList []Field

type None struct{}

type Bool struct{ Value bool }

type I8 struct{ Value int8 }

type U8 struct{ Value uint8 }

type I16 struct{ Value int16 }

type U16 struct{ Value uint16 }

type I32 struct{ Value int32 }

type U32 struct{ Value uint32 }

type I64 struct{ Value int64 }

type U64 struct{ Value uint64 }

type F32 struct{ Value float32 }

type Vec2 struct{ Value [2]float32 }

type Vec3 struct{ Value [3]float32 }

type Vec4 struct{ Value [4]float32 }

// Mtx44 is 16 floats printed as four rows of four.
type Mtx44 struct{ Value [16]float32 }

type RGBA struct{ Value [4]uint8 }

// String carries raw bytes; no UTF-8 validation happens anywhere.
type String struct{ Value string }

type Hash struct{ Value hashes.FNV1a }

// File is a 64-bit path hash.
type File struct{ Value hashes.XXH64 }

// Link is a cross-file reference; same storage as Hash.
type Link struct{ Value hashes.FNV1a }

// List is an ordered sequence of values of one declared element type, which
// must not itself be a container.
type List struct {
	ValueType Type
	Items     ElementList
}

// List2 is a distinct wire tag with List semantics, preserved so inputs
// using either tag round-trip bit for bit.
type List2 struct {
	ValueType Type
	Items     ElementList
}

// Option holds zero or one value of a declared element type.
type Option struct {
	ValueType Type
	Items     ElementList
}

// Map is an ordered sequence of key/value pairs.  The key type must be
// primitive and the value type must not be a container.
type Map struct {
	KeyType   Type
	ValueType Type
	Items     PairList
}

// Pointer is a nullable named struct; a zero name hash is the null
// reference.
type Pointer struct {
	Name  hashes.FNV1a
	Items FieldList
}

// Embed is an inline named struct.
type Embed struct {
	Name  hashes.FNV1a
	Items FieldList
}

// Flag is a distinct wire tag for booleans.
type Flag struct{ Value bool }

func (*None) Type() Type    { return NoneType }
func (*Bool) Type() Type    { return BoolType }
func (*I8) Type() Type      { return I8Type }
func (*U8) Type() Type      { return U8Type }
func (*I16) Type() Type     { return I16Type }
func (*U16) Type() Type     { return U16Type }
func (*I32) Type() Type     { return I32Type }
func (*U32) Type() Type     { return U32Type }
func (*I64) Type() Type     { return I64Type }
func (*U64) Type() Type     { return U64Type }
func (*F32) Type() Type     { return F32Type }
func (*Vec2) Type() Type    { return Vec2Type }
func (*Vec3) Type() Type    { return Vec3Type }
func (*Vec4) Type() Type    { return Vec4Type }
func (*Mtx44) Type() Type   { return Mtx44Type }
func (*RGBA) Type() Type    { return RGBAType }
func (*String) Type() Type  { return StringType }
func (*Hash) Type() Type    { return HashType }
func (*File) Type() Type    { return FileType }
func (*Link) Type() Type    { return LinkType }
func (*List) Type() Type    { return ListType }
func (*List2) Type() Type   { return List2Type }
func (*Option) Type() Type  { return OptionType }
func (*Map) Type() Type     { return MapType }
func (*Pointer) Type() Type { return PointerType }
func (*Embed) Type() Type   { return EmbedType }
func (*Flag) Type() Type    { return FlagType }

// New returns the zero value of the given type, or nil for an unknown tag.
func New(t Type) Value {
	switch t {
	case NoneType:
		return &None{}
	case BoolType:
		return &Bool{}
	case I8Type:
		return &I8{}
	case U8Type:
		return &U8{}
	case I16Type:
		return &I16{}
	case U16Type:
		return &U16{}
	case I32Type:
		return &I32{}
	case U32Type:
		return &U32{}
	case I64Type:
		return &I64{}
	case U64Type:
		return &U64{}
	case F32Type:
		return &F32{}
	case Vec2Type:
		return &Vec2{}
	case Vec3Type:
		return &Vec3{}
	case Vec4Type:
		return &Vec4{}
	case Mtx44Type:
		return &Mtx44{}
	case RGBAType:
		return &RGBA{}
	case StringType:
		return &String{}
	case HashType:
		return &Hash{}
	case FileType:
		return &File{}
	case ListType:
		return &List{}
	case List2Type:
		return &List2{}
	case PointerType:
		return &Pointer{}
	case EmbedType:
		return &Embed{}
	case LinkType:
		return &Link{}
	case OptionType:
		return &Option{}
	case MapType:
		return &Map{}
	case FlagType:
		return &Flag{}
	}
	return nil
}

// IsNull reports whether p is the null reference.
func (p *Pointer) IsNull() bool {
	return p.Name.Hash() == 0 && p.Name.Str() == ""
}

// FindField returns the first field whose key hash matches, or nil.
func (p *Pointer) FindField(key hashes.FNV1a) *Field {
	return findField(p.Items, key)
}

// FindField returns the first field whose key hash matches, or nil.
func (e *Embed) FindField(key hashes.FNV1a) *Field {
	return findField(e.Items, key)
}

func findField(items FieldList, key hashes.FNV1a) *Field {
	for i := range items {
		if items[i].Key.Hash() == key.Hash() {
			return &items[i]
		}
	}
	return nil
}
