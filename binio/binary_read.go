package binio

import (
	"encoding/binary"
	"math"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// ReadBinary parses a PROP or PTCH buffer into b using the given wire
// generation.  On failure the returned error renders the failed assertion
// sites in reverse order with their byte offsets.
func ReadBinary(b *bin.Bin, data []byte, tm TypeMap) error {
	br := &binReader{r: byteReader{data: data, tm: tm}}
	b.Reset()
	return br.readSections(b)
}

type byteReader struct {
	data []byte
	pos  int
	tm   TypeMap
}

func (r *byteReader) left() int { return len(r.data) - r.pos }

func (r *byteReader) take(n int) ([]byte, bool) {
	if n < 0 || r.left() < n {
		return nil, false
	}
	d := r.data[r.pos : r.pos+n]
	r.pos += n
	return d, true
}

func (r *byteReader) u8(v *uint8) bool {
	d, ok := r.take(1)
	if !ok {
		return false
	}
	*v = d[0]
	return true
}

func (r *byteReader) u16(v *uint16) bool {
	d, ok := r.take(2)
	if !ok {
		return false
	}
	*v = binary.LittleEndian.Uint16(d)
	return true
}

func (r *byteReader) u32(v *uint32) bool {
	d, ok := r.take(4)
	if !ok {
		return false
	}
	*v = binary.LittleEndian.Uint32(d)
	return true
}

func (r *byteReader) u64(v *uint64) bool {
	d, ok := r.take(8)
	if !ok {
		return false
	}
	*v = binary.LittleEndian.Uint64(d)
	return true
}

func (r *byteReader) f32(v *float32) bool {
	var u uint32
	if !r.u32(&u) {
		return false
	}
	*v = math.Float32frombits(u)
	return true
}

// str reads a u16 length prefix followed by raw bytes.
func (r *byteReader) str(v *string) bool {
	var n uint16
	if !r.u16(&n) {
		return false
	}
	d, ok := r.take(int(n))
	if !ok {
		return false
	}
	*v = string(d)
	return true
}

func (r *byteReader) fnv1a(v *hashes.FNV1a) bool {
	var h uint32
	if !r.u32(&h) {
		return false
	}
	*v = hashes.FNV1aFrom(h)
	return true
}

func (r *byteReader) xxh64(v *hashes.XXH64) bool {
	var h uint64
	if !r.u64(&h) {
		return false
	}
	*v = hashes.XXH64From(h)
	return true
}

func (r *byteReader) typ(v *bin.Type) bool {
	var raw uint8
	if !r.u8(&raw) {
		return false
	}
	t, ok := r.tm.RawToType(raw)
	if !ok {
		return false
	}
	*v = t
	return true
}

type binReader struct {
	r byteReader
}

func (br *binReader) fail(msg string, off int) error {
	return newTrace(ErrFormat, br.r.data, false).push(msg, off)
}

func (br *binReader) readSections(b *bin.Bin) error {
	at := br.r.pos
	magic, ok := br.r.take(4)
	if !ok {
		return br.fail("read(magic)", at)
	}
	isPatch := false
	if string(magic) == "PTCH" {
		var unused uint64
		if at = br.r.pos; !br.r.u64(&unused) {
			return br.fail("read(unk)", at)
		}
		at = br.r.pos
		if magic, ok = br.r.take(4); !ok {
			return br.fail("read(magic)", at)
		}
		b.Set("type", &bin.String{Value: "PTCH"})
		isPatch = true
	} else {
		b.Set("type", &bin.String{Value: "PROP"})
	}
	if string(magic) != "PROP" {
		return br.fail(`magic == "PROP"`, at)
	}
	var version uint32
	if at = br.r.pos; !br.r.u32(&version) {
		return br.fail("read(version)", at)
	}
	b.Set("version", &bin.U32{Value: version})

	if version >= 2 {
		at = br.r.pos
		if err := br.readLinked(b); err != nil {
			return rethrow(err, "read_linked()", at)
		}
	}
	at = br.r.pos
	if err := br.readEntries(b); err != nil {
		return rethrow(err, "read_entries()", at)
	}
	if isPatch {
		at = br.r.pos
		if err := br.readPatches(b); err != nil {
			return rethrow(err, "read_patches()", at)
		}
	}
	if br.r.left() != 0 {
		return br.fail("cursor == end", br.r.pos)
	}
	return nil
}

func (br *binReader) readLinked(b *bin.Bin) error {
	linked := &bin.List{ValueType: bin.StringType}
	var count uint32
	at := br.r.pos
	if !br.r.u32(&count) {
		return br.fail("read(linkedFilesCount)", at)
	}
	for i := uint32(0); i != count; i++ {
		var s string
		if at = br.r.pos; !br.r.str(&s) {
			return br.fail("read(linked)", at)
		}
		linked.Items = append(linked.Items, &bin.String{Value: s})
	}
	b.Set("linked", linked)
	return nil
}

func (br *binReader) readEntries(b *bin.Bin) error {
	var count uint32
	at := br.r.pos
	if !br.r.u32(&count) {
		return br.fail("read(entryCount)", at)
	}
	if at = br.r.pos; br.r.left() < 4*int(count) {
		return br.fail("read(entryNameHashes)", at)
	}
	nameHashes := make([]uint32, count)
	for i := range nameHashes {
		br.r.u32(&nameHashes[i])
	}
	entries := &bin.Map{KeyType: bin.HashType, ValueType: bin.EmbedType}
	for _, nameHash := range nameHashes {
		at = br.r.pos
		key, entry, err := br.readEntry(nameHash)
		if err != nil {
			return rethrow(err, "read_entry()", at)
		}
		entries.Items = append(entries.Items, bin.Pair{Key: key, Value: entry})
	}
	b.Set("entries", entries)
	return nil
}

func (br *binReader) readEntry(nameHash uint32) (*bin.Hash, *bin.Embed, error) {
	entry := &bin.Embed{Name: hashes.FNV1aFrom(nameHash)}
	var length uint32
	at := br.r.pos
	if !br.r.u32(&length) {
		return nil, nil, br.fail("read(entryLength)", at)
	}
	start := br.r.pos
	key := &bin.Hash{}
	if at = br.r.pos; !br.r.fnv1a(&key.Value) {
		return nil, nil, br.fail("read(entryKeyHash)", at)
	}
	var count uint16
	if at = br.r.pos; !br.r.u16(&count) {
		return nil, nil, br.fail("read(count)", at)
	}
	for i := uint16(0); i != count; i++ {
		at = br.r.pos
		field, err := br.readField()
		if err != nil {
			return nil, nil, rethrow(err, "read_field()", at)
		}
		entry.Items = append(entry.Items, field)
	}
	if br.r.pos != start+int(length) {
		return nil, nil, br.fail("position() == position + entryLength", br.r.pos)
	}
	return key, entry, nil
}

func (br *binReader) readField() (bin.Field, error) {
	var field bin.Field
	at := br.r.pos
	if !br.r.fnv1a(&field.Key) {
		return field, br.fail("read(name)", at)
	}
	var t bin.Type
	if at = br.r.pos; !br.r.typ(&t) {
		return field, br.fail("read(type)", at)
	}
	at = br.r.pos
	v, err := br.readValueOf(t)
	if err != nil {
		return field, rethrow(err, "read_value_of(item, type)", at)
	}
	field.Value = v
	return field, nil
}

func (br *binReader) readPatches(b *bin.Bin) error {
	var count uint32
	at := br.r.pos
	if !br.r.u32(&count) {
		return br.fail("read(patchCount)", at)
	}
	patches := &bin.Map{KeyType: bin.HashType, ValueType: bin.EmbedType}
	for i := uint32(0); i != count; i++ {
		at = br.r.pos
		key, patch, err := br.readPatch()
		if err != nil {
			return rethrow(err, "read_patch()", at)
		}
		patches.Items = append(patches.Items, bin.Pair{Key: key, Value: patch})
	}
	b.Set("patches", patches)
	return nil
}

func (br *binReader) readPatch() (*bin.Hash, *bin.Embed, error) {
	key := &bin.Hash{}
	at := br.r.pos
	if !br.r.fnv1a(&key.Value) {
		return nil, nil, br.fail("read(patchKeyHash)", at)
	}
	var length uint32
	if at = br.r.pos; !br.r.u32(&length) {
		return nil, nil, br.fail("read(patchLength)", at)
	}
	start := br.r.pos
	var t bin.Type
	if at = br.r.pos; !br.r.typ(&t) {
		return nil, nil, br.fail("read(type)", at)
	}
	var path string
	if at = br.r.pos; !br.r.str(&path) {
		return nil, nil, br.fail("read(name)", at)
	}
	at = br.r.pos
	v, err := br.readValueOf(t)
	if err != nil {
		return nil, nil, rethrow(err, "read_value_of(value, type)", at)
	}
	if br.r.pos != start+int(length) {
		return nil, nil, br.fail("position() == position + patchLength", br.r.pos)
	}
	patch := &bin.Embed{Name: hashes.NewFNV1a("patch")}
	patch.Items = append(patch.Items,
		bin.Field{Key: hashes.NewFNV1a("path"), Value: &bin.String{Value: path}},
		bin.Field{Key: hashes.NewFNV1a("value"), Value: v},
	)
	return key, patch, nil
}

func (br *binReader) readValueOf(t bin.Type) (bin.Value, error) {
	at := br.r.pos
	switch t {
	case bin.NoneType:
		return nil, br.fail("type != none", at)
	case bin.BoolType, bin.FlagType:
		var v uint8
		if !br.r.u8(&v) {
			return nil, br.fail("read(bool)", at)
		}
		if t == bin.FlagType {
			return &bin.Flag{Value: v != 0}, nil
		}
		return &bin.Bool{Value: v != 0}, nil
	case bin.I8Type:
		var v uint8
		if !br.r.u8(&v) {
			return nil, br.fail("read(i8)", at)
		}
		return &bin.I8{Value: int8(v)}, nil
	case bin.U8Type:
		var v uint8
		if !br.r.u8(&v) {
			return nil, br.fail("read(u8)", at)
		}
		return &bin.U8{Value: v}, nil
	case bin.I16Type:
		var v uint16
		if !br.r.u16(&v) {
			return nil, br.fail("read(i16)", at)
		}
		return &bin.I16{Value: int16(v)}, nil
	case bin.U16Type:
		var v uint16
		if !br.r.u16(&v) {
			return nil, br.fail("read(u16)", at)
		}
		return &bin.U16{Value: v}, nil
	case bin.I32Type:
		var v uint32
		if !br.r.u32(&v) {
			return nil, br.fail("read(i32)", at)
		}
		return &bin.I32{Value: int32(v)}, nil
	case bin.U32Type:
		var v uint32
		if !br.r.u32(&v) {
			return nil, br.fail("read(u32)", at)
		}
		return &bin.U32{Value: v}, nil
	case bin.I64Type:
		var v uint64
		if !br.r.u64(&v) {
			return nil, br.fail("read(i64)", at)
		}
		return &bin.I64{Value: int64(v)}, nil
	case bin.U64Type:
		var v uint64
		if !br.r.u64(&v) {
			return nil, br.fail("read(u64)", at)
		}
		return &bin.U64{Value: v}, nil
	case bin.F32Type:
		var v float32
		if !br.r.f32(&v) {
			return nil, br.fail("read(f32)", at)
		}
		return &bin.F32{Value: v}, nil
	case bin.Vec2Type:
		v := &bin.Vec2{}
		if !br.readF32s(v.Value[:]) {
			return nil, br.fail("read(vec2)", at)
		}
		return v, nil
	case bin.Vec3Type:
		v := &bin.Vec3{}
		if !br.readF32s(v.Value[:]) {
			return nil, br.fail("read(vec3)", at)
		}
		return v, nil
	case bin.Vec4Type:
		v := &bin.Vec4{}
		if !br.readF32s(v.Value[:]) {
			return nil, br.fail("read(vec4)", at)
		}
		return v, nil
	case bin.Mtx44Type:
		v := &bin.Mtx44{}
		if !br.readF32s(v.Value[:]) {
			return nil, br.fail("read(mtx44)", at)
		}
		return v, nil
	case bin.RGBAType:
		v := &bin.RGBA{}
		d, ok := br.r.take(4)
		if !ok {
			return nil, br.fail("read(rgba)", at)
		}
		copy(v.Value[:], d)
		return v, nil
	case bin.StringType:
		var s string
		if !br.r.str(&s) {
			return nil, br.fail("read(string)", at)
		}
		return &bin.String{Value: s}, nil
	case bin.HashType:
		v := &bin.Hash{}
		if !br.r.fnv1a(&v.Value) {
			return nil, br.fail("read(hash)", at)
		}
		return v, nil
	case bin.LinkType:
		v := &bin.Link{}
		if !br.r.fnv1a(&v.Value) {
			return nil, br.fail("read(link)", at)
		}
		return v, nil
	case bin.FileType:
		v := &bin.File{}
		if !br.r.xxh64(&v.Value) {
			return nil, br.fail("read(file)", at)
		}
		return v, nil
	case bin.EmbedType:
		v := &bin.Embed{}
		err := br.readClass(&v.Name, &v.Items, false)
		return v, err
	case bin.PointerType:
		v := &bin.Pointer{}
		err := br.readClass(&v.Name, &v.Items, true)
		return v, err
	case bin.OptionType:
		return br.readOption()
	case bin.ListType:
		v := &bin.List{}
		err := br.readList(&v.ValueType, &v.Items)
		return v, err
	case bin.List2Type:
		v := &bin.List2{}
		err := br.readList(&v.ValueType, &v.Items)
		return v, err
	case bin.MapType:
		return br.readMap()
	}
	return nil, br.fail("valid type", at)
}

func (br *binReader) readF32s(dst []float32) bool {
	for i := range dst {
		if !br.r.f32(&dst[i]) {
			return false
		}
	}
	return true
}

func (br *binReader) readClass(name *hashes.FNV1a, items *bin.FieldList, nullable bool) error {
	at := br.r.pos
	if !br.r.fnv1a(name) {
		return br.fail("read(value.name)", at)
	}
	if nullable && name.Hash() == 0 {
		return nil
	}
	var size uint32
	if at = br.r.pos; !br.r.u32(&size) {
		return br.fail("read(size)", at)
	}
	start := br.r.pos
	var count uint16
	if at = br.r.pos; !br.r.u16(&count) {
		return br.fail("read(count)", at)
	}
	for i := uint16(0); i != count; i++ {
		at = br.r.pos
		field, err := br.readField()
		if err != nil {
			return rethrow(err, "read_field()", at)
		}
		*items = append(*items, field)
	}
	if br.r.pos != start+int(size) {
		return br.fail("position() == position + size", br.r.pos)
	}
	return nil
}

func (br *binReader) readOption() (*bin.Option, error) {
	v := &bin.Option{}
	at := br.r.pos
	if !br.r.typ(&v.ValueType) {
		return nil, br.fail("read(value.valueType)", at)
	}
	if v.ValueType.IsContainer() {
		return nil, br.fail("!is_container(value.valueType)", at)
	}
	var count uint8
	if at = br.r.pos; !br.r.u8(&count) {
		return nil, br.fail("read(count)", at)
	}
	if count != 0 {
		at = br.r.pos
		item, err := br.readValueOf(v.ValueType)
		if err != nil {
			return nil, rethrow(err, "read_value_of(item, valueType)", at)
		}
		v.Items = append(v.Items, item)
	}
	return v, nil
}

func (br *binReader) readList(valueType *bin.Type, items *bin.ElementList) error {
	at := br.r.pos
	if !br.r.typ(valueType) {
		return br.fail("read(value.valueType)", at)
	}
	if valueType.IsContainer() {
		return br.fail("!is_container(value.valueType)", at)
	}
	var size, count uint32
	if at = br.r.pos; !br.r.u32(&size) {
		return br.fail("read(size)", at)
	}
	start := br.r.pos
	if at = br.r.pos; !br.r.u32(&count) {
		return br.fail("read(count)", at)
	}
	for i := uint32(0); i != count; i++ {
		at = br.r.pos
		item, err := br.readValueOf(*valueType)
		if err != nil {
			return rethrow(err, "read_value_of(item, valueType)", at)
		}
		*items = append(*items, item)
	}
	if br.r.pos != start+int(size) {
		return br.fail("position() == position + size", br.r.pos)
	}
	return nil
}

func (br *binReader) readMap() (*bin.Map, error) {
	v := &bin.Map{}
	at := br.r.pos
	if !br.r.typ(&v.KeyType) {
		return nil, br.fail("read(value.keyType)", at)
	}
	if !v.KeyType.IsPrimitive() {
		return nil, br.fail("is_primitive(value.keyType)", at)
	}
	if at = br.r.pos; !br.r.typ(&v.ValueType) {
		return nil, br.fail("read(value.valueType)", at)
	}
	if v.ValueType.IsContainer() {
		return nil, br.fail("!is_container(value.valueType)", at)
	}
	var size, count uint32
	if at = br.r.pos; !br.r.u32(&size) {
		return nil, br.fail("read(size)", at)
	}
	start := br.r.pos
	if at = br.r.pos; !br.r.u32(&count) {
		return nil, br.fail("read(count)", at)
	}
	for i := uint32(0); i != count; i++ {
		at = br.r.pos
		key, err := br.readValueOf(v.KeyType)
		if err != nil {
			return nil, rethrow(err, "read_value_of(key, keyType)", at)
		}
		at = br.r.pos
		item, err := br.readValueOf(v.ValueType)
		if err != nil {
			return nil, rethrow(err, "read_value_of(item, valueType)", at)
		}
		v.Items = append(v.Items, bin.Pair{Key: key, Value: item})
	}
	if br.r.pos != start+int(size) {
		return nil, br.fail("position() == position + size", br.r.pos)
	}
	return v, nil
}
