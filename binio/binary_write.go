package binio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// WriteBinary serializes b into the PROP/PTCH wire form using the given
// generation.  Size prefixes are reserved, children emitted, then the
// prefixes backpatched.
func WriteBinary(b *bin.Bin, tm TypeMap) ([]byte, error) {
	bw := &binWriter{w: byteWriter{tm: tm}}
	if err := bw.writeSections(b); err != nil {
		return nil, err
	}
	return bw.w.buf, nil
}

type byteWriter struct {
	buf []byte
	tm  TypeMap
}

func (w *byteWriter) pos() int { return len(w.buf) }

func (w *byteWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *byteWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *byteWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *byteWriter) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *byteWriter) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *byteWriter) raw(d []byte) { w.buf = append(w.buf, d...) }

func (w *byteWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

// skip reserves n zero bytes for later backpatching.
func (w *byteWriter) skip(n int) int {
	at := w.pos()
	w.buf = append(w.buf, make([]byte, n)...)
	return at
}

// patchU32 backfills a reserved u32 with the bytes emitted since just after
// it.
func (w *byteWriter) patchU32(at int) error {
	delta := w.pos() - at - 4
	if delta < 0 || uint64(delta) > math.MaxUint32 {
		return fmt.Errorf("%w: size prefix %d out of u32 range", ErrSemantic, delta)
	}
	binary.LittleEndian.PutUint32(w.buf[at:], uint32(delta))
	return nil
}

func (w *byteWriter) str(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes exceeds u16 length", ErrSemantic, len(s))
	}
	w.u16(uint16(len(s)))
	w.raw([]byte(s))
	return nil
}

func (w *byteWriter) typ(t bin.Type) error {
	raw, ok := w.tm.TypeToRaw(t)
	if !ok {
		return fmt.Errorf("%w: type %s has no %s wire tag", ErrSemantic, t, w.tm.Name())
	}
	w.u8(raw)
	return nil
}

type binWriter struct {
	w byteWriter
}

func (bw *binWriter) writeSections(b *bin.Bin) error {
	typeSection, ok := b.Get("type").(*bin.String)
	if !ok {
		return fmt.Errorf("%w: missing or mistyped type section", ErrSemantic)
	}
	if typeSection.Value != "PROP" && typeSection.Value != "PTCH" {
		return fmt.Errorf("%w: type is %q, want PROP or PTCH", ErrSemantic, typeSection.Value)
	}
	if typeSection.Value == "PTCH" {
		bw.w.raw([]byte("PTCH"))
		bw.w.u32(1)
		bw.w.u32(0)
	}
	bw.w.raw([]byte("PROP"))

	version, ok := b.Get("version").(*bin.U32)
	if !ok {
		return fmt.Errorf("%w: missing or mistyped version section", ErrSemantic)
	}
	bw.w.u32(version.Value)

	if version.Value >= 2 {
		if err := bw.writeLinked(b); err != nil {
			return err
		}
	}
	if err := bw.writeEntries(b); err != nil {
		return err
	}
	// Patches are read whenever the magic is PTCH but written only for
	// version >= 3; preserved so round-trips stay byte exact.
	if version.Value >= 3 && typeSection.Value == "PTCH" {
		if err := bw.writePatches(b); err != nil {
			return err
		}
	}
	return nil
}

func (bw *binWriter) writeLinked(b *bin.Bin) error {
	section := b.Get("linked")
	if section == nil {
		bw.w.u32(0)
		return nil
	}
	linked, ok := section.(*bin.List)
	if !ok {
		return fmt.Errorf("%w: linked section is %s, want list", ErrSemantic, section.Type())
	}
	if linked.ValueType != bin.StringType {
		return fmt.Errorf("%w: linked element type is %s, want string", ErrSemantic, linked.ValueType)
	}
	bw.w.u32(uint32(len(linked.Items)))
	for _, item := range linked.Items {
		link, ok := item.(*bin.String)
		if !ok {
			return fmt.Errorf("%w: linked item is %s, want string", ErrSemantic, item.Type())
		}
		if err := bw.w.str(link.Value); err != nil {
			return err
		}
	}
	return nil
}

func (bw *binWriter) writeEntries(b *bin.Bin) error {
	section := b.Get("entries")
	if section == nil {
		bw.w.u32(0)
		return nil
	}
	entries, ok := section.(*bin.Map)
	if !ok {
		return fmt.Errorf("%w: entries section is %s, want map", ErrSemantic, section.Type())
	}
	if entries.KeyType != bin.HashType || entries.ValueType != bin.EmbedType {
		return fmt.Errorf("%w: entries is map[%s,%s], want map[hash,embed]",
			ErrSemantic, entries.KeyType, entries.ValueType)
	}
	bw.w.u32(uint32(len(entries.Items)))

	// The name-hash table precedes the entry bodies; reserve it now and
	// fill it once every body is out.
	tableAt := bw.w.skip(4 * len(entries.Items))
	nameHashes := make([]uint32, 0, len(entries.Items))
	for _, pair := range entries.Items {
		key, ok := pair.Key.(*bin.Hash)
		if !ok {
			return fmt.Errorf("%w: entry key is %s, want hash", ErrSemantic, pair.Key.Type())
		}
		entry, ok := pair.Value.(*bin.Embed)
		if !ok {
			return fmt.Errorf("%w: entry value is %s, want embed", ErrSemantic, pair.Value.Type())
		}
		nameHashes = append(nameHashes, entry.Name.Hash())
		if err := bw.writeEntry(key, entry); err != nil {
			return err
		}
	}
	for i, h := range nameHashes {
		binary.LittleEndian.PutUint32(bw.w.buf[tableAt+4*i:], h)
	}
	return nil
}

func (bw *binWriter) writeEntry(key *bin.Hash, entry *bin.Embed) error {
	lengthAt := bw.w.skip(4)
	bw.w.u32(key.Value.Hash())
	if len(entry.Items) > math.MaxUint16 {
		return fmt.Errorf("%w: %d fields exceed u16 count", ErrSemantic, len(entry.Items))
	}
	bw.w.u16(uint16(len(entry.Items)))
	for i := range entry.Items {
		if err := bw.writeField(&entry.Items[i]); err != nil {
			return err
		}
	}
	return bw.w.patchU32(lengthAt)
}

func (bw *binWriter) writeField(field *bin.Field) error {
	bw.w.u32(field.Key.Hash())
	if err := bw.w.typ(field.Value.Type()); err != nil {
		return err
	}
	return bw.writeValue(field.Value)
}

func (bw *binWriter) writePatches(b *bin.Bin) error {
	section := b.Get("patches")
	if section == nil {
		bw.w.u32(0)
		return nil
	}
	patches, ok := section.(*bin.Map)
	if !ok {
		return fmt.Errorf("%w: patches section is %s, want map", ErrSemantic, section.Type())
	}
	if patches.KeyType != bin.HashType || patches.ValueType != bin.EmbedType {
		return fmt.Errorf("%w: patches is map[%s,%s], want map[hash,embed]",
			ErrSemantic, patches.KeyType, patches.ValueType)
	}
	bw.w.u32(uint32(len(patches.Items)))
	for _, pair := range patches.Items {
		key, ok := pair.Key.(*bin.Hash)
		if !ok {
			return fmt.Errorf("%w: patch key is %s, want hash", ErrSemantic, pair.Key.Type())
		}
		patch, ok := pair.Value.(*bin.Embed)
		if !ok {
			return fmt.Errorf("%w: patch value is %s, want embed", ErrSemantic, pair.Value.Type())
		}
		if err := bw.writePatch(key, patch); err != nil {
			return err
		}
	}
	return nil
}

func (bw *binWriter) writePatch(key *bin.Hash, patch *bin.Embed) error {
	bw.w.u32(key.Value.Hash())
	lengthAt := bw.w.skip(4)
	path := patch.FindField(hashes.NewFNV1a("path"))
	value := patch.FindField(hashes.NewFNV1a("value"))
	if path == nil || value == nil {
		return fmt.Errorf("%w: patch embed needs path and value fields", ErrSemantic)
	}
	pathString, ok := path.Value.(*bin.String)
	if !ok {
		return fmt.Errorf("%w: patch path is %s, want string", ErrSemantic, path.Value.Type())
	}
	if err := bw.w.typ(value.Value.Type()); err != nil {
		return err
	}
	if err := bw.w.str(pathString.Value); err != nil {
		return err
	}
	if err := bw.writeValue(value.Value); err != nil {
		return err
	}
	return bw.w.patchU32(lengthAt)
}

func (bw *binWriter) writeValue(v bin.Value) error {
	switch v := v.(type) {
	case *bin.None:
		return nil
	case *bin.Bool:
		bw.w.boolean(v.Value)
	case *bin.Flag:
		bw.w.boolean(v.Value)
	case *bin.I8:
		bw.w.u8(uint8(v.Value))
	case *bin.U8:
		bw.w.u8(v.Value)
	case *bin.I16:
		bw.w.u16(uint16(v.Value))
	case *bin.U16:
		bw.w.u16(v.Value)
	case *bin.I32:
		bw.w.u32(uint32(v.Value))
	case *bin.U32:
		bw.w.u32(v.Value)
	case *bin.I64:
		bw.w.u64(uint64(v.Value))
	case *bin.U64:
		bw.w.u64(v.Value)
	case *bin.F32:
		bw.w.f32(v.Value)
	case *bin.Vec2:
		bw.writeF32s(v.Value[:])
	case *bin.Vec3:
		bw.writeF32s(v.Value[:])
	case *bin.Vec4:
		bw.writeF32s(v.Value[:])
	case *bin.Mtx44:
		bw.writeF32s(v.Value[:])
	case *bin.RGBA:
		bw.w.raw(v.Value[:])
	case *bin.String:
		return bw.w.str(v.Value)
	case *bin.Hash:
		bw.w.u32(v.Value.Hash())
	case *bin.Link:
		bw.w.u32(v.Value.Hash())
	case *bin.File:
		bw.w.u64(v.Value.Hash())
	case *bin.Embed:
		return bw.writeClass(v.Name.Hash(), v.Items, false)
	case *bin.Pointer:
		return bw.writeClass(v.Name.Hash(), v.Items, true)
	case *bin.Option:
		return bw.writeOption(v)
	case *bin.List:
		return bw.writeList(v.ValueType, v.Items)
	case *bin.List2:
		return bw.writeList(v.ValueType, v.Items)
	case *bin.Map:
		return bw.writeMap(v)
	default:
		return fmt.Errorf("%w: cannot serialize %s", ErrSemantic, v.Type())
	}
	return nil
}

func (bw *binWriter) writeF32s(vals []float32) {
	for _, f := range vals {
		bw.w.f32(f)
	}
}

func (bw *binWriter) writeClass(nameHash uint32, items bin.FieldList, nullable bool) error {
	bw.w.u32(nameHash)
	if nullable && nameHash == 0 {
		return nil
	}
	sizeAt := bw.w.skip(4)
	if len(items) > math.MaxUint16 {
		return fmt.Errorf("%w: %d fields exceed u16 count", ErrSemantic, len(items))
	}
	bw.w.u16(uint16(len(items)))
	for i := range items {
		if err := bw.writeField(&items[i]); err != nil {
			return err
		}
	}
	return bw.w.patchU32(sizeAt)
}

func (bw *binWriter) writeOption(v *bin.Option) error {
	if v.ValueType.IsContainer() {
		return fmt.Errorf("%w: option of %s", ErrSemantic, v.ValueType)
	}
	if len(v.Items) > 1 {
		return fmt.Errorf("%w: option holds %d values", ErrSemantic, len(v.Items))
	}
	if err := bw.w.typ(v.ValueType); err != nil {
		return err
	}
	bw.w.u8(uint8(len(v.Items)))
	for _, item := range v.Items {
		if err := bw.writeTyped(item, v.ValueType); err != nil {
			return err
		}
	}
	return nil
}

func (bw *binWriter) writeList(valueType bin.Type, items bin.ElementList) error {
	if valueType.IsContainer() {
		return fmt.Errorf("%w: list of %s", ErrSemantic, valueType)
	}
	if err := bw.w.typ(valueType); err != nil {
		return err
	}
	sizeAt := bw.w.skip(4)
	bw.w.u32(uint32(len(items)))
	for _, item := range items {
		if err := bw.writeTyped(item, valueType); err != nil {
			return err
		}
	}
	return bw.w.patchU32(sizeAt)
}

func (bw *binWriter) writeMap(v *bin.Map) error {
	if !v.KeyType.IsPrimitive() {
		return fmt.Errorf("%w: map key type %s is not primitive", ErrSemantic, v.KeyType)
	}
	if v.ValueType.IsContainer() {
		return fmt.Errorf("%w: map of %s", ErrSemantic, v.ValueType)
	}
	if err := bw.w.typ(v.KeyType); err != nil {
		return err
	}
	if err := bw.w.typ(v.ValueType); err != nil {
		return err
	}
	sizeAt := bw.w.skip(4)
	bw.w.u32(uint32(len(v.Items)))
	for _, pair := range v.Items {
		if err := bw.writeTyped(pair.Key, v.KeyType); err != nil {
			return err
		}
		if err := bw.writeTyped(pair.Value, v.ValueType); err != nil {
			return err
		}
	}
	return bw.w.patchU32(sizeAt)
}

// writeTyped asserts that a stored element matches its container's declared
// type before emitting it.
func (bw *binWriter) writeTyped(v bin.Value, t bin.Type) error {
	if v.Type() != t {
		return fmt.Errorf("%w: element is %s, container declares %s", ErrSemantic, v.Type(), t)
	}
	return bw.writeValue(v)
}
