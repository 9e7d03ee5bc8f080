package morph

import (
	"math"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// Value coerces from into the given type and returns the coerced value with
// its fidelity grade.  An identical source and target type returns the
// source untouched as Unchanged.
func Value(from bin.Value, into bin.Type) (bin.Value, Result) {
	if from.Type() == into {
		return from, Unchanged
	}
	out := bin.New(into)
	if out == nil {
		return from, Fail
	}
	switch from.Type().Category() {
	case bin.NoneCategory:
		return noneTo(out)
	case bin.NumberCategory:
		return numberTo(from, out)
	case bin.VectorCategory:
		return vectorTo(from, out)
	case bin.StringCategory:
		return stringTo(from.(*bin.String), out)
	case bin.HashCategory:
		return hashTo(from, out)
	case bin.OptionCategory:
		return optionTo(from.(*bin.Option), out)
	case bin.ListCategory:
		return listTo(from, out)
	case bin.MapCategory:
		return mapTo(from.(*bin.Map), out)
	case bin.ClassCategory:
		return classTo(from, out)
	}
	return from, Fail
}

// noneTo fills nothing: only another none is complete.
func noneTo(out bin.Value) (bin.Value, Result) {
	if out.Type() == bin.NoneType {
		return out, OK
	}
	return out, Incomplete
}

func numberTo(from bin.Value, out bin.Value) (bin.Value, Result) {
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory:
		v, exact := makeNumber(out.Type(), from)
		if exact {
			return v, OK
		}
		return v, Lossy
	case bin.VectorCategory:
		setVectorSlot0(out, from)
		return out, Incomplete
	case bin.StringCategory:
		return &bin.String{Value: formatNumber(from)}, OK
	case bin.HashCategory:
		v, exact := hashFromNumber(out.Type(), from)
		if exact {
			return v, OK
		}
		return v, Lossy
	case bin.OptionCategory:
		return wrapOption(from), OK
	case bin.ListCategory:
		return wrapList(out.Type(), from.Type(), from), OK
	case bin.MapCategory:
		return wrapMap(from), OK
	case bin.ClassCategory:
		return out, Incomplete
	}
	return out, Fail
}

func vectorTo(from bin.Value, out bin.Value) (bin.Value, Result) {
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory:
		v, _ := makeNumber(out.Type(), vectorSlot0(from))
		return v, Lossy
	case bin.VectorCategory:
		return vectorToVector(from, out)
	case bin.StringCategory:
		return &bin.String{Value: formatNumber(vectorSlot0(from))}, Lossy
	case bin.HashCategory:
		v, _ := hashFromNumber(out.Type(), vectorSlot0(from))
		return v, Lossy
	case bin.OptionCategory:
		return wrapOption(from), OK
	case bin.ListCategory:
		return vectorToList(out.Type(), from), OK
	case bin.MapCategory:
		return wrapMap(from), OK
	case bin.ClassCategory:
		return out, Incomplete
	}
	return out, Fail
}

func stringTo(from *bin.String, out bin.Value) (bin.Value, Result) {
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory:
		v, ok := parseNumber(out.Type(), from.Value)
		if ok {
			return v, OK
		}
		return v, Incomplete
	case bin.VectorCategory:
		if f, ok := parseNumber(bin.F32Type, from.Value); ok {
			setVectorSlot0(out, f)
		}
		return out, Incomplete
	case bin.HashCategory:
		return hashFromString(out.Type(), from.Value), OK
	case bin.OptionCategory:
		return wrapOption(from), OK
	case bin.ListCategory:
		return wrapList(out.Type(), bin.StringType, from), OK
	case bin.MapCategory:
		return wrapMap(from), OK
	case bin.ClassCategory:
		return out, Incomplete
	}
	return out, Fail
}

func hashTo(from bin.Value, out bin.Value) (bin.Value, Result) {
	str, h, is64 := hashParts(from)
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory:
		v, exact := makeNumber(out.Type(), hashAsNumber(h, is64))
		if exact {
			return v, OK
		}
		return v, Lossy
	case bin.VectorCategory:
		setVectorSlot0(out, hashAsNumber(h, is64))
		return out, Incomplete
	case bin.StringCategory:
		if str != "" {
			return &bin.String{Value: str}, OK
		}
		if h == 0 {
			return &bin.String{}, OK
		}
		return &bin.String{}, Incomplete
	case bin.HashCategory:
		return hashToHash(out.Type(), str, h, is64)
	case bin.OptionCategory:
		return wrapOption(from), OK
	case bin.ListCategory:
		return wrapList(out.Type(), from.Type(), from), OK
	case bin.MapCategory:
		return wrapMap(from), OK
	case bin.ClassCategory:
		return out, Incomplete
	}
	return out, Fail
}

func optionTo(from *bin.Option, out bin.Value) (bin.Value, Result) {
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory, bin.VectorCategory, bin.StringCategory, bin.HashCategory, bin.ClassCategory:
		if len(from.Items) == 0 {
			return out, Incomplete
		}
		v, r := Value(from.Items[0], out.Type())
		if r.good() {
			return v, OK
		}
		return v, r
	case bin.OptionCategory:
		return &bin.Option{ValueType: from.ValueType, Items: from.Items}, OK
	case bin.ListCategory:
		return moveElements(out.Type(), from.ValueType, from.Items), OK
	case bin.MapCategory:
		m := &bin.Map{KeyType: bin.U32Type, ValueType: from.ValueType}
		if len(from.Items) != 0 {
			m.Items = append(m.Items, bin.Pair{Key: &bin.U32{}, Value: from.Items[0]})
		}
		return m, OK
	}
	return out, Fail
}

func listTo(from bin.Value, out bin.Value) (bin.Value, Result) {
	valueType, items := listParts(from)
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory, bin.StringCategory, bin.HashCategory, bin.ClassCategory:
		return listToScalar(items, out)
	case bin.VectorCategory:
		if valueType.Category() == bin.NumberCategory {
			return listToVector(items, out)
		}
		return listToScalar(items, out)
	case bin.OptionCategory:
		o := &bin.Option{ValueType: valueType, Items: items}
		if len(o.Items) > 1 {
			o.Items = o.Items[:1]
			return o, Lossy
		}
		return o, OK
	case bin.ListCategory:
		return moveElements(out.Type(), valueType, items), OK
	case bin.MapCategory:
		m := &bin.Map{KeyType: bin.U32Type, ValueType: valueType}
		for i, item := range items {
			m.Items = append(m.Items, bin.Pair{Key: &bin.U32{Value: uint32(i)}, Value: item})
		}
		return m, OK
	}
	return out, Fail
}

func listToScalar(items bin.ElementList, out bin.Value) (bin.Value, Result) {
	if len(items) == 0 {
		return out, Incomplete
	}
	v, r := Value(items[0], out.Type())
	if r.good() {
		if len(items) > 1 {
			return v, Lossy
		}
		return v, OK
	}
	return v, r
}

func listToVector(items bin.ElementList, out bin.Value) (bin.Value, Result) {
	floats, bytes := vectorSlots(out)
	size := len(floats) + len(bytes)
	n := min(size, len(items))
	result := OK
	for i := 0; i < n; i++ {
		if items[i].Type().Category() != bin.NumberCategory {
			continue
		}
		exact := true
		if floats != nil {
			floats[i], exact = numAs[float32](items[i])
		} else {
			bytes[i], exact = numAs[uint8](items[i])
		}
		if !exact {
			result = Lossy
		}
	}
	if n < size {
		return out, Incomplete
	}
	if n < len(items) {
		return out, Lossy
	}
	return out, result
}

func mapTo(from *bin.Map, out bin.Value) (bin.Value, Result) {
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory, bin.VectorCategory, bin.StringCategory, bin.HashCategory:
		return out, Incomplete
	case bin.OptionCategory:
		o := &bin.Option{ValueType: from.ValueType}
		if len(from.Items) != 0 {
			o.Items = append(o.Items, from.Items[0].Value)
		}
		return o, Lossy
	case bin.ListCategory:
		items := make(bin.ElementList, 0, len(from.Items))
		for _, pair := range from.Items {
			items = append(items, pair.Value)
		}
		return moveElements(out.Type(), from.ValueType, items), Lossy
	case bin.ClassCategory:
		// Keys become field-name hashes; there is no class name to
		// recover, so the value stays incomplete.
		fields := make(bin.FieldList, 0, len(from.Items))
		for _, pair := range from.Items {
			key, _ := Value(pair.Key, bin.HashType)
			fields = append(fields, bin.Field{Key: key.(*bin.Hash).Value, Value: pair.Value})
		}
		return makeClass(out.Type(), hashes.FNV1a{}, fields), Incomplete
	}
	return out, Fail
}

func classTo(from bin.Value, out bin.Value) (bin.Value, Result) {
	name, fields := classParts(from)
	switch out.Type().Category() {
	case bin.NoneCategory:
		return out, Lossy
	case bin.NumberCategory, bin.VectorCategory, bin.StringCategory, bin.HashCategory:
		return out, Incomplete
	case bin.OptionCategory:
		return wrapOption(from), OK
	case bin.ListCategory:
		return wrapList(out.Type(), from.Type(), from), OK
	case bin.MapCategory:
		return wrapMap(from), Lossy
	case bin.ClassCategory:
		return makeClass(out.Type(), name, fields), OK
	}
	return out, Fail
}

// Wrapping helpers.

func wrapOption(v bin.Value) *bin.Option {
	return &bin.Option{ValueType: v.Type(), Items: bin.ElementList{v}}
}

func wrapList(listType, valueType bin.Type, v bin.Value) bin.Value {
	return moveElements(listType, valueType, bin.ElementList{v})
}

func wrapMap(v bin.Value) *bin.Map {
	return &bin.Map{
		KeyType:   bin.U32Type,
		ValueType: v.Type(),
		Items:     bin.PairList{{Key: &bin.U32{}, Value: v}},
	}
}

func moveElements(listType, valueType bin.Type, items bin.ElementList) bin.Value {
	if listType == bin.List2Type {
		return &bin.List2{ValueType: valueType, Items: items}
	}
	return &bin.List{ValueType: valueType, Items: items}
}

func makeClass(classType bin.Type, name hashes.FNV1a, fields bin.FieldList) bin.Value {
	if classType == bin.PointerType {
		return &bin.Pointer{Name: name, Items: fields}
	}
	return &bin.Embed{Name: name, Items: fields}
}

func listParts(v bin.Value) (bin.Type, bin.ElementList) {
	switch v := v.(type) {
	case *bin.List:
		return v.ValueType, v.Items
	case *bin.List2:
		return v.ValueType, v.Items
	}
	return bin.NoneType, nil
}

func classParts(v bin.Value) (hashes.FNV1a, bin.FieldList) {
	switch v := v.(type) {
	case *bin.Embed:
		return v.Name, v.Items
	case *bin.Pointer:
		return v.Name, v.Items
	}
	return hashes.FNV1a{}, nil
}

// Vector helpers.

// vectorSlots exposes the payload; exactly one of the slices is non-nil.
func vectorSlots(v bin.Value) (floats []float32, bytes []uint8) {
	switch v := v.(type) {
	case *bin.Vec2:
		return v.Value[:], nil
	case *bin.Vec3:
		return v.Value[:], nil
	case *bin.Vec4:
		return v.Value[:], nil
	case *bin.Mtx44:
		return v.Value[:], nil
	case *bin.RGBA:
		return nil, v.Value[:]
	}
	return nil, nil
}

func vectorSlot0(v bin.Value) bin.Value {
	floats, bytes := vectorSlots(v)
	if floats != nil {
		return &bin.F32{Value: floats[0]}
	}
	return &bin.U8{Value: bytes[0]}
}

func setVectorSlot0(out bin.Value, from bin.Value) {
	floats, bytes := vectorSlots(out)
	if floats != nil {
		floats[0], _ = numAs[float32](from)
		return
	}
	bytes[0], _ = numAs[uint8](from)
}

// vectorToVector converts element-wise.  Crossing between float and
// integer elements scales into the integer type's full range, so colors
// and unit vectors translate into each other.
func vectorToVector(from bin.Value, out bin.Value) (bin.Value, Result) {
	srcF, srcB := vectorSlots(from)
	dstF, dstB := vectorSlots(out)
	srcLen := len(srcF) + len(srcB)
	dstLen := len(dstF) + len(dstB)
	n := min(srcLen, dstLen)
	result := OK
	for i := 0; i < n; i++ {
		exact := true
		switch {
		case srcF != nil && dstF != nil:
			dstF[i] = srcF[i]
		case srcB != nil && dstB != nil:
			dstB[i] = srcB[i]
		case srcB != nil && dstF != nil:
			dstF[i], exact = byteToUnit(srcB[i])
		default:
			dstB[i], exact = unitToByte(srcF[i])
		}
		if !exact {
			result = Lossy
		}
	}
	if n < srcLen {
		return out, Lossy
	}
	if n < dstLen {
		return out, Incomplete
	}
	return out, result
}

// vectorToList explodes the vector into a list of its element wrapper
// type.
func vectorToList(listType bin.Type, from bin.Value) bin.Value {
	floats, bytes := vectorSlots(from)
	if floats != nil {
		items := make(bin.ElementList, 0, len(floats))
		for _, f := range floats {
			items = append(items, &bin.F32{Value: f})
		}
		return moveElements(listType, bin.F32Type, items)
	}
	items := make(bin.ElementList, 0, len(bytes))
	for _, b := range bytes {
		items = append(items, &bin.U8{Value: b})
	}
	return moveElements(listType, bin.U8Type, items)
}

func byteToUnit(b uint8) (float32, bool) {
	f := float32(b) / 255
	return f, uint8(math.Round(float64(f*255))) == b
}

func unitToByte(f float32) (uint8, bool) {
	b := uint8(int64(math.Round(float64(f * 255))))
	return b, float32(b)/255 == f
}

// Hash helpers.

func hashParts(v bin.Value) (str string, h uint64, is64 bool) {
	switch v := v.(type) {
	case *bin.Hash:
		return v.Value.Str(), uint64(v.Value.Hash()), false
	case *bin.Link:
		return v.Value.Str(), uint64(v.Value.Hash()), false
	case *bin.File:
		return v.Value.Str(), v.Value.Hash(), true
	}
	return "", 0, false
}

func hashAsNumber(h uint64, is64 bool) bin.Value {
	if is64 {
		return &bin.U64{Value: h}
	}
	return &bin.U32{Value: uint32(h)}
}

func hashFromString(t bin.Type, s string) bin.Value {
	switch t {
	case bin.FileType:
		v := &bin.File{}
		if s != "" {
			v.Value = hashes.NewXXH64(s)
		}
		return v
	case bin.LinkType:
		v := &bin.Link{}
		if s != "" {
			v.Value = hashes.NewFNV1a(s)
		}
		return v
	default:
		v := &bin.Hash{}
		if s != "" {
			v.Value = hashes.NewFNV1a(s)
		}
		return v
	}
}

func hashFromNumber(t bin.Type, from bin.Value) (bin.Value, bool) {
	if t == bin.FileType {
		h, exact := numAs[uint64](from)
		return &bin.File{Value: hashes.XXH64From(h)}, exact
	}
	h, exact := numAs[uint32](from)
	if t == bin.LinkType {
		return &bin.Link{Value: hashes.FNV1aFrom(h)}, exact
	}
	return &bin.Hash{Value: hashes.FNV1aFrom(h)}, exact
}

func hashToHash(t bin.Type, str string, h uint64, is64 bool) (bin.Value, Result) {
	into64 := t == bin.FileType
	if is64 == into64 {
		// Same storage: hash and link interchange without loss.
		v := hashFromString(t, str)
		if str == "" {
			setRawHash(v, h)
		}
		return v, OK
	}
	if str != "" {
		return hashFromString(t, str), OK
	}
	v, exact := hashFromNumber(t, hashAsNumber(h, is64))
	if exact {
		return v, Lossy
	}
	return v, Incomplete
}

func setRawHash(v bin.Value, h uint64) {
	switch v := v.(type) {
	case *bin.Hash:
		v.Value = hashes.FNV1aFrom(uint32(h))
	case *bin.Link:
		v.Value = hashes.FNV1aFrom(uint32(h))
	case *bin.File:
		v.Value = hashes.XXH64From(h)
	}
}
