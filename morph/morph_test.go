package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

func TestValueUnchanged(t *testing.T) {
	for _, v := range []bin.Value{
		&bin.None{},
		&bin.U32{Value: 7},
		&bin.F32{Value: 1.5},
		&bin.String{Value: "x"},
		&bin.Hash{Value: hashes.NewFNV1a("x")},
		&bin.Vec3{Value: [3]float32{1, 2, 3}},
		&bin.List{ValueType: bin.U32Type},
		&bin.Map{KeyType: bin.HashType, ValueType: bin.U32Type},
		&bin.Embed{Name: hashes.NewFNV1a("C")},
	} {
		got, r := Value(v, v.Type())
		assert.Equal(t, Unchanged, r, "type %s", v.Type())
		assert.Same(t, v, got, "type %s", v.Type())
	}
}

func TestNumberToNumber(t *testing.T) {
	got, r := Value(&bin.U32{Value: 300}, bin.U8Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, uint8(44), got.(*bin.U8).Value)

	got, r = Value(&bin.U32{Value: 200}, bin.U8Type)
	require.Equal(t, OK, r)
	assert.Equal(t, uint8(200), got.(*bin.U8).Value)

	got, r = Value(&bin.F32{Value: 1.5}, bin.I32Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, int32(1), got.(*bin.I32).Value)

	got, r = Value(&bin.I8{Value: -1}, bin.F32Type)
	require.Equal(t, OK, r)
	assert.Equal(t, float32(-1), got.(*bin.F32).Value)

	got, r = Value(&bin.U32{Value: 1}, bin.BoolType)
	require.Equal(t, OK, r)
	assert.True(t, got.(*bin.Bool).Value)

	got, r = Value(&bin.U32{Value: 2}, bin.BoolType)
	require.Equal(t, Lossy, r)
	assert.True(t, got.(*bin.Bool).Value)
}

func TestVectorToVectorScaling(t *testing.T) {
	got, r := Value(&bin.Vec3{Value: [3]float32{0.5, 0.25, 0}}, bin.RGBAType)
	require.Equal(t, Incomplete, r)
	assert.Equal(t, [4]uint8{128, 64, 0, 0}, got.(*bin.RGBA).Value)

	got, r = Value(&bin.RGBA{Value: [4]uint8{255, 0, 51, 255}}, bin.Vec4Type)
	require.Equal(t, OK, r)
	v := got.(*bin.Vec4).Value
	assert.Equal(t, float32(1), v[0])
	assert.Equal(t, float32(0), v[1])

	got, r = Value(&bin.Vec4{Value: [4]float32{1, 2, 3, 4}}, bin.Vec2Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, [2]float32{1, 2}, got.(*bin.Vec2).Value)

	got, r = Value(&bin.Vec2{Value: [2]float32{1, 2}}, bin.Vec4Type)
	require.Equal(t, Incomplete, r)
	assert.Equal(t, [4]float32{1, 2, 0, 0}, got.(*bin.Vec4).Value)
}

func TestNumberVectorEdges(t *testing.T) {
	got, r := Value(&bin.U8{Value: 5}, bin.Vec2Type)
	require.Equal(t, Incomplete, r)
	assert.Equal(t, [2]float32{5, 0}, got.(*bin.Vec2).Value)

	got, r = Value(&bin.Vec3{Value: [3]float32{7, 8, 9}}, bin.U32Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, uint32(7), got.(*bin.U32).Value)
}

func TestStringConversions(t *testing.T) {
	got, r := Value(&bin.String{Value: "42"}, bin.U32Type)
	require.Equal(t, OK, r)
	assert.Equal(t, uint32(42), got.(*bin.U32).Value)

	_, r = Value(&bin.String{Value: "nope"}, bin.U32Type)
	assert.Equal(t, Incomplete, r)

	got, r = Value(&bin.U32{Value: 42}, bin.StringType)
	require.Equal(t, OK, r)
	assert.Equal(t, "42", got.(*bin.String).Value)

	got, r = Value(&bin.String{Value: "Name"}, bin.HashType)
	require.Equal(t, OK, r)
	assert.Equal(t, hashes.NewFNV1a("Name").Hash(), got.(*bin.Hash).Value.Hash())
}

func TestHashConversions(t *testing.T) {
	got, r := Value(&bin.Hash{Value: hashes.NewFNV1a("known")}, bin.StringType)
	require.Equal(t, OK, r)
	assert.Equal(t, "known", got.(*bin.String).Value)

	got, r = Value(&bin.Hash{}, bin.StringType)
	require.Equal(t, OK, r)
	assert.Equal(t, "", got.(*bin.String).Value)

	_, r = Value(&bin.Hash{Value: hashes.FNV1aFrom(0x1234)}, bin.StringType)
	assert.Equal(t, Incomplete, r)

	// Hash and link share storage and interchange without loss.
	got, r = Value(&bin.Hash{Value: hashes.FNV1aFrom(0x1234)}, bin.LinkType)
	require.Equal(t, OK, r)
	assert.Equal(t, uint32(0x1234), got.(*bin.Link).Value.Hash())

	// Widening to a file hash keeps the number but changes domain.
	_, r = Value(&bin.Hash{Value: hashes.FNV1aFrom(0x1234)}, bin.FileType)
	assert.Equal(t, Lossy, r)

	// Narrowing a wide hash truncates.
	_, r = Value(&bin.File{Value: hashes.XXH64From(0x1122334455667788)}, bin.HashType)
	assert.Equal(t, Incomplete, r)

	// A recovered string crosses domains exactly.
	got, r = Value(&bin.File{Value: hashes.NewXXH64("path")}, bin.HashType)
	require.Equal(t, OK, r)
	assert.Equal(t, hashes.NewFNV1a("path").Hash(), got.(*bin.Hash).Value.Hash())
}

func TestWrapIntoContainers(t *testing.T) {
	got, r := Value(&bin.U32{Value: 7}, bin.OptionType)
	require.Equal(t, OK, r)
	o := got.(*bin.Option)
	assert.Equal(t, bin.U32Type, o.ValueType)
	require.Len(t, o.Items, 1)

	got, r = Value(&bin.String{Value: "x"}, bin.ListType)
	require.Equal(t, OK, r)
	l := got.(*bin.List)
	assert.Equal(t, bin.StringType, l.ValueType)
	require.Len(t, l.Items, 1)

	got, r = Value(&bin.Vec2{Value: [2]float32{1, 2}}, bin.List2Type)
	require.Equal(t, OK, r)
	l2 := got.(*bin.List2)
	assert.Equal(t, bin.F32Type, l2.ValueType)
	require.Len(t, l2.Items, 2)
	assert.Equal(t, float32(2), l2.Items[1].(*bin.F32).Value)

	got, r = Value(&bin.U32{Value: 7}, bin.MapType)
	require.Equal(t, OK, r)
	m := got.(*bin.Map)
	assert.Equal(t, bin.U32Type, m.KeyType)
	require.Len(t, m.Items, 1)
	assert.Equal(t, uint32(0), m.Items[0].Key.(*bin.U32).Value)
}

func TestContainerToScalar(t *testing.T) {
	one := &bin.List{ValueType: bin.U32Type, Items: bin.ElementList{&bin.U32{Value: 5}}}
	got, r := Value(one, bin.U32Type)
	require.Equal(t, OK, r)
	assert.Equal(t, uint32(5), got.(*bin.U32).Value)

	two := &bin.List{ValueType: bin.U32Type,
		Items: bin.ElementList{&bin.U32{Value: 5}, &bin.U32{Value: 6}}}
	got, r = Value(two, bin.U32Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, uint32(5), got.(*bin.U32).Value)

	_, r = Value(&bin.List{ValueType: bin.U32Type}, bin.U32Type)
	assert.Equal(t, Incomplete, r)

	opt := &bin.Option{ValueType: bin.U32Type, Items: bin.ElementList{&bin.U32{Value: 9}}}
	got, r = Value(opt, bin.U32Type)
	require.Equal(t, OK, r)
	assert.Equal(t, uint32(9), got.(*bin.U32).Value)
}

func TestListToVector(t *testing.T) {
	l := &bin.List{ValueType: bin.F32Type, Items: bin.ElementList{
		&bin.F32{Value: 1}, &bin.F32{Value: 2}, &bin.F32{Value: 3},
	}}
	got, r := Value(l, bin.Vec3Type)
	require.Equal(t, OK, r)
	assert.Equal(t, [3]float32{1, 2, 3}, got.(*bin.Vec3).Value)

	short := &bin.List{ValueType: bin.F32Type, Items: bin.ElementList{&bin.F32{Value: 1}}}
	_, r = Value(short, bin.Vec3Type)
	assert.Equal(t, Incomplete, r)

	long := &bin.List{ValueType: bin.F32Type, Items: bin.ElementList{
		&bin.F32{Value: 1}, &bin.F32{Value: 2}, &bin.F32{Value: 3}, &bin.F32{Value: 4},
	}}
	_, r = Value(long, bin.Vec3Type)
	assert.Equal(t, Lossy, r)
}

func TestListOptionMoves(t *testing.T) {
	two := &bin.List{ValueType: bin.U32Type,
		Items: bin.ElementList{&bin.U32{Value: 5}, &bin.U32{Value: 6}}}
	got, r := Value(two, bin.OptionType)
	require.Equal(t, Lossy, r)
	assert.Len(t, got.(*bin.Option).Items, 1)

	got, r = Value(two, bin.List2Type)
	require.Equal(t, OK, r)
	assert.Len(t, got.(*bin.List2).Items, 2)

	got, r = Value(two, bin.MapType)
	require.Equal(t, OK, r)
	m := got.(*bin.Map)
	require.Len(t, m.Items, 2)
	assert.Equal(t, uint32(1), m.Items[1].Key.(*bin.U32).Value)
}

func TestMapConversions(t *testing.T) {
	m := &bin.Map{KeyType: bin.U32Type, ValueType: bin.StringType, Items: bin.PairList{
		{Key: &bin.U32{Value: 1}, Value: &bin.String{Value: "a"}},
		{Key: &bin.U32{Value: 2}, Value: &bin.String{Value: "b"}},
	}}
	got, r := Value(m, bin.ListType)
	require.Equal(t, Lossy, r)
	assert.Len(t, got.(*bin.List).Items, 2)

	got, r = Value(m, bin.OptionType)
	require.Equal(t, Lossy, r)
	assert.Len(t, got.(*bin.Option).Items, 1)

	_, r = Value(m, bin.U32Type)
	assert.Equal(t, Incomplete, r)

	got, r = Value(m, bin.EmbedType)
	require.Equal(t, Incomplete, r)
	e := got.(*bin.Embed)
	require.Len(t, e.Items, 2)
	assert.Equal(t, uint32(1), e.Items[0].Key.Hash())
}

func TestClassConversions(t *testing.T) {
	e := &bin.Embed{Name: hashes.NewFNV1a("C"), Items: bin.FieldList{
		{Key: hashes.NewFNV1a("f"), Value: &bin.U32{Value: 1}},
	}}
	got, r := Value(e, bin.PointerType)
	require.Equal(t, OK, r)
	p := got.(*bin.Pointer)
	assert.Equal(t, e.Name.Hash(), p.Name.Hash())
	assert.Len(t, p.Items, 1)

	got, r = Value(e, bin.OptionType)
	require.Equal(t, OK, r)
	assert.Equal(t, bin.EmbedType, got.(*bin.Option).ValueType)

	got, r = Value(e, bin.MapType)
	require.Equal(t, Lossy, r)
	assert.Len(t, got.(*bin.Map).Items, 1)

	_, r = Value(e, bin.U32Type)
	assert.Equal(t, Incomplete, r)
}

func TestAnythingToNone(t *testing.T) {
	for _, v := range []bin.Value{
		&bin.U32{Value: 1},
		&bin.String{Value: "x"},
		&bin.Vec2{},
		&bin.Hash{Value: hashes.FNV1aFrom(1)},
		&bin.List{ValueType: bin.U32Type},
		&bin.Map{KeyType: bin.U32Type, ValueType: bin.U32Type},
		&bin.Embed{},
	} {
		_, r := Value(v, bin.NoneType)
		assert.Equal(t, Lossy, r, "from %s", v.Type())
	}
}

func TestNoneToAnything(t *testing.T) {
	for _, target := range []bin.Type{
		bin.U32Type, bin.Vec2Type, bin.StringType, bin.HashType,
		bin.OptionType, bin.ListType, bin.MapType, bin.EmbedType,
	} {
		_, r := Value(&bin.None{}, target)
		assert.Equal(t, Incomplete, r, "to %s", target)
	}
}

func TestTypeValue(t *testing.T) {
	l := &bin.List{ValueType: bin.U32Type, Items: bin.ElementList{
		&bin.U32{Value: 200}, &bin.U32{Value: 300},
	}}
	r := TypeValue(l, bin.U8Type)
	require.Equal(t, Lossy, r)
	assert.Equal(t, bin.U8Type, l.ValueType)
	assert.Equal(t, uint8(200), l.Items[0].(*bin.U8).Value)
	assert.Equal(t, uint8(44), l.Items[1].(*bin.U8).Value)

	assert.Equal(t, Unchanged, TypeValue(l, bin.U8Type))
	assert.Equal(t, Fail, TypeValue(l, bin.ListType))
	assert.Equal(t, Unchanged, TypeValue(&bin.U32{Value: 1}, bin.U8Type))

	m := &bin.Map{KeyType: bin.U32Type, ValueType: bin.U32Type, Items: bin.PairList{
		{Key: &bin.U32{Value: 1}, Value: &bin.U32{Value: 7}},
	}}
	r = TypeValue(m, bin.StringType)
	require.Equal(t, OK, r)
	assert.Equal(t, "7", m.Items[0].Value.(*bin.String).Value)
}

func TestTypeKey(t *testing.T) {
	m := &bin.Map{KeyType: bin.U32Type, ValueType: bin.U32Type, Items: bin.PairList{
		{Key: &bin.U32{Value: 1}, Value: &bin.U32{Value: 7}},
	}}
	r := TypeKey(m, bin.HashType)
	require.Equal(t, OK, r)
	assert.Equal(t, bin.HashType, m.KeyType)
	assert.Equal(t, uint32(1), m.Items[0].Key.(*bin.Hash).Value.Hash())

	assert.Equal(t, Unchanged, TypeKey(m, bin.HashType))
	assert.Equal(t, Fail, TypeKey(m, bin.ListType))
	assert.Equal(t, Unchanged, TypeKey(&bin.U32{}, bin.HashType))
}
