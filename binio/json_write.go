package binio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/conv"
	"github.com/prop-tools/propbin/hashes"
)

// WriteJSON renders the lossless JSON projection: every container carries
// its element type metadata so the tree reads back exactly.
func WriteJSON(b *bin.Bin, indent int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range b.Sections {
		s := &b.Sections[i]
		if i > 0 {
			buf.WriteByte(',')
		}
		jsonString(&buf, s.Name)
		buf.WriteString(`:{"type":`)
		jsonString(&buf, s.Value.Type().String())
		buf.WriteString(`,"value":`)
		if err := jsonValue(&buf, s.Value); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return indentJSON(buf.Bytes(), indent)
}

func indentJSON(compact []byte, indent int) ([]byte, error) {
	if indent <= 0 {
		return compact, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func jsonString(buf *bytes.Buffer, s string) {
	d, err := json.Marshal(s)
	if err != nil {
		d = []byte(`""`)
	}
	buf.Write(d)
}

func jsonHash32(buf *bytes.Buffer, h hashes.FNV1a) {
	if h.Str() != "" {
		jsonString(buf, h.Str())
		return
	}
	buf.WriteString(strconv.FormatUint(uint64(h.Hash()), 10))
}

func jsonHash64(buf *bytes.Buffer, h hashes.XXH64) {
	if h.Str() != "" {
		jsonString(buf, h.Str())
		return
	}
	buf.WriteString(strconv.FormatUint(h.Hash(), 10))
}

func jsonValue(buf *bytes.Buffer, v bin.Value) error {
	switch v := v.(type) {
	case *bin.None:
		buf.WriteString("null")
	case *bin.Bool:
		buf.WriteString(conv.FormatBool(v.Value))
	case *bin.Flag:
		buf.WriteString(conv.FormatBool(v.Value))
	case *bin.I8:
		buf.WriteString(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U8:
		buf.WriteString(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I16:
		buf.WriteString(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U16:
		buf.WriteString(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I32:
		buf.WriteString(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U32:
		buf.WriteString(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I64:
		buf.WriteString(strconv.FormatInt(v.Value, 10))
	case *bin.U64:
		buf.WriteString(strconv.FormatUint(v.Value, 10))
	case *bin.F32:
		buf.WriteString(conv.FormatFloat32(v.Value))
	case *bin.Vec2:
		jsonFloats(buf, v.Value[:])
	case *bin.Vec3:
		jsonFloats(buf, v.Value[:])
	case *bin.Vec4:
		jsonFloats(buf, v.Value[:])
	case *bin.Mtx44:
		jsonFloats(buf, v.Value[:])
	case *bin.RGBA:
		buf.WriteByte('[')
		for i, b := range v.Value {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatUint(uint64(b), 10))
		}
		buf.WriteByte(']')
	case *bin.String:
		jsonString(buf, v.Value)
	case *bin.Hash:
		jsonHash32(buf, v.Value)
	case *bin.Link:
		jsonHash32(buf, v.Value)
	case *bin.File:
		jsonHash64(buf, v.Value)
	case *bin.Option:
		return jsonElements(buf, v.ValueType, v.Items)
	case *bin.List:
		return jsonElements(buf, v.ValueType, v.Items)
	case *bin.List2:
		return jsonElements(buf, v.ValueType, v.Items)
	case *bin.Map:
		buf.WriteString(`{"keyType":`)
		jsonString(buf, v.KeyType.String())
		buf.WriteString(`,"valueType":`)
		jsonString(buf, v.ValueType.String())
		buf.WriteString(`,"items":[`)
		for i := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"key":`)
			if err := jsonValue(buf, v.Items[i].Key); err != nil {
				return err
			}
			buf.WriteString(`,"value":`)
			if err := jsonValue(buf, v.Items[i].Value); err != nil {
				return err
			}
			buf.WriteByte('}')
		}
		buf.WriteString(`]}`)
	case *bin.Embed:
		return jsonClass(buf, v.Name, v.Items)
	case *bin.Pointer:
		return jsonClass(buf, v.Name, v.Items)
	default:
		return fmt.Errorf("%w: cannot render %s as json", ErrSemantic, v.Type())
	}
	return nil
}

func jsonFloats(buf *bytes.Buffer, vals []float32) {
	buf.WriteByte('[')
	for i, f := range vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(conv.FormatFloat32(f))
	}
	buf.WriteByte(']')
}

func jsonElements(buf *bytes.Buffer, valueType bin.Type, items bin.ElementList) error {
	buf.WriteString(`{"valueType":`)
	jsonString(buf, valueType.String())
	buf.WriteString(`,"items":[`)
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := jsonValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteString(`]}`)
	return nil
}

func jsonClass(buf *bytes.Buffer, name hashes.FNV1a, items bin.FieldList) error {
	buf.WriteString(`{"name":`)
	jsonHash32(buf, name)
	buf.WriteString(`,"items":[`)
	for i := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"key":`)
		jsonHash32(buf, items[i].Key)
		buf.WriteString(`,"type":`)
		jsonString(buf, items[i].Value.Type().String())
		buf.WriteString(`,"value":`)
		if err := jsonValue(buf, items[i].Value); err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return nil
}
