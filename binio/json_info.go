package binio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// WriteJSONInfo renders the lossy inspection projection: structs flatten to
// objects keyed by field name with a "~class" marker, maps key by the
// string form of each key, options collapse to null or the inner value, and
// lists are plain arrays.  The shape is write-only; type information does
// not survive it.
func WriteJSONInfo(b *bin.Bin, indent int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range b.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		jsonString(&buf, b.Sections[i].Name)
		buf.WriteByte(':')
		if err := jsonInfoValue(&buf, b.Sections[i].Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return indentJSON(buf.Bytes(), indent)
}

func infoHex32(h hashes.FNV1a) string {
	if h.Str() != "" {
		return h.Str()
	}
	return "0x" + strconv.FormatUint(uint64(h.Hash()), 16)
}

func infoHex64(h hashes.XXH64) string {
	if h.Str() != "" {
		return h.Str()
	}
	return "0x" + strconv.FormatUint(h.Hash(), 16)
}

func jsonInfoValue(buf *bytes.Buffer, v bin.Value) error {
	switch v := v.(type) {
	case *bin.Hash:
		jsonString(buf, infoHex32(v.Value))
	case *bin.Link:
		jsonString(buf, infoHex32(v.Value))
	case *bin.File:
		jsonString(buf, infoHex64(v.Value))
	case *bin.Option:
		if len(v.Items) == 0 {
			buf.WriteString("null")
			return nil
		}
		return jsonInfoValue(buf, v.Items[0])
	case *bin.List:
		return jsonInfoArray(buf, v.Items)
	case *bin.List2:
		return jsonInfoArray(buf, v.Items)
	case *bin.Map:
		buf.WriteByte('{')
		for i := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := jsonInfoKey(v.Items[i].Key)
			if err != nil {
				return err
			}
			jsonString(buf, key)
			buf.WriteByte(':')
			if err := jsonInfoValue(buf, v.Items[i].Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *bin.Embed:
		return jsonInfoClass(buf, v.Name, v.Items)
	case *bin.Pointer:
		return jsonInfoClass(buf, v.Name, v.Items)
	default:
		return jsonValue(buf, v)
	}
	return nil
}

func jsonInfoArray(buf *bytes.Buffer, items bin.ElementList) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := jsonInfoValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func jsonInfoClass(buf *bytes.Buffer, name hashes.FNV1a, items bin.FieldList) error {
	buf.WriteString(`{"~class":`)
	jsonString(buf, infoHex32(name))
	for i := range items {
		buf.WriteByte(',')
		jsonString(buf, infoHex32(items[i].Key))
		buf.WriteByte(':')
		if err := jsonInfoValue(buf, items[i].Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// jsonInfoKey renders a map key as the string it would print as, falling
// back to the compact JSON text for non-string keys.
func jsonInfoKey(key bin.Value) (string, error) {
	switch key := key.(type) {
	case *bin.String:
		return key.Value, nil
	case *bin.Hash:
		return infoHex32(key.Value), nil
	case *bin.Link:
		return infoHex32(key.Value), nil
	case *bin.File:
		return infoHex64(key.Value), nil
	}
	var tmp bytes.Buffer
	if err := jsonInfoValue(&tmp, key); err != nil {
		return "", fmt.Errorf("%w: map key: %v", ErrSemantic, err)
	}
	return tmp.String(), nil
}
