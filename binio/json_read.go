package binio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// ReadJSON parses the lossless JSON projection into b.  Errors carry a path
// such as bin['entries'].value.items[3].value.
func ReadJSON(b *bin.Bin, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: bad json at /: %v", ErrFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return jsonErr("bin", "is_object()", "bin")
	}
	b.Reset()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: bad json: %v", ErrFormat, err)
		}
		key := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: bad json at bin[%q]: %v", ErrFormat, key, err)
		}
		path := "bin['" + key + "']"
		v, err := typedFromJSON(raw, path)
		if err != nil {
			return err
		}
		b.Set(key, v)
	}
	return nil
}

func jsonErr(typeName, assertion, path string) error {
	return fmt.Errorf("%w: read %s %s at %s", ErrFormat, typeName, assertion, path)
}

// typedFromJSON decodes a {"type": ..., "value": ...} wrapper.
func typedFromJSON(raw json.RawMessage, path string) (bin.Value, error) {
	var wrapper struct {
		Type  *string         `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, jsonErr("value", "is_object()", path)
	}
	if wrapper.Type == nil {
		return nil, jsonErr("value", "contains(type)", path)
	}
	if wrapper.Value == nil {
		return nil, jsonErr("value", "contains(value)", path)
	}
	t, err := bin.ParseType(*wrapper.Type)
	if err != nil {
		return nil, jsonErr("value", "type_name_to_type(type)", path)
	}
	v := bin.New(t)
	if err := valueFromJSON(v, wrapper.Value, path+".value"); err != nil {
		return nil, err
	}
	return v, nil
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func hash32FromJSON(v *hashes.FNV1a, raw json.RawMessage, typeName, path string) error {
	if isJSONString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return jsonErr(typeName, "is_string()", path)
		}
		*v = hashes.NewFNV1a(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	h, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	*v = hashes.FNV1aFrom(uint32(h))
	return nil
}

func hash64FromJSON(v *hashes.XXH64, raw json.RawMessage, typeName, path string) error {
	if isJSONString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return jsonErr(typeName, "is_string()", path)
		}
		*v = hashes.NewXXH64(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	h, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	*v = hashes.XXH64From(h)
	return nil
}

func valueFromJSON(v bin.Value, raw json.RawMessage, path string) error {
	typeName := v.Type().String()
	switch v := v.(type) {
	case *bin.None:
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return jsonErr(typeName, "is_null()", path)
		}
	case *bin.Bool:
		return jsonBool(&v.Value, raw, typeName, path)
	case *bin.Flag:
		return jsonBool(&v.Value, raw, typeName, path)
	case *bin.I8:
		return jsonInt(raw, typeName, path, 8, func(n int64) { v.Value = int8(n) })
	case *bin.U8:
		return jsonUint(raw, typeName, path, 8, func(n uint64) { v.Value = uint8(n) })
	case *bin.I16:
		return jsonInt(raw, typeName, path, 16, func(n int64) { v.Value = int16(n) })
	case *bin.U16:
		return jsonUint(raw, typeName, path, 16, func(n uint64) { v.Value = uint16(n) })
	case *bin.I32:
		return jsonInt(raw, typeName, path, 32, func(n int64) { v.Value = int32(n) })
	case *bin.U32:
		return jsonUint(raw, typeName, path, 32, func(n uint64) { v.Value = uint32(n) })
	case *bin.I64:
		return jsonInt(raw, typeName, path, 64, func(n int64) { v.Value = n })
	case *bin.U64:
		return jsonUint(raw, typeName, path, 64, func(n uint64) { v.Value = n })
	case *bin.F32:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return jsonErr(typeName, "is_number()", path)
		}
		f, err := strconv.ParseFloat(n.String(), 32)
		if err != nil {
			return jsonErr(typeName, "is_number()", path)
		}
		v.Value = float32(f)
	case *bin.Vec2:
		return jsonFloatArray(v.Value[:], raw, typeName, path)
	case *bin.Vec3:
		return jsonFloatArray(v.Value[:], raw, typeName, path)
	case *bin.Vec4:
		return jsonFloatArray(v.Value[:], raw, typeName, path)
	case *bin.Mtx44:
		return jsonFloatArray(v.Value[:], raw, typeName, path)
	case *bin.RGBA:
		var items []json.Number
		if err := json.Unmarshal(raw, &items); err != nil {
			return jsonErr(typeName, "is_array()", path)
		}
		if len(items) > len(v.Value) {
			return jsonErr(typeName, "size() <= size", path)
		}
		for i, n := range items {
			b, err := strconv.ParseUint(n.String(), 10, 8)
			if err != nil {
				return jsonErr(typeName, "is_number()", path)
			}
			v.Value[i] = uint8(b)
		}
	case *bin.String:
		if err := json.Unmarshal(raw, &v.Value); err != nil {
			return jsonErr(typeName, "is_string()", path)
		}
	case *bin.Hash:
		return hash32FromJSON(&v.Value, raw, typeName, path)
	case *bin.Link:
		return hash32FromJSON(&v.Value, raw, typeName, path)
	case *bin.File:
		return hash64FromJSON(&v.Value, raw, typeName, path)
	case *bin.Option:
		items, err := jsonContainerHeader(&v.ValueType, raw, typeName, path)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			item := bin.New(v.ValueType)
			if err := valueFromJSON(item, items[0], path+".items[0]"); err != nil {
				return err
			}
			v.Items = append(v.Items, item)
		}
	case *bin.List:
		return jsonListItems(&v.ValueType, &v.Items, raw, typeName, path)
	case *bin.List2:
		return jsonListItems(&v.ValueType, &v.Items, raw, typeName, path)
	case *bin.Map:
		return jsonMapItems(v, raw, typeName, path)
	case *bin.Embed:
		return jsonClassItems(&v.Name, &v.Items, raw, typeName, path)
	case *bin.Pointer:
		return jsonClassItems(&v.Name, &v.Items, raw, typeName, path)
	default:
		return jsonErr(typeName, "known type", path)
	}
	return nil
}

func jsonBool(dst *bool, raw json.RawMessage, typeName, path string) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return jsonErr(typeName, "is_boolean()", path)
	}
	return nil
}

func jsonInt(raw json.RawMessage, typeName, path string, bits int, set func(int64)) error {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	i, err := strconv.ParseInt(n.String(), 10, bits)
	if err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	set(i)
	return nil
}

func jsonUint(raw json.RawMessage, typeName, path string, bits int, set func(uint64)) error {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	u, err := strconv.ParseUint(n.String(), 10, bits)
	if err != nil {
		return jsonErr(typeName, "is_number()", path)
	}
	set(u)
	return nil
}

func jsonFloatArray(dst []float32, raw json.RawMessage, typeName, path string) error {
	var items []json.Number
	if err := json.Unmarshal(raw, &items); err != nil {
		return jsonErr(typeName, "is_array()", path)
	}
	if len(items) > len(dst) {
		return jsonErr(typeName, "size() <= size", path)
	}
	for i, n := range items {
		f, err := strconv.ParseFloat(n.String(), 32)
		if err != nil {
			return jsonErr(typeName, "is_number()", path)
		}
		dst[i] = float32(f)
	}
	return nil
}

// jsonContainerHeader decodes {"valueType": ..., "items": [...]} and
// returns the raw items.
func jsonContainerHeader(valueType *bin.Type, raw json.RawMessage, typeName, path string) ([]json.RawMessage, error) {
	var wrapper struct {
		ValueType *string           `json:"valueType"`
		Items     []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, jsonErr(typeName, "is_object()", path)
	}
	if wrapper.ValueType == nil {
		return nil, jsonErr(typeName, "contains(valueType)", path)
	}
	if wrapper.Items == nil {
		return nil, jsonErr(typeName, "contains(items)", path)
	}
	t, err := bin.ParseType(*wrapper.ValueType)
	if err != nil {
		return nil, jsonErr(typeName, "type_name_to_type(valueType)", path)
	}
	*valueType = t
	return wrapper.Items, nil
}

func jsonListItems(valueType *bin.Type, items *bin.ElementList, raw json.RawMessage, typeName, path string) error {
	rawItems, err := jsonContainerHeader(valueType, raw, typeName, path)
	if err != nil {
		return err
	}
	for i, rawItem := range rawItems {
		item := bin.New(*valueType)
		if err := valueFromJSON(item, rawItem, fmt.Sprintf("%s.items[%d]", path, i)); err != nil {
			return err
		}
		*items = append(*items, item)
	}
	return nil
}

func jsonMapItems(v *bin.Map, raw json.RawMessage, typeName, path string) error {
	var wrapper struct {
		KeyType   *string `json:"keyType"`
		ValueType *string `json:"valueType"`
		Items     []struct {
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return jsonErr(typeName, "is_object()", path)
	}
	if wrapper.KeyType == nil {
		return jsonErr(typeName, "contains(keyType)", path)
	}
	if wrapper.ValueType == nil {
		return jsonErr(typeName, "contains(valueType)", path)
	}
	if wrapper.Items == nil {
		return jsonErr(typeName, "contains(items)", path)
	}
	keyType, err := bin.ParseType(*wrapper.KeyType)
	if err != nil {
		return jsonErr(typeName, "type_name_to_type(keyType)", path)
	}
	valueType, err := bin.ParseType(*wrapper.ValueType)
	if err != nil {
		return jsonErr(typeName, "type_name_to_type(valueType)", path)
	}
	v.KeyType, v.ValueType = keyType, valueType
	for i, rawItem := range wrapper.Items {
		itemPath := fmt.Sprintf("%s.items[%d]", path, i)
		if rawItem.Key == nil {
			return jsonErr("pair", "contains(key)", itemPath)
		}
		if rawItem.Value == nil {
			return jsonErr("pair", "contains(value)", itemPath)
		}
		key := bin.New(keyType)
		if err := valueFromJSON(key, rawItem.Key, itemPath+".key"); err != nil {
			return err
		}
		item := bin.New(valueType)
		if err := valueFromJSON(item, rawItem.Value, itemPath+".value"); err != nil {
			return err
		}
		v.Items = append(v.Items, bin.Pair{Key: key, Value: item})
	}
	return nil
}

func jsonClassItems(name *hashes.FNV1a, items *bin.FieldList, raw json.RawMessage, typeName, path string) error {
	var wrapper struct {
		Name  json.RawMessage `json:"name"`
		Items []struct {
			Key   json.RawMessage `json:"key"`
			Type  *string         `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return jsonErr(typeName, "is_object()", path)
	}
	if wrapper.Name == nil {
		return jsonErr(typeName, "contains(name)", path)
	}
	if wrapper.Items == nil {
		return jsonErr(typeName, "contains(items)", path)
	}
	if err := hash32FromJSON(name, wrapper.Name, typeName, path+".name"); err != nil {
		return err
	}
	for i, rawItem := range wrapper.Items {
		itemPath := fmt.Sprintf("%s.items[%d]", path, i)
		var field bin.Field
		if rawItem.Key == nil {
			return jsonErr("field", "contains(key)", itemPath)
		}
		if rawItem.Type == nil {
			return jsonErr("field", "contains(type)", itemPath)
		}
		if rawItem.Value == nil {
			return jsonErr("field", "contains(value)", itemPath)
		}
		if err := hash32FromJSON(&field.Key, rawItem.Key, "field", itemPath+".key"); err != nil {
			return err
		}
		t, err := bin.ParseType(*rawItem.Type)
		if err != nil {
			return jsonErr("field", "type_name_to_type(type)", itemPath)
		}
		field.Value = bin.New(t)
		if err := valueFromJSON(field.Value, rawItem.Value, itemPath+".value"); err != nil {
			return err
		}
		*items = append(*items, field)
	}
	return nil
}
