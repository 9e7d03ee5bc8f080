package binio

import (
	"strconv"
	"strings"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/conv"
	"github.com/prop-tools/propbin/hashes"
)

// ReadText parses the whole textual form into b.  Newlines and commas
// separate entries; '#' comments run to end of line; indentation carries no
// meaning.
func ReadText(b *bin.Bin, data []byte) error {
	tr := &textReader{s: textScanner{data: data}}
	b.Reset()
	tr.s.nextNewline()
	for !tr.s.isEOF() {
		var name string
		at := tr.s.pos
		if !tr.s.name(&name) {
			return tr.fail("read_name(section_name)", at)
		}
		at = tr.s.pos
		v, err := tr.readValueType()
		if err != nil {
			return rethrow(err, "read_value_type(section_value)", at)
		}
		if at = tr.s.pos; !tr.s.symbol('=') {
			return tr.fail("read_symbol('=')", at)
		}
		at = tr.s.pos
		if err := tr.readValue(v); err != nil {
			return rethrow(err, "read_value(section_value)", at)
		}
		if at = tr.s.pos; !tr.s.isEOF() && !tr.s.nestedSeparator() {
			return tr.fail("read_nested_separator()", at)
		}
		b.Set(name, v)
	}
	return nil
}

// ReadTextValue parses one value of v's type into v.
func ReadTextValue(v bin.Value, data []byte) error {
	tr := &textReader{s: textScanner{data: data}}
	tr.s.nextNewline()
	return tr.readValue(v)
}

// ReadTextFields parses a field list, one "name: type = value" per entry.
func ReadTextFields(list *bin.FieldList, data []byte) error {
	tr := &textReader{s: textScanner{data: data}}
	tr.s.nextNewline()
	for !tr.s.isEOF() {
		at := tr.s.pos
		if err := tr.readFieldInto(list); err != nil {
			return rethrow(err, "read_field()", at)
		}
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEOF() {
			return tr.fail("read_nested_separator_or_eof()", at)
		}
	}
	return nil
}

// ReadTextElements parses elements of the given type, one per entry.
func ReadTextElements(list *bin.ElementList, valueType bin.Type, data []byte) error {
	tr := &textReader{s: textScanner{data: data}}
	tr.s.nextNewline()
	for !tr.s.isEOF() {
		at := tr.s.pos
		if err := tr.readElementInto(list, valueType); err != nil {
			return rethrow(err, "read_element()", at)
		}
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEOF() {
			return tr.fail("read_nested_separator_or_eof()", at)
		}
	}
	return nil
}

// ReadTextPairs parses "key = value" pairs of the given types.
func ReadTextPairs(list *bin.PairList, keyType, valueType bin.Type, data []byte) error {
	tr := &textReader{s: textScanner{data: data}}
	tr.s.nextNewline()
	for !tr.s.isEOF() {
		at := tr.s.pos
		if err := tr.readPairInto(list, keyType, valueType); err != nil {
			return rethrow(err, "read_pair()", at)
		}
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEOF() {
			return tr.fail("read_nested_separator_or_eof()", at)
		}
	}
	return nil
}

// textScanner is the cursor over the text buffer.  Space, tab, and carriage
// return are skippable; newline acts as a soft separator.
type textScanner struct {
	data []byte
	pos  int
}

func (s *textScanner) isEOF() bool { return s.pos == len(s.data) }

func isBlank(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

func isWordChar(c byte) bool {
	return c == '_' || c == '+' || c == '-' || c == '.' ||
		(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func (s *textScanner) skipBlank() {
	for !s.isEOF() && isBlank(s.data[s.pos]) {
		s.pos++
	}
}

func (s *textScanner) symbol(c byte) bool {
	s.skipBlank()
	if !s.isEOF() && s.data[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

// nextNewline consumes blanks, newlines, and comments; it reports whether a
// newline was crossed.
func (s *textScanner) nextNewline() bool {
	comment := false
	newline := false
	for !s.isEOF() {
		c := s.data[s.pos]
		switch {
		case isBlank(c):
			s.pos++
		case c == '\n':
			comment = false
			newline = true
			s.pos++
		case c == '#':
			comment = true
			s.pos++
		case comment:
			s.pos++
		default:
			return newline
		}
	}
	return newline
}

func (s *textScanner) word() string {
	s.skipBlank()
	start := s.pos
	for !s.isEOF() && isWordChar(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *textScanner) nestedBegin(end *bool) bool {
	if s.symbol('{') {
		s.nextNewline()
		*end = s.symbol('}')
		return true
	}
	return false
}

func (s *textScanner) nestedSeparator() bool {
	if s.nextNewline() {
		return true
	}
	if s.symbol(',') {
		s.nextNewline()
		return true
	}
	return false
}

func (s *textScanner) nestedSeparatorOrEnd(end *bool) bool {
	if s.symbol('}') {
		*end = true
		return true
	}
	if s.nestedSeparator() {
		*end = s.symbol('}')
		return true
	}
	return false
}

func (s *textScanner) nestedSeparatorOrEOF() bool {
	if s.isEOF() {
		return true
	}
	return s.nestedSeparator()
}

func (s *textScanner) quoted(v *string) bool {
	s.skipBlank()
	if s.isEOF() {
		return false
	}
	if c := s.data[s.pos]; c != '"' && c != '\'' {
		return false
	}
	rest := string(s.data[s.pos:])
	end := conv.QuoteEnd(rest)
	if end == len(rest) {
		return false
	}
	body, ok := conv.Unquote(rest[1:end])
	if !ok {
		return false
	}
	*v = body
	s.pos += end + 1
	return true
}

func (s *textScanner) hexWord(bits int) (uint64, bool) {
	w := s.word()
	if len(w) < 2 || w[0] != '0' || (w[1] != 'x' && w[1] != 'X') {
		return 0, false
	}
	h, err := strconv.ParseUint(w[2:], 16, bits)
	if err != nil {
		return 0, false
	}
	return h, true
}

func (s *textScanner) name(v *string) bool {
	w := s.word()
	if w == "" {
		return false
	}
	if c := w[0]; !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && c != '_' {
		return false
	}
	for i := 0; i < len(w); i++ {
		c := w[i]
		if c != '_' && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	*v = w
	return true
}

func (s *textScanner) hashName(v *hashes.FNV1a) bool {
	backup := s.pos
	if h, ok := s.hexWord(32); ok {
		*v = hashes.FNV1aFrom(uint32(h))
		return true
	}
	s.pos = backup
	var name string
	if s.name(&name) {
		*v = hashes.NewFNV1a(name)
		return true
	}
	return false
}

func (s *textScanner) hashString32(v *hashes.FNV1a) bool {
	backup := s.pos
	if h, ok := s.hexWord(32); ok {
		*v = hashes.FNV1aFrom(uint32(h))
		return true
	}
	s.pos = backup
	var str string
	if s.quoted(&str) {
		*v = hashes.NewFNV1a(str)
		return true
	}
	return false
}

func (s *textScanner) hashString64(v *hashes.XXH64) bool {
	backup := s.pos
	if h, ok := s.hexWord(64); ok {
		*v = hashes.XXH64From(h)
		return true
	}
	s.pos = backup
	var str string
	if s.quoted(&str) {
		*v = hashes.NewXXH64(str)
		return true
	}
	return false
}

func (s *textScanner) boolean(v *bool) bool {
	switch s.word() {
	case "true":
		*v = true
		return true
	case "false":
		*v = false
		return true
	}
	return false
}

func (s *textScanner) typeName(v *bin.Type) bool {
	t, err := bin.ParseType(s.word())
	if err != nil {
		return false
	}
	*v = t
	return true
}

type textReader struct {
	s textScanner
}

func (tr *textReader) fail(msg string, off int) error {
	return newTrace(ErrFormat, tr.s.data, true).push(msg, off)
}

// readValueType parses ": typename" with bracketed element types for the
// containers and returns a fresh value of that shape.
func (tr *textReader) readValueType() (bin.Value, error) {
	at := tr.s.pos
	if !tr.s.symbol(':') {
		return nil, tr.fail("read_symbol(':')", at)
	}
	var t bin.Type
	if at = tr.s.pos; !tr.s.typeName(&t) {
		return nil, tr.fail("read_typename(type)", at)
	}
	switch t {
	case bin.ListType, bin.List2Type, bin.OptionType:
		var valueType bin.Type
		if at = tr.s.pos; !tr.s.symbol('[') {
			return nil, tr.fail("read_symbol('[')", at)
		}
		if at = tr.s.pos; !tr.s.typeName(&valueType) {
			return nil, tr.fail("read_typename(valueType)", at)
		}
		if valueType.IsContainer() {
			return nil, tr.fail("!is_container(valueType)", at)
		}
		if at = tr.s.pos; !tr.s.symbol(']') {
			return nil, tr.fail("read_symbol(']')", at)
		}
		switch t {
		case bin.ListType:
			return &bin.List{ValueType: valueType}, nil
		case bin.List2Type:
			return &bin.List2{ValueType: valueType}, nil
		default:
			return &bin.Option{ValueType: valueType}, nil
		}
	case bin.MapType:
		m := &bin.Map{}
		if at = tr.s.pos; !tr.s.symbol('[') {
			return nil, tr.fail("read_symbol('[')", at)
		}
		if at = tr.s.pos; !tr.s.typeName(&m.KeyType) {
			return nil, tr.fail("read_typename(keyType)", at)
		}
		if !m.KeyType.IsPrimitive() {
			return nil, tr.fail("is_primitive(keyType)", at)
		}
		if at = tr.s.pos; !tr.s.symbol(',') {
			return nil, tr.fail("read_symbol(',')", at)
		}
		if at = tr.s.pos; !tr.s.typeName(&m.ValueType) {
			return nil, tr.fail("read_typename(valueType)", at)
		}
		if m.ValueType.IsContainer() {
			return nil, tr.fail("!is_container(valueType)", at)
		}
		if at = tr.s.pos; !tr.s.symbol(']') {
			return nil, tr.fail("read_symbol(']')", at)
		}
		return m, nil
	default:
		return bin.New(t), nil
	}
}

func (tr *textReader) readFieldInto(list *bin.FieldList) error {
	var field bin.Field
	at := tr.s.pos
	if !tr.s.hashName(&field.Key) {
		return tr.fail("read_hash_name(item.key)", at)
	}
	at = tr.s.pos
	v, err := tr.readValueType()
	if err != nil {
		return rethrow(err, "read_value_type(item.value)", at)
	}
	if at = tr.s.pos; !tr.s.symbol('=') {
		return tr.fail("read_symbol('=')", at)
	}
	at = tr.s.pos
	if err := tr.readValue(v); err != nil {
		return rethrow(err, "read_value(item.value)", at)
	}
	field.Value = v
	*list = append(*list, field)
	return nil
}

func (tr *textReader) readElementInto(list *bin.ElementList, valueType bin.Type) error {
	item := bin.New(valueType)
	at := tr.s.pos
	if err := tr.readValue(item); err != nil {
		return rethrow(err, "read_value(item.value)", at)
	}
	*list = append(*list, item)
	return nil
}

func (tr *textReader) readPairInto(list *bin.PairList, keyType, valueType bin.Type) error {
	key := bin.New(keyType)
	at := tr.s.pos
	if err := tr.readValue(key); err != nil {
		return rethrow(err, "read_value(item.key)", at)
	}
	if at = tr.s.pos; !tr.s.symbol('=') {
		return tr.fail("read_symbol('=')", at)
	}
	item := bin.New(valueType)
	at = tr.s.pos
	if err := tr.readValue(item); err != nil {
		return rethrow(err, "read_value(item.value)", at)
	}
	*list = append(*list, bin.Pair{Key: key, Value: item})
	return nil
}

func (tr *textReader) readValue(v bin.Value) error {
	at := tr.s.pos
	switch v := v.(type) {
	case *bin.None:
		var name string
		if !tr.s.name(&name) || name != "null" {
			return tr.fail(`name == "null"`, at)
		}
	case *bin.Bool:
		if !tr.s.boolean(&v.Value) {
			return tr.fail("read_bool(value)", at)
		}
	case *bin.Flag:
		if !tr.s.boolean(&v.Value) {
			return tr.fail("read_bool(value)", at)
		}
	case *bin.I8:
		return tr.readInt(at, 8, func(n int64) { v.Value = int8(n) })
	case *bin.U8:
		return tr.readUint(at, 8, func(n uint64) { v.Value = uint8(n) })
	case *bin.I16:
		return tr.readInt(at, 16, func(n int64) { v.Value = int16(n) })
	case *bin.U16:
		return tr.readUint(at, 16, func(n uint64) { v.Value = uint16(n) })
	case *bin.I32:
		return tr.readInt(at, 32, func(n int64) { v.Value = int32(n) })
	case *bin.U32:
		return tr.readUint(at, 32, func(n uint64) { v.Value = uint32(n) })
	case *bin.I64:
		return tr.readInt(at, 64, func(n int64) { v.Value = n })
	case *bin.U64:
		return tr.readUint(at, 64, func(n uint64) { v.Value = n })
	case *bin.F32:
		f, ok := conv.ParseFloat32(tr.s.word())
		if !ok {
			return tr.fail("read_number(value)", at)
		}
		v.Value = f
	case *bin.Vec2:
		return tr.readFloatArray(v.Value[:])
	case *bin.Vec3:
		return tr.readFloatArray(v.Value[:])
	case *bin.Vec4:
		return tr.readFloatArray(v.Value[:])
	case *bin.Mtx44:
		return tr.readFloatArray(v.Value[:])
	case *bin.RGBA:
		return tr.readByteArray(v.Value[:])
	case *bin.String:
		if !tr.s.quoted(&v.Value) {
			return tr.fail("read_string(value)", at)
		}
	case *bin.Hash:
		if !tr.s.hashString32(&v.Value) {
			return tr.fail("read_hash_string(value)", at)
		}
	case *bin.Link:
		if !tr.s.hashString32(&v.Value) {
			return tr.fail("read_hash_string(value)", at)
		}
	case *bin.File:
		if !tr.s.hashString64(&v.Value) {
			return tr.fail("read_hash_string(value)", at)
		}
	case *bin.Embed:
		if !tr.s.hashName(&v.Name) {
			return tr.fail("read_hash_name(value.name)", at)
		}
		return tr.readFields(&v.Items)
	case *bin.Pointer:
		if !tr.s.hashName(&v.Name) {
			return tr.fail("read_hash_name(value.name)", at)
		}
		if v.Name.Str() == "null" {
			v.Name = hashes.FNV1a{}
			return nil
		}
		return tr.readFields(&v.Items)
	case *bin.Option:
		end := false
		if !tr.s.nestedBegin(&end) {
			return tr.fail("read_nested_begin(end)", at)
		}
		if !end {
			if err := tr.readElementInto(&v.Items, v.ValueType); err != nil {
				return err
			}
			if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
				return tr.fail("read_nested_separator_or_end(end)", at)
			}
			if !end {
				return tr.fail("end", tr.s.pos)
			}
		}
	case *bin.List:
		return tr.readElements(&v.Items, v.ValueType)
	case *bin.List2:
		return tr.readElements(&v.Items, v.ValueType)
	case *bin.Map:
		end := false
		if !tr.s.nestedBegin(&end) {
			return tr.fail("read_nested_begin(end)", at)
		}
		for !end {
			if err := tr.readPairInto(&v.Items, v.KeyType, v.ValueType); err != nil {
				return err
			}
			if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
				return tr.fail("read_nested_separator_or_end(end)", at)
			}
		}
	default:
		return tr.fail("valid type", at)
	}
	return nil
}

func (tr *textReader) readInt(at int, bits int, set func(int64)) error {
	n, err := strconv.ParseInt(tr.s.word(), 10, bits)
	if err != nil {
		return tr.fail("read_number(value)", at)
	}
	set(n)
	return nil
}

func (tr *textReader) readUint(at int, bits int, set func(uint64)) error {
	w := tr.s.word()
	w = strings.TrimPrefix(w, "+")
	n, err := strconv.ParseUint(w, 10, bits)
	if err != nil {
		return tr.fail("read_number(value)", at)
	}
	set(n)
	return nil
}

func (tr *textReader) readElements(items *bin.ElementList, valueType bin.Type) error {
	end := false
	at := tr.s.pos
	if !tr.s.nestedBegin(&end) {
		return tr.fail("read_nested_begin(end)", at)
	}
	for !end {
		if err := tr.readElementInto(items, valueType); err != nil {
			return err
		}
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
			return tr.fail("read_nested_separator_or_end(end)", at)
		}
	}
	return nil
}

func (tr *textReader) readFields(items *bin.FieldList) error {
	end := false
	at := tr.s.pos
	if !tr.s.nestedBegin(&end) {
		return tr.fail("read_nested_begin(end)", at)
	}
	for !end {
		if err := tr.readFieldInto(items); err != nil {
			return err
		}
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
			return tr.fail("read_nested_separator_or_end(end)", at)
		}
	}
	return nil
}

func (tr *textReader) readFloatArray(dst []float32) error {
	end := false
	count := 0
	at := tr.s.pos
	if !tr.s.nestedBegin(&end) {
		return tr.fail("read_nested_begin(end)", at)
	}
	for !end {
		if count >= len(dst) {
			return tr.fail("counter < size", tr.s.pos)
		}
		at = tr.s.pos
		f, ok := conv.ParseFloat32(tr.s.word())
		if !ok {
			return tr.fail("read_number(value)", at)
		}
		dst[count] = f
		count++
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
			return tr.fail("read_nested_separator_or_end(end)", at)
		}
	}
	if count != len(dst) {
		return tr.fail("counter == size", tr.s.pos)
	}
	return nil
}

func (tr *textReader) readByteArray(dst []uint8) error {
	end := false
	count := 0
	at := tr.s.pos
	if !tr.s.nestedBegin(&end) {
		return tr.fail("read_nested_begin(end)", at)
	}
	for !end {
		if count >= len(dst) {
			return tr.fail("counter < size", tr.s.pos)
		}
		at = tr.s.pos
		n, err := strconv.ParseUint(tr.s.word(), 10, 8)
		if err != nil {
			return tr.fail("read_number(value)", at)
		}
		dst[count] = uint8(n)
		count++
		if at = tr.s.pos; !tr.s.nestedSeparatorOrEnd(&end) {
			return tr.fail("read_nested_separator_or_end(end)", at)
		}
	}
	if count != len(dst) {
		return tr.fail("counter == size", tr.s.pos)
	}
	return nil
}
