package binio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/conv"
	"github.com/prop-tools/propbin/hashes"
)

// WriteOption adjusts the text writer.
type WriteOption func(*textWriter)

// WriteIndent sets the indent width in spaces.
func WriteIndent(n int) WriteOption {
	return func(tw *textWriter) { tw.indentSize = n }
}

// WriteColors enables ANSI colorization of the output.
func WriteColors(c *Colors) WriteOption {
	return func(tw *textWriter) { tw.colors = c }
}

// WriteText renders b in the textual form, starting with the #PROP_text
// comment line.  Sections appear in the tree's iteration order.
func WriteText(b *bin.Bin, opts ...WriteOption) ([]byte, error) {
	tw := newTextWriter(opts...)
	tw.raw("#PROP_text\n")
	for i := range b.Sections {
		if err := tw.writeSection(&b.Sections[i]); err != nil {
			return nil, err
		}
	}
	return []byte(tw.b.String()), nil
}

// WriteTextValue renders a single value.
func WriteTextValue(v bin.Value, opts ...WriteOption) ([]byte, error) {
	tw := newTextWriter(opts...)
	if err := tw.writeValue(v); err != nil {
		return nil, err
	}
	return []byte(tw.b.String()), nil
}

func newTextWriter(opts ...WriteOption) *textWriter {
	tw := &textWriter{indentSize: 2}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

type textWriter struct {
	b          strings.Builder
	indentSize int
	indent     int
	colors     *Colors
}

func (tw *textWriter) raw(s string) { tw.b.WriteString(s) }

func (tw *textWriter) colored(t bin.Type, attr ColorAttr, s string) {
	if tw.colors == nil {
		tw.b.WriteString(s)
		return
	}
	tw.b.WriteString(tw.colors.Color(t, attr, s))
}

func (tw *textWriter) pad() {
	tw.b.WriteString(strings.Repeat(" ", tw.indent))
}

func (tw *textWriter) writeSection(s *bin.Section) error {
	tw.colored(s.Value.Type(), FieldColor, s.Name)
	tw.raw(": ")
	tw.writeType(s.Value)
	tw.raw(" = ")
	if err := tw.writeValue(s.Value); err != nil {
		return err
	}
	tw.raw("\n")
	return nil
}

func (tw *textWriter) writeType(v bin.Value) {
	t := v.Type()
	switch v := v.(type) {
	case *bin.List:
		tw.writeElementType(t, v.ValueType)
	case *bin.List2:
		tw.writeElementType(t, v.ValueType)
	case *bin.Option:
		tw.writeElementType(t, v.ValueType)
	case *bin.Map:
		tw.colored(t, TypeColor, t.String()+"["+v.KeyType.String()+","+v.ValueType.String()+"]")
	default:
		tw.colored(t, TypeColor, t.String())
	}
}

func (tw *textWriter) writeElementType(t, valueType bin.Type) {
	tw.colored(t, TypeColor, t.String()+"["+valueType.String()+"]")
}

func (tw *textWriter) writeValue(v bin.Value) error {
	switch v := v.(type) {
	case *bin.None:
		tw.colored(bin.NoneType, ValueColor, "null")
	case *bin.Bool:
		tw.colored(bin.BoolType, ValueColor, conv.FormatBool(v.Value))
	case *bin.Flag:
		tw.colored(bin.FlagType, ValueColor, conv.FormatBool(v.Value))
	case *bin.I8:
		tw.number(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U8:
		tw.number(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I16:
		tw.number(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U16:
		tw.number(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I32:
		tw.number(strconv.FormatInt(int64(v.Value), 10))
	case *bin.U32:
		tw.number(strconv.FormatUint(uint64(v.Value), 10))
	case *bin.I64:
		tw.number(strconv.FormatInt(v.Value, 10))
	case *bin.U64:
		tw.number(strconv.FormatUint(v.Value, 10))
	case *bin.F32:
		tw.number(conv.FormatFloat32(v.Value))
	case *bin.Vec2:
		tw.writeFloatRow(v.Value[:])
	case *bin.Vec3:
		tw.writeFloatRow(v.Value[:])
	case *bin.Vec4:
		tw.writeFloatRow(v.Value[:])
	case *bin.Mtx44:
		tw.writeMatrix(v.Value)
	case *bin.RGBA:
		tw.writeByteRow(v.Value[:])
	case *bin.String:
		tw.colored(bin.StringType, ValueColor, conv.Quote(v.Value))
	case *bin.Hash:
		tw.writeHashString32(v.Value)
	case *bin.Link:
		tw.writeHashString32(v.Value)
	case *bin.File:
		tw.writeHashString64(v.Value)
	case *bin.Embed:
		tw.writeName(v.Name)
		tw.raw(" ")
		return writeItems(tw, v.Items, tw.writeField)
	case *bin.Pointer:
		if v.IsNull() {
			tw.colored(bin.PointerType, ValueColor, "null")
			return nil
		}
		tw.writeName(v.Name)
		tw.raw(" ")
		return writeItems(tw, v.Items, tw.writeField)
	case *bin.Option:
		return writeItems(tw, v.Items, tw.writeElement)
	case *bin.List:
		return writeItems(tw, v.Items, tw.writeElement)
	case *bin.List2:
		return writeItems(tw, v.Items, tw.writeElement)
	case *bin.Map:
		return writeItems(tw, v.Items, tw.writePair)
	default:
		return fmt.Errorf("%w: cannot render %s", ErrSemantic, v.Type())
	}
	return nil
}

func (tw *textWriter) number(s string) {
	tw.colored(bin.F32Type, ValueColor, s)
}

// writeItems prints "{}" for an empty container, otherwise one item per
// line at the next indent level.
func writeItems[T any](tw *textWriter, items []T, writeItem func(*T) error) error {
	if len(items) == 0 {
		tw.raw("{}")
		return nil
	}
	tw.raw("{\n")
	tw.indent += tw.indentSize
	for i := range items {
		tw.pad()
		if err := writeItem(&items[i]); err != nil {
			return err
		}
		tw.raw("\n")
	}
	tw.indent -= tw.indentSize
	tw.pad()
	tw.raw("}")
	return nil
}

func (tw *textWriter) writeField(f *bin.Field) error {
	tw.writeName(f.Key)
	tw.raw(": ")
	tw.writeType(f.Value)
	tw.raw(" = ")
	return tw.writeValue(f.Value)
}

func (tw *textWriter) writeElement(v *bin.Value) error {
	return tw.writeValue(*v)
}

func (tw *textWriter) writePair(p *bin.Pair) error {
	if err := tw.writeValue(p.Key); err != nil {
		return err
	}
	tw.raw(" = ")
	return tw.writeValue(p.Value)
}

func (tw *textWriter) writeFloatRow(vals []float32) {
	tw.raw("{ ")
	for i, f := range vals {
		if i > 0 {
			tw.raw(", ")
		}
		tw.number(conv.FormatFloat32(f))
	}
	tw.raw(" }")
}

func (tw *textWriter) writeByteRow(vals []uint8) {
	tw.raw("{ ")
	for i, b := range vals {
		if i > 0 {
			tw.raw(", ")
		}
		tw.number(strconv.FormatUint(uint64(b), 10))
	}
	tw.raw(" }")
}

// writeMatrix prints four rows of four at the next indent level.
func (tw *textWriter) writeMatrix(vals [16]float32) {
	tw.indent += tw.indentSize
	tw.raw("{\n")
	for row := 0; row < 4; row++ {
		tw.pad()
		for col := 0; col < 4; col++ {
			if col > 0 {
				tw.raw(", ")
			}
			tw.number(conv.FormatFloat32(vals[row*4+col]))
		}
		tw.raw("\n")
	}
	tw.indent -= tw.indentSize
	tw.pad()
	tw.raw("}")
}

// writeName prints a hash in name position: the recovered string bare, or
// the 0x-prefixed hex form.
func (tw *textWriter) writeName(h hashes.FNV1a) {
	if h.Str() != "" {
		tw.colored(bin.HashType, FieldColor, h.Str())
		return
	}
	tw.colored(bin.HashType, FieldColor, hexString32(h.Hash()))
}

// writeHashString32 prints a hash in value position: the recovered string
// quoted, or the hex form.
func (tw *textWriter) writeHashString32(h hashes.FNV1a) {
	if h.Str() != "" {
		tw.colored(bin.HashType, ValueColor, conv.Quote(h.Str()))
		return
	}
	tw.colored(bin.HashType, ValueColor, hexString32(h.Hash()))
}

func (tw *textWriter) writeHashString64(h hashes.XXH64) {
	if h.Str() != "" {
		tw.colored(bin.FileType, ValueColor, conv.Quote(h.Str()))
		return
	}
	tw.colored(bin.FileType, ValueColor, hexString64(h.Hash()))
}

// hexString32 renders exactly 0x plus eight lowercase hex digits.
func hexString32(h uint32) string {
	return fmt.Sprintf("0x%08x", h)
}

// hexString64 renders exactly 0x plus sixteen lowercase hex digits.
func hexString64(h uint64) string {
	return fmt.Sprintf("0x%016x", h)
}
