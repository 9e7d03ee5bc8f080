package morph

import (
	"strconv"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/conv"
)

type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// convNum converts with cast semantics and reports whether the round trip
// preserves the source.
func convNum[F, T numeric](f F) (T, bool) {
	t := T(f)
	return t, F(t) == f
}

func boolToNum[T numeric](b bool) (T, bool) {
	if b {
		return 1, true
	}
	return 0, true
}

// numAs extracts a number-category value as T, reporting round-trip
// fidelity.
func numAs[T numeric](v bin.Value) (T, bool) {
	switch s := v.(type) {
	case *bin.Bool:
		return boolToNum[T](s.Value)
	case *bin.Flag:
		return boolToNum[T](s.Value)
	case *bin.I8:
		return convNum[int8, T](s.Value)
	case *bin.U8:
		return convNum[uint8, T](s.Value)
	case *bin.I16:
		return convNum[int16, T](s.Value)
	case *bin.U16:
		return convNum[uint16, T](s.Value)
	case *bin.I32:
		return convNum[int32, T](s.Value)
	case *bin.U32:
		return convNum[uint32, T](s.Value)
	case *bin.I64:
		return convNum[int64, T](s.Value)
	case *bin.U64:
		return convNum[uint64, T](s.Value)
	case *bin.F32:
		return convNum[float32, T](s.Value)
	}
	return 0, false
}

// numToBool is the boolean edge of convNum: truthiness, exact only for 0
// and 1.
func numToBool(v bin.Value) (bool, bool) {
	switch s := v.(type) {
	case *bin.Bool:
		return s.Value, true
	case *bin.Flag:
		return s.Value, true
	case *bin.I8:
		return s.Value != 0, s.Value == 0 || s.Value == 1
	case *bin.U8:
		return s.Value != 0, s.Value <= 1
	case *bin.I16:
		return s.Value != 0, s.Value == 0 || s.Value == 1
	case *bin.U16:
		return s.Value != 0, s.Value <= 1
	case *bin.I32:
		return s.Value != 0, s.Value == 0 || s.Value == 1
	case *bin.U32:
		return s.Value != 0, s.Value <= 1
	case *bin.I64:
		return s.Value != 0, s.Value == 0 || s.Value == 1
	case *bin.U64:
		return s.Value != 0, s.Value <= 1
	case *bin.F32:
		return s.Value != 0, s.Value == 0 || s.Value == 1
	}
	return false, false
}

// makeNumber converts a number-category source into the number type t.
func makeNumber(t bin.Type, from bin.Value) (bin.Value, bool) {
	switch t {
	case bin.BoolType:
		b, ok := numToBool(from)
		return &bin.Bool{Value: b}, ok
	case bin.FlagType:
		b, ok := numToBool(from)
		return &bin.Flag{Value: b}, ok
	case bin.I8Type:
		v, ok := numAs[int8](from)
		return &bin.I8{Value: v}, ok
	case bin.U8Type:
		v, ok := numAs[uint8](from)
		return &bin.U8{Value: v}, ok
	case bin.I16Type:
		v, ok := numAs[int16](from)
		return &bin.I16{Value: v}, ok
	case bin.U16Type:
		v, ok := numAs[uint16](from)
		return &bin.U16{Value: v}, ok
	case bin.I32Type:
		v, ok := numAs[int32](from)
		return &bin.I32{Value: v}, ok
	case bin.U32Type:
		v, ok := numAs[uint32](from)
		return &bin.U32{Value: v}, ok
	case bin.I64Type:
		v, ok := numAs[int64](from)
		return &bin.I64{Value: v}, ok
	case bin.U64Type:
		v, ok := numAs[uint64](from)
		return &bin.U64{Value: v}, ok
	case bin.F32Type:
		v, ok := numAs[float32](from)
		return &bin.F32{Value: v}, ok
	}
	return nil, false
}

// parseNumber builds the number type t from a decimal string.
func parseNumber(t bin.Type, s string) (bin.Value, bool) {
	switch t {
	case bin.BoolType:
		b, ok := conv.ParseBool(s)
		return &bin.Bool{Value: b}, ok
	case bin.FlagType:
		b, ok := conv.ParseBool(s)
		return &bin.Flag{Value: b}, ok
	case bin.F32Type:
		f, ok := conv.ParseFloat32(s)
		return &bin.F32{Value: f}, ok
	case bin.I8Type, bin.I16Type, bin.I32Type, bin.I64Type:
		bits := map[bin.Type]int{bin.I8Type: 8, bin.I16Type: 16, bin.I32Type: 32, bin.I64Type: 64}[t]
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return bin.New(t), false
		}
		switch t {
		case bin.I8Type:
			return &bin.I8{Value: int8(n)}, true
		case bin.I16Type:
			return &bin.I16{Value: int16(n)}, true
		case bin.I32Type:
			return &bin.I32{Value: int32(n)}, true
		default:
			return &bin.I64{Value: n}, true
		}
	case bin.U8Type, bin.U16Type, bin.U32Type, bin.U64Type:
		bits := map[bin.Type]int{bin.U8Type: 8, bin.U16Type: 16, bin.U32Type: 32, bin.U64Type: 64}[t]
		n, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return bin.New(t), false
		}
		switch t {
		case bin.U8Type:
			return &bin.U8{Value: uint8(n)}, true
		case bin.U16Type:
			return &bin.U16{Value: uint16(n)}, true
		case bin.U32Type:
			return &bin.U32{Value: uint32(n)}, true
		default:
			return &bin.U64{Value: n}, true
		}
	}
	return nil, false
}

// formatNumber renders a number-category value as text.
func formatNumber(v bin.Value) string {
	switch s := v.(type) {
	case *bin.Bool:
		return conv.FormatBool(s.Value)
	case *bin.Flag:
		return conv.FormatBool(s.Value)
	case *bin.I8:
		return strconv.FormatInt(int64(s.Value), 10)
	case *bin.U8:
		return strconv.FormatUint(uint64(s.Value), 10)
	case *bin.I16:
		return strconv.FormatInt(int64(s.Value), 10)
	case *bin.U16:
		return strconv.FormatUint(uint64(s.Value), 10)
	case *bin.I32:
		return strconv.FormatInt(int64(s.Value), 10)
	case *bin.U32:
		return strconv.FormatUint(uint64(s.Value), 10)
	case *bin.I64:
		return strconv.FormatInt(s.Value, 10)
	case *bin.U64:
		return strconv.FormatUint(s.Value, 10)
	case *bin.F32:
		return conv.FormatFloat32(s.Value)
	}
	return ""
}
