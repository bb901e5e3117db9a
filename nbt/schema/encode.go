package schema

import (
	"fmt"
	"math"
	"reflect"

	"github.com/anviltally/anviltally/nbt"
)

// unsignedTag emits the signed tag of matching width for an unsigned value,
// failing when the value doesn't fit that tag's signed range.
func unsignedTag(u, max uint64, mk func(uint64) nbt.Tag) (nbt.Tag, error) {
	if u > max {
		return nil, &nbt.EncodeError{Kind: nbt.ErrUnsignedTooBig, Detail: fmt.Sprintf("%d", u)}
	}
	return mk(u), nil
}

// Encode walks value (a struct, or pointer to one) and produces the
// Compound tag that Decode would bind back onto an equal value.
func Encode(value interface{}) (nbt.Tag, error) {
	v := reflect.ValueOf(value)
	return encodeValue(v)
}

func encodeValue(v reflect.Value) (nbt.Tag, error) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		return encodeValue(v.Elem())
	case reflect.Struct:
		return encodeStruct(v)
	case reflect.Slice:
		return encodeSlice(v)
	case reflect.Map:
		return encodeMap(v)
	case reflect.String:
		return nbt.String{Value: v.String()}, nil
	case reflect.Bool:
		if v.Bool() {
			return nbt.Byte(1), nil
		}
		return nbt.Byte(0), nil
	case reflect.Int8:
		return nbt.Byte(v.Int()), nil
	case reflect.Int16:
		return nbt.Short(v.Int()), nil
	case reflect.Int32:
		return nbt.Int(v.Int()), nil
	case reflect.Int, reflect.Int64:
		return nbt.Long(v.Int()), nil
	case reflect.Uint8:
		return unsignedTag(v.Uint(), math.MaxInt8, func(u uint64) nbt.Tag { return nbt.Byte(u) })
	case reflect.Uint16:
		return unsignedTag(v.Uint(), math.MaxInt16, func(u uint64) nbt.Tag { return nbt.Short(u) })
	case reflect.Uint32:
		return unsignedTag(v.Uint(), math.MaxInt32, func(u uint64) nbt.Tag { return nbt.Int(u) })
	case reflect.Uint, reflect.Uint64:
		return unsignedTag(v.Uint(), math.MaxInt64, func(u uint64) nbt.Tag { return nbt.Long(u) })
	case reflect.Float32:
		return nbt.Float(v.Float()), nil
	case reflect.Float64:
		return nbt.Double(v.Float()), nil
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		if t, ok := v.Interface().(nbt.Tag); ok {
			return t, nil
		}
		return nil, fmt.Errorf("schema: interface field does not hold an nbt.Tag (%T)", v.Interface())
	default:
		return nil, fmt.Errorf("schema: unsupported source kind %s", v.Kind())
	}
}

func encodeStruct(v reflect.Value) (nbt.Tag, error) {
	switch v.Type() {
	case reflect.TypeOf(nbt.ByteArray{}):
		ba := v.Interface().(nbt.ByteArray)
		return ba, nil
	case reflect.TypeOf(nbt.IntArray{}):
		ia := v.Interface().(nbt.IntArray)
		return &ia, nil
	case reflect.TypeOf(nbt.LongArray{}):
		la := v.Interface().(nbt.LongArray)
		return &la, nil
	}

	c := &nbt.Compound{}
	for _, f := range structFields(v.Type()) {
		fv := v.FieldByIndex(f.index)
		if f.optional && isEmptyValue(fv) {
			continue
		}
		tag, err := encodeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("schema: field %q: %w", f.wireName, err)
		}
		if tag == nil {
			continue
		}
		c.Set(f.wireName, tag)
	}
	return c, nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	default:
		return false
	}
}

// encodeSlice classifies a homogeneous sequence by probing its element type
// (not the first element's value, since Go slices are statically typed):
// int8/uint8 -> ByteArray, int32 -> IntArray, int64 -> LongArray, anything
// else -> List.
func encodeSlice(v reflect.Value) (nbt.Tag, error) {
	elemType := v.Type().Elem()
	n := v.Len()

	switch elemType.Kind() {
	case reflect.Int8, reflect.Uint8:
		raw := make([]byte, n)
		for i := 0; i < n; i++ {
			if e := v.Index(i); e.Kind() == reflect.Uint8 {
				raw[i] = byte(e.Uint())
			} else {
				raw[i] = byte(e.Int())
			}
		}
		return nbt.ByteArray{Raw: raw}, nil
	case reflect.Int32:
		values := make([]int32, n)
		for i := 0; i < n; i++ {
			values[i] = int32(v.Index(i).Int())
		}
		return intArrayFromValues(values), nil
	case reflect.Int64:
		values := make([]int64, n)
		for i := 0; i < n; i++ {
			values[i] = v.Index(i).Int()
		}
		return longArrayFromValues(values), nil
	default:
		elemKind, err := kindForType(elemType)
		if err != nil {
			return nil, err
		}
		elems := make([]nbt.Tag, n)
		for i := 0; i < n; i++ {
			tag, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("schema: list element %d: %w", i, err)
			}
			elems[i] = tag
		}
		return &nbt.List{ElemKind: elemKind, Elems: elems}, nil
	}
}

func encodeMap(v reflect.Value) (nbt.Tag, error) {
	c := &nbt.Compound{}
	iter := v.MapRange()
	for iter.Next() {
		key := iter.Key()
		if key.Kind() != reflect.String {
			return nil, &nbt.EncodeError{Kind: nbt.ErrCompoundKey, Detail: fmt.Sprintf("%v", key.Interface())}
		}
		tag, err := encodeValue(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("schema: map entry %q: %w", key.String(), err)
		}
		c.Set(key.String(), tag)
	}
	return c, nil
}

// kindForType maps a Go element type to the NBT kind a List of it would
// carry, used for the element-kind byte of every slice that encodeSlice
// writes as a List (struct elements are always Compound).
func kindForType(t reflect.Type) (nbt.Kind, error) {
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Ptr:
		return nbt.KindCompound, nil
	case reflect.String:
		return nbt.KindString, nil
	case reflect.Bool:
		return nbt.KindByte, nil
	case reflect.Int16:
		return nbt.KindShort, nil
	case reflect.Float32:
		return nbt.KindFloat, nil
	case reflect.Float64:
		return nbt.KindDouble, nil
	case reflect.Slice:
		return nbt.KindList, nil
	default:
		return 0, fmt.Errorf("schema: cannot infer list element kind for %s", t)
	}
}

func intArrayFromValues(values []int32) *nbt.IntArray {
	raw := make([]byte, len(values)*4)
	for i, val := range values {
		raw[i*4], raw[i*4+1], raw[i*4+2], raw[i*4+3] =
			byte(val>>24), byte(val>>16), byte(val>>8), byte(val)
	}
	return nbt.NewIntArray(raw)
}

func longArrayFromValues(values []int64) *nbt.LongArray {
	raw := make([]byte, len(values)*8)
	for i, val := range values {
		for b := 0; b < 8; b++ {
			raw[i*8+b] = byte(val >> (56 - 8*b))
		}
	}
	return nbt.NewLongArray(raw)
}
