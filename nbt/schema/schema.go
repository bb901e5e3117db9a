// Package schema binds the dynamic NBT tree onto caller-declared Go struct
// types, the way the core HDF5 datatype layer binds an object header
// message onto a typed Go value: the binder is driven by the target type's
// declared shape (struct fields, slice element types, map value types)
// rather than by the wire, and skips anything the caller didn't ask for.
//
// Struct fields opt in with an `nbt:"Name"` tag giving the Compound entry
// name to bind to; a field with no tag uses its Go name unchanged. Pointer,
// slice and map fields are optional: a missing Compound entry leaves them
// nil instead of erroring. Every other declared field is required; a missing
// entry is a decode error.
package schema

import (
	"fmt"
	"reflect"

	"github.com/anviltally/anviltally/nbt"
)

// Decode binds tag onto out, which must be a non-nil pointer to a struct.
func Decode(tag nbt.Tag, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("schema: Decode target must be a non-nil pointer, got %T", out)
	}
	return decodeValue(tag, v.Elem())
}

func decodeValue(tag nbt.Tag, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Ptr:
		if tag == nil {
			return nil
		}
		elem := reflect.New(dst.Type().Elem())
		if err := decodeValue(tag, elem.Elem()); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Struct:
		return decodeStruct(tag, dst)
	case reflect.Slice:
		return decodeSlice(tag, dst)
	case reflect.Map:
		return decodeMap(tag, dst)
	case reflect.String:
		s, ok := tag.(nbt.String)
		if !ok {
			return fmt.Errorf("schema: expected String tag, got %s", tag.Kind())
		}
		dst.SetString(s.Value)
		return nil
	case reflect.Bool:
		b, ok := tag.(nbt.Byte)
		if !ok {
			return fmt.Errorf("schema: expected Byte tag for bool, got %s", tag.Kind())
		}
		if b != 0 && b != 1 {
			return &nbt.DecodeError{Kind: nbt.ErrInvalidBooleanValue, Detail: fmt.Sprintf("%d", b)}
		}
		dst.SetBool(b != 0)
		return nil
	case reflect.Int8:
		b, ok := tag.(nbt.Byte)
		if !ok {
			return fmt.Errorf("schema: expected Byte tag, got %s", tag.Kind())
		}
		dst.SetInt(int64(b))
		return nil
	case reflect.Int16:
		s, ok := tag.(nbt.Short)
		if !ok {
			return fmt.Errorf("schema: expected Short tag, got %s", tag.Kind())
		}
		dst.SetInt(int64(s))
		return nil
	case reflect.Int32:
		i, ok := tag.(nbt.Int)
		if !ok {
			return fmt.Errorf("schema: expected Int tag, got %s", tag.Kind())
		}
		dst.SetInt(int64(i))
		return nil
	case reflect.Int, reflect.Int64:
		l, ok := tag.(nbt.Long)
		if !ok {
			return fmt.Errorf("schema: expected Long tag, got %s", tag.Kind())
		}
		dst.SetInt(int64(l))
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint, reflect.Uint64:
		// Unsigned fields bind from the signed tag of matching width; a
		// negative wire value has no unsigned reading.
		var v int64
		switch t := tag.(type) {
		case nbt.Byte:
			v = int64(t)
		case nbt.Short:
			v = int64(t)
		case nbt.Int:
			v = int64(t)
		case nbt.Long:
			v = int64(t)
		default:
			return fmt.Errorf("schema: expected an integer tag for %s, got %s", dst.Kind(), tag.Kind())
		}
		if v < 0 {
			return &nbt.DecodeError{Kind: nbt.ErrNegativeUnsigned, Detail: fmt.Sprintf("%d", v)}
		}
		if dst.OverflowUint(uint64(v)) {
			return fmt.Errorf("schema: value %d overflows %s", v, dst.Kind())
		}
		dst.SetUint(uint64(v))
		return nil
	case reflect.Float32:
		f, ok := tag.(nbt.Float)
		if !ok {
			return fmt.Errorf("schema: expected Float tag, got %s", tag.Kind())
		}
		dst.SetFloat(float64(f))
		return nil
	case reflect.Float64:
		d, ok := tag.(nbt.Double)
		if !ok {
			return fmt.Errorf("schema: expected Double tag, got %s", tag.Kind())
		}
		dst.SetFloat(float64(d))
		return nil
	case reflect.Interface:
		// nbt.Tag (or any interface type): pass the dynamic value through
		// unchanged so callers can inspect block-entity-specific fields
		// that the schema never described.
		dst.Set(reflect.ValueOf(tag))
		return nil
	default:
		return fmt.Errorf("schema: unsupported destination kind %s", dst.Kind())
	}
}

func decodeStruct(tag nbt.Tag, dst reflect.Value) error {
	// The numeric array wrapper types (nbt.ByteArray, nbt.IntArray,
	// nbt.LongArray) are themselves plain structs rather than Compounds;
	// bind them as a whole-value copy instead of walking struct fields.
	switch dst.Type() {
	case reflect.TypeOf(nbt.ByteArray{}):
		ba, ok := tag.(nbt.ByteArray)
		if !ok {
			return &nbt.DecodeError{Kind: nbt.ErrInvalidTagForBytes, Detail: tag.Kind().String()}
		}
		dst.Set(reflect.ValueOf(ba))
		return nil
	case reflect.TypeOf(nbt.IntArray{}):
		ia, ok := tag.(*nbt.IntArray)
		if !ok {
			return &nbt.DecodeError{Kind: nbt.ErrInvalidTagForBytes, Detail: tag.Kind().String()}
		}
		dst.Set(reflect.ValueOf(*ia))
		return nil
	case reflect.TypeOf(nbt.LongArray{}):
		la, ok := tag.(*nbt.LongArray)
		if !ok {
			return &nbt.DecodeError{Kind: nbt.ErrInvalidTagForBytes, Detail: tag.Kind().String()}
		}
		dst.Set(reflect.ValueOf(*la))
		return nil
	}

	c, ok := tag.(*nbt.Compound)
	if !ok {
		return fmt.Errorf("schema: expected Compound tag, got %s", tag.Kind())
	}

	fields := structFields(dst.Type())
	for _, f := range fields {
		val, present := c.Get(f.wireName)
		fv := dst.FieldByIndex(f.index)
		if !present {
			if f.optional {
				continue
			}
			return fmt.Errorf("schema: required field %q missing from compound", f.wireName)
		}
		if err := decodeValue(val, fv); err != nil {
			return fmt.Errorf("schema: field %q: %w", f.wireName, err)
		}
	}
	return nil
}

func decodeSlice(tag nbt.Tag, dst reflect.Value) error {
	elemType := dst.Type().Elem()

	switch t := tag.(type) {
	case nbt.ByteArray:
		if elemType.Kind() == reflect.Int8 || elemType.Kind() == reflect.Uint8 {
			out := reflect.MakeSlice(dst.Type(), t.Len(), t.Len())
			for i := 0; i < t.Len(); i++ {
				if elemType.Kind() == reflect.Uint8 {
					out.Index(i).SetUint(uint64(t.Raw[i]))
				} else {
					out.Index(i).SetInt(int64(t.At(i)))
				}
			}
			dst.Set(out)
			return nil
		}
		return &nbt.DecodeError{
			Kind:   nbt.ErrInvalidTagForSeq,
			Detail: fmt.Sprintf("ByteArray into slice of %s", elemType),
		}
	case *nbt.IntArray:
		if elemType.Kind() != reflect.Int32 {
			return &nbt.DecodeError{
				Kind:   nbt.ErrInvalidTagForSeq,
				Detail: fmt.Sprintf("IntArray into slice of %s", elemType),
			}
		}
		values := t.Values()
		out := reflect.MakeSlice(dst.Type(), len(values), len(values))
		for i, v := range values {
			out.Index(i).SetInt(int64(v))
		}
		dst.Set(out)
		return nil
	case *nbt.LongArray:
		if elemType.Kind() != reflect.Int64 {
			return &nbt.DecodeError{
				Kind:   nbt.ErrInvalidTagForSeq,
				Detail: fmt.Sprintf("LongArray into slice of %s", elemType),
			}
		}
		values := t.Values()
		out := reflect.MakeSlice(dst.Type(), len(values), len(values))
		for i, v := range values {
			out.Index(i).SetInt(v)
		}
		dst.Set(out)
		return nil
	case *nbt.List:
		out := reflect.MakeSlice(dst.Type(), len(t.Elems), len(t.Elems))
		for i, e := range t.Elems {
			if err := decodeValue(e, out.Index(i)); err != nil {
				return fmt.Errorf("schema: list element %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	default:
		return &nbt.DecodeError{
			Kind:   nbt.ErrInvalidTagForSeq,
			Detail: fmt.Sprintf("%s into slice of %s", tag.Kind(), elemType),
		}
	}
}

func decodeMap(tag nbt.Tag, dst reflect.Value) error {
	c, ok := tag.(*nbt.Compound)
	if !ok {
		return fmt.Errorf("schema: expected Compound tag for map, got %s", tag.Kind())
	}
	valueType := dst.Type().Elem()
	out := reflect.MakeMapWithSize(dst.Type(), len(c.Entries))
	for _, e := range c.Entries {
		ev := reflect.New(valueType).Elem()
		if err := decodeValue(e.Value, ev); err != nil {
			return fmt.Errorf("schema: map entry %q: %w", e.Name, err)
		}
		out.SetMapIndex(reflect.ValueOf(e.Name), ev)
	}
	dst.Set(out)
	return nil
}

type fieldSpec struct {
	wireName string
	index    []int
	optional bool
}

func structFields(t reflect.Type) []fieldSpec {
	var out []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		name, tagged := sf.Tag.Lookup("nbt")
		if name == "-" {
			continue
		}
		if !tagged || name == "" {
			name = sf.Name
		}
		optional := sf.Type.Kind() == reflect.Ptr || sf.Type.Kind() == reflect.Slice || sf.Type.Kind() == reflect.Map
		out = append(out, fieldSpec{wireName: name, index: sf.Index, optional: optional})
	}
	return out
}
