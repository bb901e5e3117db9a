package nbt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/anviltally/anviltally/internal/bitpack"
	"github.com/anviltally/anviltally/internal/mutf8"
)

// Writer emits a dynamic Tag tree as a binary NBT document. It mirrors
// Reader: the same tree written and re-read with Reader must compare equal
// (modulo Compound key order, which is not significant).
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that emits to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// EncodeDocument writes a complete top-level document: the root tag's kind
// byte, its name, and its payload.
func (w *Writer) EncodeDocument(name string, tag Tag) error {
	if err := w.writeByte(byte(tag.Kind())); err != nil {
		return err
	}
	if err := w.writeName(name); err != nil {
		return err
	}
	return w.writePayload(tag)
}

func (w *Writer) writeByte(b byte) error {
	_, err := w.w.Write([]byte{b})
	return wrapEncodeIo(err)
}

func (w *Writer) writeName(name string) error {
	enc := mutf8.Encode(name)
	if len(enc) > math.MaxUint16 {
		return &EncodeError{Kind: ErrStringTooBig, Detail: name}
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(enc)))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		return wrapEncodeIo(err)
	}
	_, err := w.w.Write(enc)
	return wrapEncodeIo(err)
}

func (w *Writer) writePayload(tag Tag) error {
	switch t := tag.(type) {
	case End:
		return nil
	case Byte:
		return w.writeByte(byte(t))
	case Short:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(t))
		_, err := w.w.Write(buf[:])
		return wrapEncodeIo(err)
	case Int:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(t))
		_, err := w.w.Write(buf[:])
		return wrapEncodeIo(err)
	case Long:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(t))
		_, err := w.w.Write(buf[:])
		return wrapEncodeIo(err)
	case Float:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(t)))
		_, err := w.w.Write(buf[:])
		return wrapEncodeIo(err)
	case Double:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(t)))
		_, err := w.w.Write(buf[:])
		return wrapEncodeIo(err)
	case ByteArray:
		return w.writeLengthPrefixed(len(t.Raw), t.Raw)
	case String:
		enc := mutf8.Encode(t.Value)
		if len(enc) > math.MaxUint16 {
			return &EncodeError{Kind: ErrStringTooBig, Detail: t.Value}
		}
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(enc)))
		if _, err := w.w.Write(lenBuf[:]); err != nil {
			return wrapEncodeIo(err)
		}
		_, err := w.w.Write(enc)
		return wrapEncodeIo(err)
	case *List:
		return w.writeList(t)
	case *Compound:
		return w.writeCompound(t)
	case *IntArray:
		raw := t.RawBytes()
		if t.BigEndian() {
			// Already on-wire order.
			return w.writeLengthPrefixed(len(raw)/4, raw)
		}
		return w.writeLengthPrefixed(len(raw)/4, swapToBigEndian32(raw))
	case *LongArray:
		raw := t.RawBytes()
		if t.BigEndian() {
			return w.writeLengthPrefixed(len(raw)/8, raw)
		}
		return w.writeLengthPrefixed(len(raw)/8, swapToBigEndian64(raw))
	default:
		return &EncodeError{Kind: ErrEncodeMessage, Detail: "unknown tag type"}
	}
}

func (w *Writer) writeLengthPrefixed(count int, raw []byte) error {
	if count > math.MaxInt32 {
		return &EncodeError{Kind: ErrSequenceTooBig}
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(count))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		return wrapEncodeIo(err)
	}
	_, err := w.w.Write(raw)
	return wrapEncodeIo(err)
}

func (w *Writer) writeList(l *List) error {
	if err := w.writeByte(byte(l.ElemKind)); err != nil {
		return err
	}
	if len(l.Elems) > math.MaxInt32 {
		return &EncodeError{Kind: ErrSequenceTooBig}
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(l.Elems)))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		return wrapEncodeIo(err)
	}
	for _, e := range l.Elems {
		if err := w.writePayload(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeCompound(c *Compound) error {
	for _, entry := range c.Entries {
		if err := w.writeByte(byte(entry.Value.Kind())); err != nil {
			return err
		}
		if err := w.writeName(entry.Name); err != nil {
			return err
		}
		if err := w.writePayload(entry.Value); err != nil {
			return err
		}
	}
	return w.writeByte(byte(KindEnd))
}

// swapToBigEndian32/64 reverse a native-order buffer back to big-endian
// wire order using the shared SIMD-capable swap, the same routine the
// lazy-swap array types use on the read path.
func swapToBigEndian32(native []byte) []byte {
	if len(native) == 0 {
		return native
	}
	if swapped := bitpack.Swap32(native); swapped != nil {
		return swapped
	}
	return native
}

func swapToBigEndian64(native []byte) []byte {
	if len(native) == 0 {
		return native
	}
	if swapped := bitpack.Swap64(native); swapped != nil {
		return swapped
	}
	return native
}
