package nbt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/anviltally/anviltally/internal/utils"
)

// source is the backend abstraction a Reader delegates to: a stream backend
// that always copies into scratch, or a slice backend that borrows directly
// from the input where possible. Both implement identical parse semantics;
// they differ only in where the bytes for strings and byte sequences come
// from.
type source interface {
	readByte() (int8, error)
	readShort() (int16, error)
	readInt() (int32, error)
	readLong() (int64, error)
	readFloat() (float32, error)
	readDouble() (float64, error)
	readBytes(multiplier int) ([]byte, error)
	readString() (String, error)
}

// Reader parses the NBT tagged binary tree. Construct one with NewReader
// (stream backend) or NewSliceReader (slice backend).
type Reader struct {
	src source
}

// NewReader returns a Reader that parses from r, copying every field into
// an internally managed scratch buffer.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: &streamSource{r: r}}
}

// NewSliceReader returns a Reader that parses from a borrowed slice. Byte,
// int and long array payloads alias b directly. Strings are decoded by
// decodeStringRef, whose Borrowed flag records whether the MUTF-8 fast path
// applied.
func NewSliceReader(b []byte) *Reader {
	return &Reader{src: &sliceSource{b: b}}
}

// readTagType reads a single byte and validates it names one of the 13
// kinds.
func (r *Reader) readTagType() (Kind, error) {
	b, err := r.src.readByte()
	if err != nil {
		return 0, err
	}
	return KindFromByte(byte(b))
}

// ReadDocument parses a complete top-level document: a tag kind, a name,
// and that kind's payload. The root kind must be Compound or List.
func (r *Reader) ReadDocument() (name string, tag Tag, err error) {
	kind, err := r.readTagType()
	if err != nil {
		return "", nil, err
	}
	if kind != KindCompound && kind != KindList {
		return "", nil, &DecodeError{Kind: ErrInvalidTopLevel, Detail: kind.String()}
	}
	nameTag, err := r.src.readString()
	if err != nil {
		return "", nil, err
	}
	val, err := r.readPayload(kind)
	if err != nil {
		return "", nil, err
	}
	return nameTag.Value, val, nil
}

func (r *Reader) readPayload(kind Kind) (Tag, error) {
	switch kind {
	case KindEnd:
		return End{}, nil
	case KindByte:
		v, err := r.src.readByte()
		return Byte(v), err
	case KindShort:
		v, err := r.src.readShort()
		return Short(v), err
	case KindInt:
		v, err := r.src.readInt()
		return Int(v), err
	case KindLong:
		v, err := r.src.readLong()
		return Long(v), err
	case KindFloat:
		v, err := r.src.readFloat()
		return Float(v), err
	case KindDouble:
		v, err := r.src.readDouble()
		return Double(v), err
	case KindByteArray:
		raw, err := r.src.readBytes(1)
		if err != nil {
			return nil, err
		}
		return ByteArray{Raw: raw}, nil
	case KindString:
		return r.src.readString()
	case KindList:
		return r.readList()
	case KindCompound:
		return r.readCompound()
	case KindIntArray:
		raw, err := r.src.readBytes(4)
		if err != nil {
			return nil, err
		}
		return NewIntArray(raw), nil
	case KindLongArray:
		raw, err := r.src.readBytes(8)
		if err != nil {
			return nil, err
		}
		return NewLongArray(raw), nil
	default:
		return nil, &DecodeError{Kind: ErrInvalidTagType, Detail: kind.String()}
	}
}

func (r *Reader) readList() (Tag, error) {
	elemKind, err := r.readTagType()
	if err != nil {
		return nil, err
	}
	length, err := r.src.readInt()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, &DecodeError{Kind: ErrNegativeLength}
	}
	if elemKind == KindEnd && length > 0 {
		// End has no payload; a non-empty End-typed list is malformed.
		return nil, &DecodeError{Kind: ErrUnexpectedEndTag}
	}
	elems := make([]Tag, length)
	for i := int32(0); i < length; i++ {
		elems[i], err = r.readPayload(elemKind)
		if err != nil {
			return nil, err
		}
	}
	return &List{ElemKind: elemKind, Elems: elems}, nil
}

func (r *Reader) readCompound() (Tag, error) {
	c := &Compound{}
	for {
		kind, err := r.readTagType()
		if err != nil {
			return nil, err
		}
		if kind == KindEnd {
			break
		}
		nameTag, err := r.src.readString()
		if err != nil {
			return nil, err
		}
		val, err := r.readPayload(kind)
		if err != nil {
			return nil, err
		}
		c.Set(nameTag.Value, val)
	}
	return c, nil
}

// streamSource reads from an io.Reader, copying every field into a scratch
// buffer owned by this source and resized up to the largest field seen so
// far.
type streamSource struct {
	r       io.Reader
	scratch []byte
}

func (s *streamSource) fill(n int) ([]byte, error) {
	if err := utils.ValidateBufferSize(uint64(n), utils.MaxFieldSize, "nbt field"); err != nil {
		return nil, &DecodeError{Kind: ErrDecodeMessage, Detail: err.Error()}
	}
	if cap(s.scratch) < n {
		s.scratch = make([]byte, n)
	}
	buf := s.scratch[:n]
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, wrapIo(err)
	}
	return buf, nil
}

func (s *streamSource) readByte() (int8, error) {
	buf, err := s.fill(1)
	if err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

func (s *streamSource) readShort() (int16, error) {
	buf, err := s.fill(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

func (s *streamSource) readInt() (int32, error) {
	buf, err := s.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

func (s *streamSource) readLong() (int64, error) {
	buf, err := s.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func (s *streamSource) readFloat() (float32, error) {
	buf, err := s.fill(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

func (s *streamSource) readDouble() (float64, error) {
	buf, err := s.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

func (s *streamSource) readBytes(multiplier int) ([]byte, error) {
	length, err := s.readInt()
	if err != nil {
		return nil, err
	}
	n, err := utils.ByteLength(length, multiplier)
	if err != nil {
		return nil, &DecodeError{Kind: ErrNegativeLength, Cause: err}
	}
	buf, err := s.fill(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

func (s *streamSource) readString() (String, error) {
	lenBuf, err := s.fill(2)
	if err != nil {
		return String{}, err
	}
	length := binary.BigEndian.Uint16(lenBuf)
	buf, err := s.fill(int(length))
	if err != nil {
		return String{}, err
	}
	return decodeStringRef(buf)
}

// sliceSource reads from a borrowed slice, advancing an offset. Byte
// sequences are returned as subslices of the original input; strings go
// through decodeStringRef.
type sliceSource struct {
	b   []byte
	off int
}

func (s *sliceSource) take(n int) ([]byte, error) {
	if n < 0 || s.off+n > len(s.b) {
		return nil, wrapIo(io.ErrUnexpectedEOF)
	}
	buf := s.b[s.off : s.off+n]
	s.off += n
	return buf, nil
}

func (s *sliceSource) readByte() (int8, error) {
	buf, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

func (s *sliceSource) readShort() (int16, error) {
	buf, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

func (s *sliceSource) readInt() (int32, error) {
	buf, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

func (s *sliceSource) readLong() (int64, error) {
	buf, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func (s *sliceSource) readFloat() (float32, error) {
	buf, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

func (s *sliceSource) readDouble() (float64, error) {
	buf, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

func (s *sliceSource) readBytes(multiplier int) ([]byte, error) {
	length, err := s.readInt()
	if err != nil {
		return nil, err
	}
	n, err := utils.ByteLength(length, multiplier)
	if err != nil {
		return nil, &DecodeError{Kind: ErrNegativeLength, Cause: err}
	}
	return s.take(n)
}

func (s *sliceSource) readString() (String, error) {
	lenBuf, err := s.take(2)
	if err != nil {
		return String{}, err
	}
	length := binary.BigEndian.Uint16(lenBuf)
	buf, err := s.take(int(length))
	if err != nil {
		return String{}, err
	}
	return decodeStringRef(buf)
}
