package nbt

import (
	"unicode/utf8"

	"github.com/anviltally/anviltally/internal/mutf8"
)

// decodeStringRef decodes MUTF-8 bytes to a String tag, recording whether
// the fast path applied. MUTF-8 coincides byte-for-byte with standard UTF-8
// for every string that contains neither a NUL byte nor a supra-BMP code
// point, so that common case decodes via the stdlib UTF-8 path and is
// reported as "borrowed" (no surrogate re-encoding was needed); anything
// else goes through the full MUTF-8 decoder and is reported as "copied".
func decodeStringRef(raw []byte) (String, error) {
	if isPlainUTF8Safe(raw) {
		return String{Value: string(raw), Borrowed: true}, nil
	}
	s, err := mutf8.Decode(raw)
	if err != nil {
		return String{}, &DecodeError{Kind: ErrInvalidMUTF8, Cause: err}
	}
	return String{Value: s, Borrowed: false}, nil
}

// isPlainUTF8Safe reports whether raw contains no NUL-encoding (0xC0 0x80)
// and no three-byte surrogate halves, i.e. whether it is already standard
// UTF-8 that mutf8.Decode would reproduce unchanged. Both of those forms are
// invalid standard UTF-8, so utf8.Valid rejects them; four-byte sequences
// are valid UTF-8 but never valid MUTF-8, so they are rejected explicitly.
func isPlainUTF8Safe(raw []byte) bool {
	for _, b := range raw {
		if b >= 0xF0 {
			return false
		}
	}
	return utf8.Valid(raw)
}
