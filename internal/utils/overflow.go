package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// ByteLength computes count*multiplier as an int, failing on a negative
// count or on overflow of the int32 range. This backs every i32
// length-prefixed payload read in the codec (ByteArray, IntArray,
// LongArray): a
// negative length is always a decode error, never a two's-complement
// wraparound into a huge allocation.
func ByteLength(count int32, multiplier int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative length: %d", count)
	}
	total, err := SafeMultiply(uint64(count), uint64(multiplier))
	if err != nil {
		return 0, err
	}
	if total > math.MaxInt32 {
		return 0, fmt.Errorf("length too large: %d", total)
	}
	return int(total), nil
}

// ValidateBufferSize validates that a buffer size is within reasonable limits.
func ValidateBufferSize(size, maxSize uint64, description string) error {
	if size > maxSize {
		return fmt.Errorf("%s: size %d exceeds maximum %d", description, size, maxSize)
	}
	return nil
}

// MaxFieldSize caps any single NBT field read from an untrusted stream,
// guarding against a corrupt length field demanding a multi-gigabyte
// allocation before any of the payload has even been read.
const MaxFieldSize = 512 * 1024 * 1024 // 512MB
