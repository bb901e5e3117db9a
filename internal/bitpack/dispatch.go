package bitpack

// tier bundles one implementation of the four bitpack primitives. All
// tiers must be bitwise-identical; they differ only in how much work is
// done per loop iteration.
type tier struct {
	name    string
	unpack4 func(src []byte, bigEndian bool) []uint16
	unpack5 func(src []byte, bigEndian bool) []uint16
	swap32  func(src []byte) []byte
	swap64  func(src []byte) []byte
}

var scalarTier = tier{
	name:    "scalar",
	unpack4: Unpack4,
	unpack5: Unpack5,
	swap32:  Swap32,
	swap64:  Swap64,
}

var portableTier = tier{
	name:    "portable",
	unpack4: unpack4Portable,
	unpack5: unpack5Portable,
	swap32:  swap32Portable,
	swap64:  swap64Portable,
}

// archTier defaults to the portable tier and is overridden by an
// architecture-specific init() (see amd64.go) on platforms that have one.
var archTier = portableTier

// Dispatch returns the fastest tier available on the running binary's
// target architecture. It never returns a nil field: on architectures
// without a specialized tier it returns the portable tier.
func Dispatch() (name string, unpack4, unpack5 func(src []byte, bigEndian bool) []uint16, swap32, swap64 func(src []byte) []byte) {
	return archTier.name, archTier.unpack4, archTier.unpack5, archTier.swap32, archTier.swap64
}

// UnpackLanes unpacks a bit-packed word array for the given lane width
// using the best available tier. Only 4 and 5-bit lanes have specialized
// unpackers; any other width is handled by the caller via the generic
// per-word bit reader in the chunkmodel package.
func UnpackLanes(bitsPerLane int, src []byte, bigEndian bool) []uint16 {
	_, unpack4, unpack5, _, _ := Dispatch()
	switch bitsPerLane {
	case 4:
		return unpack4(src, bigEndian)
	case 5:
		return unpack5(src, bigEndian)
	default:
		return nil
	}
}
