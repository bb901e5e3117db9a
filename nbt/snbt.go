package nbt

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSNBT renders tag as stringified NBT: byte/short/long suffixes,
// bracketed typed arrays, and double-quoted escaped strings.
func FormatSNBT(tag Tag) string {
	var sb strings.Builder
	writeSNBT(&sb, tag)
	return sb.String()
}

func writeSNBT(sb *strings.Builder, tag Tag) {
	switch t := tag.(type) {
	case End:
		// Never appears as a standalone value.
	case Byte:
		fmt.Fprintf(sb, "%db", int8(t))
	case Short:
		fmt.Fprintf(sb, "%ds", int16(t))
	case Int:
		fmt.Fprintf(sb, "%d", int32(t))
	case Long:
		fmt.Fprintf(sb, "%dl", int64(t))
	case Float:
		fmt.Fprintf(sb, "%gf", float32(t))
	case Double:
		fmt.Fprintf(sb, "%gd", float64(t))
	case ByteArray:
		sb.WriteString("[B;")
		for i := 0; i < t.Len(); i++ {
			if i != 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%db", t.At(i))
		}
		sb.WriteByte(']')
	case String:
		sb.WriteString(quoteSNBT(t.Value))
	case *List:
		sb.WriteByte('[')
		for i, e := range t.Elems {
			if i != 0 {
				sb.WriteByte(',')
			}
			writeSNBT(sb, e)
		}
		sb.WriteByte(']')
	case *Compound:
		sb.WriteByte('{')
		for i, e := range t.Entries {
			if i != 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(quoteSNBT(e.Name))
			sb.WriteByte(':')
			writeSNBT(sb, e.Value)
		}
		sb.WriteByte('}')
	case *IntArray:
		sb.WriteString("[I;")
		for i, v := range t.Values() {
			if i != 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%d", v)
		}
		sb.WriteByte(']')
	case *LongArray:
		sb.WriteString("[L;")
		for i, v := range t.Values() {
			if i != 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%dl", v)
		}
		sb.WriteByte(']')
	}
}

func quoteSNBT(s string) string {
	return strconv.Quote(s)
}
