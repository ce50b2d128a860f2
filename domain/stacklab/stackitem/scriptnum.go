package stackitem

import (
	"github.com/pkg/errors"
)

// MaxScriptNumLen is the longest byte encoding that decodes to a number.
// Consensus rules cap this at 4 bytes; the lab accepts the full int64 range.
const MaxScriptNumLen = 8

// ErrNumberTooLong is returned when a byte encoding exceeds MaxScriptNumLen.
var ErrNumberTooLong = errors.New("numeric value is too long")

// EncodeScriptNum returns the minimal script number encoding of n: little
// endian, with the sign carried by the most significant bit of the last byte.
// Zero encodes to an empty byte slice.
//
// Example encodings:
//        127 -> [0x7f]
//       -127 -> [0xff]
//        128 -> [0x80 0x00]
//       -128 -> [0x80 0x80]
//        255 -> [0xff 0x00]
//      32767 -> [0xff 0x7f]
//      32768 -> [0x00 0x80 0x00]
func EncodeScriptNum(n int64) []byte {
	if n == 0 {
		return []byte{}
	}

	isNegative := n < 0
	magnitude := uint64(n)
	if isNegative {
		magnitude = uint64(-(n + 1)) + 1
	}

	result := make([]byte, 0, 9)
	for magnitude > 0 {
		result = append(result, byte(magnitude&0xff))
		magnitude >>= 8
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive. Otherwise the sign bit is set on the existing
	// most significant byte.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// DecodeScriptNum interprets v as a script number. Non-minimal encodings are
// accepted, so [0x00] and [0x80] both decode to zero.
func DecodeScriptNum(v []byte) (int64, error) {
	if len(v) > MaxScriptNumLen {
		return 0, errors.Wrapf(ErrNumberTooLong, "numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v), MaxScriptNumLen)
	}
	if len(v) == 0 {
		return 0, nil
	}

	var magnitude uint64
	for i, val := range v {
		magnitude |= uint64(val) << uint8(8*i)
	}

	// When the most significant byte of the input has the sign bit set,
	// the result is negative. Remove the sign bit from the magnitude.
	if v[len(v)-1]&0x80 != 0 {
		magnitude &= ^(uint64(0x80) << uint8(8*(len(v)-1)))
		return -int64(magnitude), nil
	}

	return int64(magnitude), nil
}
