package stackitem

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies which variant an Item holds.
type Kind uint8

// Item kinds.
const (
	KindNumber Kind = iota
	KindBoolean
	KindString
	KindBytes
)

var kindStrings = map[Kind]string{
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindString:  "string",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown kind " + strconv.Itoa(int(k))
}

// hexPrefix marks a String item whose content is hex-encoded bytes.
const hexPrefix = "0x"

// ErrNotANumber is returned when an item has no numeric interpretation.
var ErrNotANumber = errors.New("item is not a number")

// Item is a single value on the data stack. The zero value is the number 0.
//
// Items are immutable once constructed: byte-carrying items own their backing
// array and every accessor returns a copy.
type Item struct {
	kind    Kind
	number  int64
	boolean bool
	text    string
	bytes   []byte
}

// Number returns a numeric item.
func Number(n int64) Item {
	return Item{kind: KindNumber, number: n}
}

// Boolean returns a boolean item.
func Boolean(b bool) Item {
	return Item{kind: KindBoolean, boolean: b}
}

// String returns a string item. Strings starting with "0x" are treated as
// hex-encoded bytes wherever the raw bytes of the item are needed.
func String(s string) Item {
	return Item{kind: KindString, text: s}
}

// Bytes returns a byte-sequence item holding a copy of b.
func Bytes(b []byte) Item {
	return Item{kind: KindBytes, bytes: append([]byte{}, b...)}
}

// Kind returns the variant held by the item.
func (item Item) Kind() Kind {
	return item.kind
}

// Int64 returns the value of a numeric item. ok is false for other kinds.
func (item Item) Int64() (n int64, ok bool) {
	return item.number, item.kind == KindNumber
}

// Bool returns the value of a boolean item. ok is false for other kinds.
func (item Item) Bool() (b bool, ok bool) {
	return item.boolean, item.kind == KindBoolean
}

// Text returns the value of a string item. ok is false for other kinds.
func (item Item) Text() (s string, ok bool) {
	return item.text, item.kind == KindString
}

// ByteSlice returns a copy of the value of a byte-sequence item. ok is false
// for other kinds.
func (item Item) ByteSlice() (b []byte, ok bool) {
	if item.kind != KindBytes {
		return nil, false
	}
	return append([]byte{}, item.bytes...), true
}

// IsHex returns whether the item is a string holding "0x"-prefixed,
// well-formed hex.
func (item Item) IsHex() bool {
	if item.kind != KindString || !strings.HasPrefix(item.text, hexPrefix) {
		return false
	}
	_, err := hex.DecodeString(item.text[len(hexPrefix):])
	return err == nil
}

// IsTruthy converts the item to a boolean:
//   - the number 0 is false
//   - false is false
//   - the empty string is false
//   - a zero-length byte sequence is false
//
// Every other value, including negative numbers, is true.
func (item Item) IsTruthy() bool {
	switch item.kind {
	case KindNumber:
		return item.number != 0
	case KindBoolean:
		return item.boolean
	case KindString:
		return item.text != ""
	case KindBytes:
		return len(item.bytes) != 0
	}
	return false
}

// Clone returns a deep copy of the item.
func (item Item) Clone() Item {
	clone := item
	if item.bytes != nil {
		clone.bytes = append([]byte{}, item.bytes...)
	}
	return clone
}

// Serialize returns the canonical byte encoding of the item: the minimal
// script number encoding for numbers, 0x01 or nothing for booleans, the
// decoded payload of hex strings, the UTF-8 bytes of text strings and the raw
// bytes of byte sequences.
func (item Item) Serialize() []byte {
	switch item.kind {
	case KindNumber:
		return EncodeScriptNum(item.number)
	case KindBoolean:
		if item.boolean {
			return []byte{1}
		}
		return []byte{}
	case KindString:
		if item.IsHex() {
			decoded, _ := hex.DecodeString(item.text[len(hexPrefix):])
			return decoded
		}
		return []byte(item.text)
	case KindBytes:
		return append([]byte{}, item.bytes...)
	}
	return []byte{}
}

// Size returns the length of the canonical byte encoding of the item.
func (item Item) Size() int {
	return len(item.Serialize())
}

// AsNumber returns the numeric interpretation of the item. Booleans map to 1
// and 0, byte sequences and hex strings are decoded as script numbers and
// text strings must hold a base-10 integer.
func (item Item) AsNumber() (int64, error) {
	switch item.kind {
	case KindNumber:
		return item.number, nil
	case KindBoolean:
		if item.boolean {
			return 1, nil
		}
		return 0, nil
	case KindBytes:
		return DecodeScriptNum(item.bytes)
	case KindString:
		if item.IsHex() {
			return DecodeScriptNum(item.Serialize())
		}
		n, err := strconv.ParseInt(item.text, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrNotANumber, "%s", Format(item))
		}
		return n, nil
	}
	return 0, errors.Wrapf(ErrNotANumber, "%s", Format(item))
}

// Equal returns whether both items have the same canonical byte encoding.
// This mirrors OP_EQUAL, which compares raw stack elements.
func (item Item) Equal(other Item) bool {
	return bytes.Equal(item.Serialize(), other.Serialize())
}

// String returns the display form of the item. See Format.
func (item Item) String() string {
	return Format(item)
}
