package stackitem

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Format returns the display form of an item: numbers in decimal, booleans as
// true/false, hex strings unchanged, text strings single-quoted and byte
// sequences as 0x-prefixed lowercase hex.
func Format(item Item) string {
	switch item.kind {
	case KindNumber:
		return strconv.FormatInt(item.number, 10)
	case KindBoolean:
		return strconv.FormatBool(item.boolean)
	case KindString:
		if strings.HasPrefix(item.text, hexPrefix) {
			return item.text
		}
		return "'" + item.text + "'"
	case KindBytes:
		return hexPrefix + hex.EncodeToString(item.bytes)
	}
	return "<" + item.kind.String() + ">"
}

// FormatStack returns the display form of a whole stack, bottom first.
func FormatStack(items []Item) string {
	formatted := make([]string, len(items))
	for i, item := range items {
		formatted[i] = Format(item)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// Parse is the inverse of Format for the kinds a user can type:
//   - a base-10 integer becomes a Number
//   - true and false become a Boolean
//   - a 0x-prefixed token becomes a hex String
//   - a single-quoted token becomes a String without the quotes
//
// Anything else becomes a text String as-is.
func Parse(text string) Item {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Number(n)
	}
	switch text {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	}
	if strings.HasPrefix(text, hexPrefix) {
		return String(text)
	}
	if len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'' {
		return String(text[1 : len(text)-1])
	}
	return String(text)
}

// CloneStack returns a deep copy of items. The result is never nil.
func CloneStack(items []Item) []Item {
	clone := make([]Item, len(items))
	for i, item := range items {
		clone[i] = item.Clone()
	}
	return clone
}
