package stackitem

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

type jsonItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the item as {"type": <kind>, "value": <value>}.
// Byte sequences are encoded as 0x-prefixed hex strings.
func (item Item) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch item.kind {
	case KindNumber:
		value = item.number
	case KindBoolean:
		value = item.boolean
	case KindString:
		value = item.text
	case KindBytes:
		value = hexPrefix + hex.EncodeToString(item.bytes)
	default:
		return nil, errors.Errorf("cannot marshal item of %s", item.kind)
	}

	rawValue, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonItem{Type: item.kind.String(), Value: rawValue})
}

// UnmarshalJSON decodes an item encoded by MarshalJSON.
func (item *Item) UnmarshalJSON(data []byte) error {
	var decoded jsonItem
	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	switch decoded.Type {
	case KindNumber.String():
		var n int64
		err = json.Unmarshal(decoded.Value, &n)
		*item = Number(n)
	case KindBoolean.String():
		var b bool
		err = json.Unmarshal(decoded.Value, &b)
		*item = Boolean(b)
	case KindString.String():
		var s string
		err = json.Unmarshal(decoded.Value, &s)
		*item = String(s)
	case KindBytes.String():
		var s string
		err = json.Unmarshal(decoded.Value, &s)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(s, hexPrefix) {
			return errors.Errorf("bytes value %q is missing the %s prefix", s, hexPrefix)
		}
		var b []byte
		b, err = hex.DecodeString(s[len(hexPrefix):])
		*item = Bytes(b)
	default:
		return errors.Errorf("unknown item type %q", decoded.Type)
	}
	return errors.Wrapf(err, "malformed %s item", decoded.Type)
}
