package stackitem

import (
	"math"

	"github.com/pkg/errors"
)

// FromValue converts a host value into an item. Supported values are items,
// booleans, strings, byte slices, every Go integer type and integral
// float64/float32 values (as produced by JSON and YAML decoders).
func FromValue(value interface{}) (Item, error) {
	switch v := value.(type) {
	case Item:
		return v.Clone(), nil
	case bool:
		return Boolean(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case int:
		return Number(int64(v)), nil
	case int8:
		return Number(int64(v)), nil
	case int16:
		return Number(int64(v)), nil
	case int32:
		return Number(int64(v)), nil
	case int64:
		return Number(v), nil
	case uint:
		return fromUint64(uint64(v))
	case uint8:
		return Number(int64(v)), nil
	case uint16:
		return Number(int64(v)), nil
	case uint32:
		return Number(int64(v)), nil
	case uint64:
		return fromUint64(v)
	case float32:
		return fromFloat64(float64(v))
	case float64:
		return fromFloat64(v)
	}
	return Item{}, errors.Errorf("unsupported value %v of type %T", value, value)
}

func fromUint64(v uint64) (Item, error) {
	if v > math.MaxInt64 {
		return Item{}, errors.Errorf("value %d overflows int64", v)
	}
	return Number(int64(v)), nil
}

func fromFloat64(v float64) (Item, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return Item{}, errors.Errorf("value %v is not an integer", v)
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return Item{}, errors.Errorf("value %v overflows int64", v)
	}
	return Number(int64(v)), nil
}
