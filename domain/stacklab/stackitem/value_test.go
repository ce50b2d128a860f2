package stackitem

import (
	"math"
	"reflect"
	"testing"
)

func TestFromValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    interface{}
		expected Item
	}{
		{5, Number(5)},
		{int8(-5), Number(-5)},
		{int64(math.MinInt64), Number(math.MinInt64)},
		{uint8(200), Number(200)},
		{uint64(math.MaxInt64), Number(math.MaxInt64)},
		{float64(3), Number(3)},
		{float32(-2), Number(-2)},
		{true, Boolean(true)},
		{"sig", String("sig")},
		{"0xab", String("0xab")},
		{[]byte{1, 2}, Bytes([]byte{1, 2})},
		{Number(9), Number(9)},
	}

	for _, test := range tests {
		result, err := FromValue(test.value)
		if err != nil {
			t.Errorf("FromValue(%#v): unexpected error: %s", test.value, err)
			continue
		}
		if !reflect.DeepEqual(result, test.expected) {
			t.Errorf("FromValue(%#v): expected %#v, got %#v", test.value, test.expected, result)
		}
	}
}

func TestFromValueErrors(t *testing.T) {
	t.Parallel()

	values := []interface{}{
		1.5,
		math.Inf(1),
		math.NaN(),
		1e19,
		uint64(math.MaxUint64),
		nil,
		struct{}{},
		[]int{1},
	}

	for _, value := range values {
		if _, err := FromValue(value); err == nil {
			t.Errorf("FromValue(%#v): expected an error", value)
		}
	}
}
