package widget

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// FlexFloat is a float64 that tolerates JSON strings on the wire.
// Settings snapshots restored from URL parameters or hand-edited stores
// regularly carry numeric fields as strings; comparisons in the trigger
// engine must never run against string-typed amounts.
type FlexFloat float64

func (f FlexFloat) Float() float64 { return float64(f) }

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("flexfloat: %w", err)
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("flexfloat: parse %q: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flexfloat: parse %s: %w", data, err)
	}
	*f = FlexFloat(v)
	return nil
}

// MarshalJSON always emits a plain number so freshly written snapshots
// are well-typed even when the value was read back from a string.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}
