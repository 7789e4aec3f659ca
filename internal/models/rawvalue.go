package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RawValueKind tells which of the RawValue variants is populated.
type RawValueKind int

const (
	// RawAbsent means no value was supplied at all. It is the zero value.
	RawAbsent RawValueKind = iota
	// RawNull is an explicit null, meaning "not applicable" or zero.
	RawNull
	RawBool
	RawNumber
)

func (k RawValueKind) String() string {
	switch k {
	case RawAbsent:
		return "absent"
	case RawNull:
		return "null"
	case RawBool:
		return "bool"
	case RawNumber:
		return "number"
	}

	return "unknown"
}

// RawValue is a measurement that can be a number, a boolean, null, or
// missing entirely. Absent and null are distinct: an absent raw value is a
// construction error for results while null is an accepted value.
type RawValue struct {
	kind RawValueKind
	b    bool
	n    float64
}

// Null returns an explicit null RawValue.
func Null() RawValue { return RawValue{kind: RawNull} }

// Bool wraps a boolean measurement.
func Bool(b bool) RawValue { return RawValue{kind: RawBool, b: b} }

// Number wraps a numeric measurement.
func Number(n float64) RawValue { return RawValue{kind: RawNumber, n: n} }

// Kind returns which variant is populated.
func (v RawValue) Kind() RawValueKind { return v.kind }

// IsPresent reports whether any value, including null, was supplied.
func (v RawValue) IsPresent() bool { return v.kind != RawAbsent }

// IsNull reports whether the value is an explicit null.
func (v RawValue) IsNull() bool { return v.kind == RawNull }

// IsZero lets encoding/json omit absent values with the omitzero option.
func (v RawValue) IsZero() bool { return v.kind == RawAbsent }

// BoolValue returns the boolean and whether the value is a boolean.
func (v RawValue) BoolValue() (bool, bool) { return v.b, v.kind == RawBool }

// NumberValue returns the number and whether the value is a number.
func (v RawValue) NumberValue() (float64, bool) { return v.n, v.kind == RawNumber }

// Truthy follows the usual truthiness rules: true, and numbers other than
// zero or NaN, are truthy. Null and absent are not.
func (v RawValue) Truthy() bool {
	switch v.kind {
	case RawBool:
		return v.b
	case RawNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	}

	return false
}

// String renders the value the way it appears in a report.
func (v RawValue) String() string {
	switch v.kind {
	case RawNull:
		return "null"
	case RawBool:
		return strconv.FormatBool(v.b)
	case RawNumber:
		return FormatNumber(v.n)
	}

	return ""
}

// FormatNumber renders a float with the shortest representation that
// round-trips, so 1.0 prints as "1" and 0.5 as "0.5".
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON encodes absent values as null as well; use omitzero on the
// field to drop them instead.
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case RawBool:
		return json.Marshal(v.b)
	case RawNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return nil, fmt.Errorf("raw value %v is not representable in JSON", v.n)
		}
		return json.Marshal(v.n)
	}

	return []byte("null"), nil
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Null()
	case bytes.Equal(data, []byte("true")):
		*v = Bool(true)
	case bytes.Equal(data, []byte("false")):
		*v = Bool(false)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("raw value must be a number, boolean or null: %s", data)
		}
		*v = Number(n)
	}

	return nil
}

// UnmarshalYAML accepts numbers and booleans. yaml.v3 never calls it for an
// explicit null, which therefore decodes as absent.
func (v *RawValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(val)
	case int:
		*v = Number(float64(val))
	case int64:
		*v = Number(float64(val))
	case uint64:
		*v = Number(float64(val))
	case float64:
		*v = Number(val)
	default:
		return fmt.Errorf("raw value must be a number, boolean or null, got %T", raw)
	}

	return nil
}
