package project

import (
	"bytes"
	"encoding/json"
)

type nullableState uint8

const (
	stateUnset nullableState = iota
	stateNull
	stateValue
)

// Nullable is an optional string that distinguishes "never set" from
// "explicitly null". The zero value is unset and is omitted by encoders
// honouring omitzero.
type Nullable struct {
	state nullableState
	value string
}

// Value returns a Nullable holding v.
func Value(v string) Nullable {
	return Nullable{state: stateValue, value: v}
}

// Null returns an explicitly null Nullable.
func Null() Nullable {
	return Nullable{state: stateNull}
}

// IsZero reports whether the value was never set.
func (n Nullable) IsZero() bool { return n.state == stateUnset }

// IsNull reports whether the value is explicitly null.
func (n Nullable) IsNull() bool { return n.state == stateNull }

// Get returns the value and whether one is present.
func (n Nullable) Get() (string, bool) {
	return n.value, n.state == stateValue
}

// Or returns the value, or fallback when unset or null.
func (n Nullable) Or(fallback string) string {
	if v, ok := n.Get(); ok {
		return v
	}
	return fallback
}

// String renders the value for humans: "" when unset, "null" when null.
func (n Nullable) String() string {
	switch n.state {
	case stateNull:
		return "null"
	case stateValue:
		return n.value
	}
	return ""
}

// MarshalJSON implements json.Marshaler.
func (n Nullable) MarshalJSON() ([]byte, error) {
	if n.state != stateValue {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON implements json.Unmarshaler. JSON null yields Null; any
// non-string scalar is rejected.
func (n *Nullable) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Value(s)
	return nil
}
