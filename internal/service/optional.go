package service

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field (Set false) from an
// explicit null (Set true, Value nil) in partial updates.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// SetString is shorthand for an OptionalString holding value.
func SetString(value string) OptionalString {
	return OptionalString{Set: true, Value: &value}
}

// DaysOfWeek accepts the string-encoded JSON array used on the wire
// ("[1,3,5]") as well as a bare array ([1,3,5]) and keeps the string form.
type DaysOfWeek struct {
	OptionalString
}

func (d *DaysOfWeek) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		raw := string(trimmed)
		d.Set = true
		d.Value = &raw
		return nil
	}
	return d.OptionalString.UnmarshalJSON(data)
}
