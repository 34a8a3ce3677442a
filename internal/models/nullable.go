package models

import "encoding/json"

// NullableString distinguishes an absent JSON field from an explicit null:
//   - absent: Set=false, Valid=false
//   - null: Set=true, Valid=false
//   - value: Set=true, Valid=true
//
// Pointer fields collapse the first two cases into nil.
type NullableString struct {
	Value string
	Valid bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true

	if string(data) == "null" {
		ns.Valid = false
		ns.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ns.Value = s
	ns.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.Value)
}

// ToPtr returns nil unless the value is valid.
func (ns NullableString) ToPtr() *string {
	if !ns.Valid {
		return nil
	}
	return &ns.Value
}

// Apply overwrites *dst when the field was present in the payload.
// An explicit null clears it.
func (ns NullableString) Apply(dst **string) {
	if !ns.Set {
		return
	}
	*dst = ns.ToPtr()
}
