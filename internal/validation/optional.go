package validation

import "encoding/json"

// OptionalString distinguishes the three states a JSON string field can take
// in an update payload: absent (leave the stored value unchanged), explicit
// null (clear the stored value), and a string value (set it).
type OptionalString struct {
	// Present is true when the field appeared in the payload at all.
	Present bool
	// Valid is true when the field carried a string value rather than null.
	Valid bool
	// Value holds the string when Valid.
	Value string
}

// UnmarshalJSON is only invoked when the field is present in the document, so
// Present is always set here; an absent field leaves the zero value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns the pointer form of the tri-state value given the current
// stored pointer: absent keeps current, null clears, value replaces.
func (o OptionalString) Ptr(current *string) *string {
	if !o.Present {
		return current
	}
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
