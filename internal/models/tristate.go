package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TriState is a boolean that may also be unknown. The zero value is Unknown,
// which is stored as NULL and serialized as null.
type TriState int8

const (
	Unknown TriState = iota
	True
	False
)

// TriStateOf converts a bool into a known TriState.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// Bool returns the boolean value and whether it is known.
func (t TriState) Bool() (value bool, known bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

// Ptr returns nil for Unknown, otherwise a pointer to the boolean value.
func (t TriState) Ptr() *bool {
	v, ok := t.Bool()
	if !ok {
		return nil
	}
	return &v
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Value implements the driver.Valuer interface
func (t TriState) Value() (driver.Value, error) {
	v, ok := t.Bool()
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Scan implements the sql.Scanner interface
func (t *TriState) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Unknown
	case bool:
		*t = TriStateOf(v)
	case int64:
		*t = triStateFromInt(v)
	case []byte:
		return t.Scan(string(v))
	case string:
		switch v {
		case "1", "t", "true", "TRUE":
			*t = True
		case "0", "f", "false", "FALSE":
			*t = False
		default:
			return fmt.Errorf("cannot scan %q into TriState", v)
		}
	default:
		return fmt.Errorf("cannot scan %T into TriState", value)
	}
	return nil
}

func triStateFromInt(v int64) TriState {
	switch v {
	case 1:
		return True
	case 0:
		return False
	default:
		return Unknown
	}
}

// MarshalJSON implements json.Marshaler
func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Ptr())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *TriState) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tri-state must be true, false or null: %w", err)
	}
	if b == nil {
		*t = Unknown
		return nil
	}
	*t = TriStateOf(*b)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (t TriState) MarshalYAML() (interface{}, error) {
	return t.Ptr(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (t *TriState) UnmarshalYAML(node *yaml.Node) error {
	var b *bool
	if err := node.Decode(&b); err != nil {
		return fmt.Errorf("tri-state must be true, false or null: %w", err)
	}
	if b == nil {
		*t = Unknown
		return nil
	}
	*t = TriStateOf(*b)
	return nil
}
