package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a string array stored as a JSON-encoded text column
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return ParseStringList(string(bytes), a)
}

// ParseStringList decodes JSON array text. Empty text yields an empty list.
func ParseStringList(text string, out *StringList) error {
	if text == "" || text == "null" {
		*out = StringList{}
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return fmt.Errorf("invalid string list %q: %w", text, err)
	}
	if list == nil {
		list = []string{}
	}
	*out = StringList(list)
	return nil
}
