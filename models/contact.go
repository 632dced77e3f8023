package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ContactInfo хранится в JSONB колонке и сериализуется только на границе с БД.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

func (c ContactInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal contact info: %w", err)
	}
	return b, nil
}

func (c *ContactInfo) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = ContactInfo{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for contact info", src)
	}
	if len(raw) == 0 {
		*c = ContactInfo{}
		return nil
	}
	return json.Unmarshal(raw, c)
}
