package fixture

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one bulk-load entry: a person id and name plus arbitrary
// attribute key/value pairs that become properties.
type Record struct {
	ID         int64
	Name       string
	Attributes map[string]string
}

// UnmarshalJSON accepts the fixture shape {"id": 1, "name": "...", ...attrs}.
// Attribute values may be any JSON scalar; they are stored as text.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idRaw, ok := raw["id"]
	if !ok {
		return fmt.Errorf("fixture record is missing id")
	}
	if err := json.Unmarshal(idRaw, &r.ID); err != nil {
		return fmt.Errorf("fixture record id: %w", err)
	}
	delete(raw, "id")

	nameRaw, ok := raw["name"]
	if !ok {
		return fmt.Errorf("fixture record %d is missing name", r.ID)
	}
	if err := json.Unmarshal(nameRaw, &r.Name); err != nil {
		return fmt.Errorf("fixture record %d name: %w", r.ID, err)
	}
	delete(raw, "name")

	r.Attributes = make(map[string]string, len(raw))
	for key, value := range raw {
		text, err := scalarText(value)
		if err != nil {
			return fmt.Errorf("fixture record %d attribute %q: %w", r.ID, key, err)
		}
		r.Attributes[key] = text
	}

	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}

	return "", fmt.Errorf("value must be a JSON scalar")
}
