// Package catalog holds the master card catalog that deck joins resolve against.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MultiverseID is an optional card identifier. Upstream sources encode it
// either as a JSON number or as a string; both decode to the same value.
// The zero value is "missing" and never equals anything, including another
// missing ID.
type MultiverseID struct {
	value   string
	numeric bool
}

// NewMultiverseID returns an ID for s. An empty s yields a missing ID.
func NewMultiverseID(s string) MultiverseID {
	s = strings.TrimSpace(s)
	if s == "" {
		return MultiverseID{}
	}
	return MultiverseID{value: s, numeric: isDigits(s)}
}

// IsSet reports whether the ID is present.
func (m MultiverseID) IsSet() bool {
	return m.value != ""
}

// String returns the ID text, or "" when missing.
func (m MultiverseID) String() string {
	return m.value
}

// Equal reports whether both IDs are present and identical.
func (m MultiverseID) Equal(other MultiverseID) bool {
	return m.IsSet() && other.IsSet() && m.value == other.value
}

// UnmarshalJSON accepts a number, a string, or null.
func (m *MultiverseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = MultiverseID{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode multiverse id: %w", err)
		}
		id := NewMultiverseID(s)
		id.numeric = false
		*m = id
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode multiverse id: %w", err)
	}
	*m = MultiverseID{value: n.String(), numeric: true}
	return nil
}

// MarshalJSON writes the ID back in the form it was read.
func (m MultiverseID) MarshalJSON() ([]byte, error) {
	if !m.IsSet() {
		return []byte("null"), nil
	}
	if m.numeric {
		return []byte(m.value), nil
	}
	return json.Marshal(m.value)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Card is a single printing from the master catalog. The identity fields the
// join needs are typed; every other catalog field is kept verbatim in Extra
// and written back unchanged. Extra is shared between copies and must be
// treated as read-only.
type Card struct {
	Name         string
	Number       string
	MultiverseID MultiverseID
	UUID         string
	SetCode      string

	Extra map[string]json.RawMessage
}

const (
	keyName         = "name"
	keyNumber       = "number"
	keyMultiverseID = "multiverseId"
	keyUUID         = "uuid"
	keySetCode      = "setCode"
)

// UnmarshalJSON splits the object into typed fields and Extra.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode card: %w", err)
	}

	fields := []struct {
		key  string
		dest any
	}{
		{keyName, &c.Name},
		{keyNumber, &c.Number},
		{keyMultiverseID, &c.MultiverseID},
		{keyUUID, &c.UUID},
		{keySetCode, &c.SetCode},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.dest); err != nil {
			return fmt.Errorf("decode card field %s: %w", f.key, err)
		}
		delete(raw, f.key)
	}

	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON merges typed fields and Extra into one object.
func (c Card) MarshalJSON() ([]byte, error) {
	out, err := c.Fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Fields returns the card as a flat key/value map suitable for merging with
// additional fields before encoding.
func (c Card) Fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}

	set := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode card field %s: %w", key, err)
		}
		out[key] = encoded
		return nil
	}

	if err := set(keyName, c.Name); err != nil {
		return nil, err
	}
	if err := set(keyNumber, c.Number); err != nil {
		return nil, err
	}
	if c.MultiverseID.IsSet() {
		if err := set(keyMultiverseID, c.MultiverseID); err != nil {
			return nil, err
		}
	}
	if c.UUID != "" {
		if err := set(keyUUID, c.UUID); err != nil {
			return nil, err
		}
	}
	if c.SetCode != "" {
		if err := set(keySetCode, c.SetCode); err != nil {
			return nil, err
		}
	}
	return out, nil
}
