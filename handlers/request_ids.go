package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// entityID is a reference to another record in a request body. The clients
// send it as a number, as the numeric string of a select value, or as the
// {"id": ...} object they previously read from the API.
type entityID int

func (id *entityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(data, []byte("{")):
		var ref struct {
			ID entityID `json:"id"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*id = ref.ID
	case bytes.HasPrefix(data, []byte(`"`)):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("body contains a non-numeric id %q", s)
		}
		*id = entityID(n)
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("body contains an id that is not an integer: %s", data)
		}
		*id = entityID(n)
	}
	return nil
}

func entityIDs(in []entityID) []int {
	out := make([]int, len(in))
	for i, id := range in {
		out[i] = int(id)
	}
	return out
}

// pickID resolves a reference that may arrive under its client name (field)
// or its legacy "<field>Id" alias. Sending both with different values is a
// validation failure keyed by field.
func pickID(field string, value, alias *entityID) (*int, map[string]string) {
	switch {
	case value != nil && alias != nil && *value != *alias:
		return nil, map[string]string{field: fmt.Sprintf("conflicts with %sId", field)}
	case value != nil:
		id := int(*value)
		return &id, nil
	case alias != nil:
		id := int(*alias)
		return &id, nil
	default:
		return nil, nil
	}
}

// requireID is pickID for create requests, where the reference is mandatory.
func requireID(field string, value, alias *entityID) (int, map[string]string) {
	id, fields := pickID(field, value, alias)
	if fields != nil {
		return 0, fields
	}
	if id == nil {
		return 0, map[string]string{field: "is required"}
	}
	return *id, nil
}
