package core

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errInvalidRef = errors.New("reference must be an id or an object with an id")

// Ref is a reference to another document.
// Clients may send either the bare id or the populated document; both decode to the id.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref(CleanString(id))
		return nil
	case '{':
		var obj struct {
			ID  string `json:"id"`
			OID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		id := CleanString(obj.ID)
		if id == "" {
			id = CleanString(obj.OID)
		}
		if id == "" {
			return errInvalidRef
		}
		*r = Ref(id)
		return nil
	}
	return errInvalidRef
}

func (r Ref) String() string { return string(r) }
