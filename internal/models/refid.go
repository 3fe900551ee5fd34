package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RefID identifica um registro de outro serviço (dono, endereço).
// No JSON aceita tanto número quanto string; sempre serializa como string.
type RefID string

func (id *RefID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RefID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = RefID(n.String())
	return nil
}

func (id RefID) String() string { return string(id) }
