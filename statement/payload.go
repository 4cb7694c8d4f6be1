package statement

import (
	"encoding/json"
	"strings"
)

// Column is one entry of a result payload's description list.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row is one result row. Values are keyed by column name; a described
// column can be absent from the map.
type Row struct {
	Data map[string]any `json:"data"`
}

// Payload is the structured result emitted by the remote SQL wrapper for
// a successful statement.
type Payload struct {
	Description []Column `json:"description"`
	Results     []Row    `json:"results"`
	Rowcount    int64    `json:"rowcount"`
}

// ParsePayload decodes the textual statement output. The remote session
// can append diagnostic lines after the JSON document, so when the full
// text does not decode, only the first newline-separated fragment is
// tried before giving up.
func ParsePayload(text string) (*Payload, error) {
	text = strings.TrimSpace(text)

	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err == nil {
		return &p, nil
	}

	first, _, _ := strings.Cut(text, "\n")
	if err := json.Unmarshal([]byte(strings.TrimSpace(first)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
