package models

import "encoding/json"

// Change-event kinds pushed by the backend when a row changes.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// ChangeEvent is the envelope delivered on a realtime queue whenever a
// watched table row is inserted or updated. Row is the full row payload;
// consumers decode it into the typed model at the boundary.
type ChangeEvent struct {
	Kind  string          `json:"kind"`  // INSERT | UPDATE
	Table string          `json:"table"` // e.g. orders, order_messages
	Row   json.RawMessage `json:"row"`
}

// RowID extracts the row identity without decoding the whole payload,
// used for filter matching against a subscribed key.
func (e ChangeEvent) RowID(field string) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(e.Row, &m); err != nil {
		return ""
	}
	raw, ok := m[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
