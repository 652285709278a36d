package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// decodeObject decodes a request body into a generic JSON object. Entities
// are schemaless, so handlers work on maps and let the store keep unknown
// fields intact.
func decodeObject(r *http.Request) (map[string]any, error) {
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid json")
	}
	if obj == nil {
		return nil, fmt.Errorf("empty body")
	}
	return obj, nil
}

// toRawMessages converts stored JSON documents to json.RawMessage so the
// envelope encoder emits them verbatim.
func toRawMessages(vals [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		out = append(out, json.RawMessage(v))
	}
	return out
}
