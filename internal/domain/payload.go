package domain

import "encoding/json"

// Opaque API objects keep the JSON they were decoded from so that fields the
// portal does not model pass through unchanged.

func unmarshalKeepRaw(data []byte, v any, raw *json.RawMessage) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if isNull(data) {
		return nil
	}
	*raw = append(json.RawMessage(nil), data...)
	return nil
}

func marshalRaw(raw json.RawMessage, v any) ([]byte, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(v)
}
