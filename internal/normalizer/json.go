package normalizer

import (
	"encoding/json"
	"fmt"
)

// EncodeJSON serializes the row set as indented JSON, the lossless
// structural format.
func EncodeJSON(rs *RowSet) ([]byte, error) {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding row set: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a JSON row set produced by EncodeJSON.
func DecodeJSON(data []byte) (*RowSet, error) {
	var rs RowSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decoding row set: %w", err)
	}
	return &rs, nil
}
