package ledger

import (
	"encoding/json"
	"fmt"
)

// Encode serialises s in the persisted blob format.
func Encode(s State) ([]byte, error) {
	s.normalize()

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}

	return data, nil
}

// Decode parses a persisted blob. Missing tables decode as empty and the
// identity counter is raised above every identity present, so blobs written
// by versions that derived ids from the last row stay collision free.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decoding state: %w", err)
	}

	s.normalize()

	return s, nil
}
