package remote

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

type solveRequest struct {
	State string `json:"state"`
}

var (
	errNotObject    = errors.New("response is not a JSON object")
	errMissingMoves = errors.New("response has no moves field")
	errMovesType    = errors.New("moves is not an array of strings")
)

func encodeRequest(state string) ([]byte, error) {
	return json.Marshal(solveRequest{State: state})
}

// decodeMoves accepts only an object whose moves field is an array of
// strings. A plain string, null, or any other shape is rejected.
func decodeMoves(body []byte) ([]string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, errNotObject
	}

	raw, ok := payload["moves"]
	if !ok {
		return nil, errMissingMoves
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errMovesType
	}

	// Pointers tell a null element apart from an empty string.
	var elems []*string
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", errMovesType, err)
	}

	moves := make([]string, 0, len(elems))
	for i, m := range elems {
		if m == nil {
			return nil, fmt.Errorf("%w: element %d is null", errMovesType, i)
		}
		moves = append(moves, *m)
	}
	return moves, nil
}
