package solver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Request is a normalized, already validated puzzle state.
// Two requests are equal only if their strings are byte-identical.
type Request string

// Moves is the ordered move sequence that solves a Request.
type Moves []string

// Clone returns a copy that can be handed to a caller without exposing
// the backing array of a cached value.
func (m Moves) Clone() Moves {
	if m == nil {
		return nil
	}
	out := make(Moves, len(m))
	copy(out, m)
	return out
}

// Provenance names the backend that produced a result.
type Provenance string

const (
	ProvenanceRemote Provenance = "remote"
	ProvenanceLocal  Provenance = "local"
)

func (p Provenance) String() string {
	return string(p)
}

// ErrUnsolvable is wrapped by a Computer that rejects a well-formed state
// because no move sequence reaches the solved cube from it.
var ErrUnsolvable = errors.New("state is not solvable")

// Computer is the opaque solving capability. Implementations must be pure:
// the same state always yields the same moves or the same failure.
type Computer interface {
	Compute(state string) ([]string, error)
}

// ComputeFunc adapts a plain function to Computer.
type ComputeFunc func(state string) ([]string, error)

func (f ComputeFunc) Compute(state string) ([]string, error) {
	return f(state)
}

const fingerprintLength = 12

// Fingerprint returns a short SHA-256 prefix of the state. Logs carry the
// fingerprint, never the raw state.
func Fingerprint(state Request) string {
	sum := sha256.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
