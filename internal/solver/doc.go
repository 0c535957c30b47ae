// Package solver holds the types shared by every backend that can answer a
// solve request: the normalized request, the resulting move sequence, the
// provenance tag reported to callers and the error taxonomy used to decide
// whether a failure can be recovered by falling back to another backend.
package solver
