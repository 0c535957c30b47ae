// Package local answers solve requests in-process. The Engine fronts an
// opaque solver.Computer with a fixed-capacity LRU cache shared by every
// caller that holds the engine.
package local
