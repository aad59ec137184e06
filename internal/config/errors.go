package config

import "errors"

// Configuration validation errors returned by Validate, usable with errors.Is
var (
	// ErrNoSeed is returned when the seed community is empty
	ErrNoSeed = errors.New("seed community is required")

	// ErrInvalidMaxIterations is returned for a negative iteration cap;
	// use 0 for an unbounded crawl
	ErrInvalidMaxIterations = errors.New("invalid max iterations: must be >= 0")

	// ErrInvalidCheckpointInterval is returned when the interval is below 1
	ErrInvalidCheckpointInterval = errors.New("invalid checkpoint interval: must be >= 1")

	// ErrInvalidTimeout is returned when the request timeout is under a second
	ErrInvalidTimeout = errors.New("invalid request timeout: must be >= 1000ms")

	// ErrInvalidDelay is returned for a negative request delay
	ErrInvalidDelay = errors.New("invalid request delay: must be >= 0")

	// ErrOutputCollision is returned when two snapshot slots share a path,
	// or an input snapshot would be overwritten by an output slot
	ErrOutputCollision = errors.New("snapshot paths must be distinct")
)
