package config

import "errors"

var (
	// ErrInvalidSeedURL is returned when the seed URL is missing or not http(s)
	ErrInvalidSeedURL = errors.New("seed URL must be an absolute http or https URL")
	// ErrInvalidDepth is returned when max depth is outside [0, MaxDepthLimit]
	ErrInvalidDepth = errors.New("max depth out of range")
	// ErrInvalidPageLimit is returned when max pages is outside [1, MaxPagesLimit]
	ErrInvalidPageLimit = errors.New("max pages out of range")
	// ErrInvalidFormat is returned for an unknown output format
	ErrInvalidFormat = errors.New("unknown output format")
)
