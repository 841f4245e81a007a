package config

import "errors"

var (
	// ErrParsingConfig is returned when a file or the environment cannot be decoded into Config.
	ErrParsingConfig = errors.New("failed to parse configuration")

	// ErrReadingFile is returned when a config or .env file cannot be read.
	ErrReadingFile = errors.New("failed to read configuration file")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
