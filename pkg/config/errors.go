package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrReadingFile is returned when a configuration file cannot be read.
	ErrReadingFile = errors.New("config: failed to read file")

	// ErrDecodingFile is returned when a configuration file is not valid YAML for the target type.
	ErrDecodingFile = errors.New("config: failed to decode file")

	// ErrNilPointer is returned when a nil pointer is provided to a loader.
	ErrNilPointer = errors.New("config: nil pointer provided")
)
