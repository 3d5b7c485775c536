package entity

import "fmt"

// ParseError is fatal: the annotation document is malformed or usable
// observations could not be found in it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse annotations %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError is fatal: the invocation configuration is unusable
// (missing inputs, bad range, unknown schema).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FrameExtractionError is fatal: the video could not be opened or
// probed at all. Individual frame decode failures are warnings, not
// this error.
type FrameExtractionError struct {
	VideoPath string
	Err       error
}

func (e *FrameExtractionError) Error() string {
	return fmt.Sprintf("extract frames from %s: %v", e.VideoPath, e.Err)
}

func (e *FrameExtractionError) Unwrap() error { return e.Err }
