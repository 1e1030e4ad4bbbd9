package domain

import "fmt"

// InputError marks malformed or unusable caller input: bad JSON, unsupported
// top-level types, empty FeatureCollections, or features whose content cannot
// be canonicalized for hashing. Recoverable per feature in decomposed mode,
// fatal in whole-document mode.
type InputError struct {
	err error
}

// NewInputError builds an InputError; %w wrapping is supported.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{err: fmt.Errorf(format, args...)}
}

func (e *InputError) Error() string { return e.err.Error() }
func (e *InputError) Unwrap() error { return e.err }

// ValidationError marks a record that does not conform to its schema. The
// message names the offending path, the item id when known, and the schema
// URI used.
type ValidationError struct {
	err error
}

// NewValidationError builds a ValidationError; %w wrapping is supported.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{err: fmt.Errorf(format, args...)}
}

func (e *ValidationError) Error() string { return e.err.Error() }
func (e *ValidationError) Unwrap() error { return e.err }

// ConfigurationError marks an unusable deployment: the local schema cache is
// unreachable or holds no version for an object type. It is fatal, never
// retried, and carries remediation text for the operator.
type ConfigurationError struct {
	err error
}

// NewConfigurationError builds a ConfigurationError; %w wrapping is supported.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{err: fmt.Errorf(format, args...)}
}

func (e *ConfigurationError) Error() string { return e.err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.err }
