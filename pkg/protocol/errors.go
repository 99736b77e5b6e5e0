// Package protocol provides standardized error types for provider adapters.
package protocol

import (
	"errors"
	"fmt"
)

// ProviderError wraps an adapter-level failure: auth, network, rate limit or
// malformed response. It fails the owning node only; the run continues and
// dependents are skipped.
type ProviderError struct {
	Provider string // Adapter that failed (e.g. "openai", "http")
	Detail   string // Provider-specific diagnostic detail
	Err      error  // Underlying error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("provider %s failed: %s (%v)", e.Provider, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("provider %s failed: %s", e.Provider, e.Detail)
	default:
		return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or invalid required config key, detected
// either at validation time or just before dispatch.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config key %q: %s", e.Key, e.Reason)
}

// NewMissingConfigError is the common missing-required-key case.
func NewMissingConfigError(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "required key is missing"}
}

// IsProviderError checks if an error is an adapter-level failure.
func IsProviderError(err error) bool {
	var target *ProviderError

	return errors.As(err, &target)
}

// IsConfigError checks if an error is a node configuration failure.
func IsConfigError(err error) bool {
	var target *ConfigError

	return errors.As(err, &target)
}
