package errors

import "fmt"

// ConfigError represents an invalid or missing configuration value.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error [%s]: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ProviderNotConfiguredError indicates an external provider (AI, VCS) is
// missing the credentials it needs.
type ProviderNotConfiguredError struct {
	Provider string
	Reason   string
}

func (e *ProviderNotConfiguredError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("provider '%s' not configured: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("provider '%s' not configured", e.Provider)
}

func NewProviderNotConfiguredError(provider, reason string) *ProviderNotConfiguredError {
	return &ProviderNotConfiguredError{Provider: provider, Reason: reason}
}

// FetchError wraps a failure while fetching activity for one repository. The
// run catches it, logs it and moves on to the next repository.
type FetchError struct {
	Repo string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching activity for %s: %v", e.Repo, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetchError(repo string, err error) *FetchError {
	return &FetchError{Repo: repo, Err: err}
}
