package headwater

import (
	"fmt"
	"strings"
)

// ConfigFileError reports problems with an explicitly supplied list of
// configuration files: an empty list, paths that do not exist, or paths
// that are directories. Every offending path is listed, not just the
// first.
type ConfigFileError struct {
	// Missing holds every named path that does not exist.
	Missing []string
	// Dirs holds every named path that is a directory instead of a file.
	Dirs []string
	// Empty is set when the caller supplied an empty list.
	Empty bool
}

func (e *ConfigFileError) Error() string {
	switch {
	case e.Empty:
		return "config files: an empty list of paths was provided"
	case len(e.Missing) > 0:
		return fmt.Sprintf("missing configuration file(s): %s", strings.Join(e.Missing, ", "))
	case len(e.Dirs) > 0:
		return fmt.Sprintf("expected file paths, but these are directories: %s", strings.Join(e.Dirs, ", "))
	default:
		return "invalid configuration file list"
	}
}

// IncompleteCredentialsError reports that a resolved source is missing
// fields the declared backend kind requires. Every missing field is named.
type IncompleteCredentialsError struct {
	Kind    BackendKind
	Missing []string
}

func (e *IncompleteCredentialsError) Error() string {
	return fmt.Sprintf("incomplete credentials for %s connection: missing %s",
		e.Kind, strings.Join(e.Missing, ", "))
}

// StrategyError reports that a detection strategy found an active
// environment, committed to it, and then failed to extract usable
// settings from it. This is always a hard error: the environment was
// there, so silence would misreport broken credentials as "not
// available".
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s detected an active environment but failed to extract credentials: %v",
		e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// ProvisionError reports that a connection string was built but the
// liveness probe against it failed. Whether it propagates depends on the
// resolution path: explicit requests raise it, auto-detection captures it
// into Settings.Err and keeps going.
type ProvisionError struct {
	// Locator is the credential-redacted form of the attempted locator.
	Locator string
	Err     error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("failed to connect using %s: %v (check your configuration and that the database is running)",
		e.Locator, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }
