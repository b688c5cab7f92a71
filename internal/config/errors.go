// internal/config/errors.go
//
// Validation error taxonomy.
//
// Context
// -------
// Every way a Resolve call can fail has a dedicated type carrying the
// offending option and value, so the agent can report a precise message
// to the operator and tests can assert with errors.As.  All of these are
// recoverable: the operator corrects the option and the next
// config-changed event retries.
//
// Notes
// -----
// • Resolve is fail-fast; callers only ever see the first error.
// • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"strings"
)

// errNoResolver is returned when an option carries a vault: reference
// but no secret resolver was installed at boot.
var errNoResolver = errors.New("secret reference found but no vault resolver is configured")

// ErrEmptyInstallSpec is returned when install_file, install_sources,
// and install_keys are all empty: there is no way to install Grafana.
var ErrEmptyInstallSpec = errors.New("no installation method configured: install_file and install_sources are both empty")

// ListLengthError reports an install_sources/install_keys pairing whose
// lengths differ.
type ListLengthError struct {
	Sources int
	Keys    int
}

func (e *ListLengthError) Error() string {
	return fmt.Sprintf("install_sources and install_keys must pair up: %d source(s) but %d key(s)", e.Sources, e.Keys)
}

// ListParseError reports an option whose value could not be parsed as a
// YAML list of strings.
type ListParseError struct {
	Option string
	Value  string
	Err    error
}

func (e *ListParseError) Error() string {
	return fmt.Sprintf("%s is not a valid list: %q: %v", e.Option, e.Value, e.Err)
}

func (e *ListParseError) Unwrap() error { return e.Err }

// DatasourceError reports a datasources entry that does not split into
// exactly the expected comma-separated field count.
type DatasourceError struct {
	Entry string
	Got   int
}

func (e *DatasourceError) Error() string {
	return fmt.Sprintf("malformed datasource %q: expected %d comma-separated fields, got %d", e.Entry, datasourceFields, e.Got)
}

// EnumError reports an option whose value is outside its allowed set.
type EnumError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("%s must be one of %s, got %q", e.Option, strings.Join(e.Allowed, ", "), e.Value)
}

// PortError reports a port value that is not an integer in [1, 65535].
type PortError struct {
	Value string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("port must be an integer between 1 and 65535, got %q", e.Value)
}

// BoolError reports an option that should parse as a boolean but does
// not.
type BoolError struct {
	Option string
	Value  string
}

func (e *BoolError) Error() string {
	return fmt.Sprintf("%s must be a boolean, got %q", e.Option, e.Value)
}

// URLError reports an install_file value that is not a well-formed URL.
type URLError struct {
	Value string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("install_file must be a well-formed URL, got %q", e.Value)
}
