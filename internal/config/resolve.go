// internal/config/resolve.go
//
// Raw → Resolved normalization.
//
// Context
// -------
// Resolve is the heart of the charm: it turns the string-typed option
// surface into the immutable Resolved aggregate that drives package
// installation and Grafana provisioning.  It is a pure transform: no
// I/O, no shared state, safe to call concurrently.  The only
// non-determinism is the admin-password generator, which draws from
// crypto/rand.
//
// Workflow
// --------
//  1. Install resolution   – install_file wins outright; otherwise the
//     paired install_sources/install_keys lists are parsed and zipped
//     into []Repo.
//  2. Datasource parsing   – 7 comma-separated fields per entry.
//  3. Dashboard parsing    – independent entries, no invariants.
//  4. Scalar validation    – app_mode enum, port range, anonymous bool.
//  5. Password defaulting  – generate 16 alphanumeric chars when empty.
//
// The first failure aborts the whole call; a partial Resolved is never
// returned.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charmkit/grafana/internal/secrets"
)

const (
	// datasourceFields is the positional field count of one datasources
	// entry: type, name, access, url, password, user, database.
	datasourceFields = 7

	// generatedPasswordLen matches the charm's historical pwgen(16).
	generatedPasswordLen = 16
)

// Resolve validates and normalizes a Raw configuration.  It returns the
// first validation failure encountered, typed per errors.go.
func Resolve(raw Raw) (*Resolved, error) {
	install, err := resolveInstall(raw)
	if err != nil {
		return nil, err
	}

	datasources, err := parseDatasources(raw.Datasources)
	if err != nil {
		return nil, err
	}

	dashboards := splitEntries(raw.DefaultDashboards)

	if err := validateField(&raw, "AppMode"); err != nil {
		return nil, err
	}

	port, err := parsePort(raw.Port)
	if err != nil {
		return nil, err
	}

	anonymous, err := strconv.ParseBool(strings.TrimSpace(raw.Anonymous))
	if err != nil {
		return nil, &BoolError{Option: "anonymous", Value: raw.Anonymous}
	}

	password := raw.AdminPassword
	generated := false
	if password == "" {
		password, err = secrets.Password(generatedPasswordLen)
		if err != nil {
			return nil, err
		}
		generated = true
	}

	return &Resolved{
		Install:             install,
		Datasources:         datasources,
		Dashboards:          dashboards,
		AppMode:             raw.AppMode,
		Anonymous:           anonymous,
		AnonymousRole:       raw.AnonymousRole,
		Port:                port,
		NagiosContext:       raw.NagiosContext,
		NagiosServicegroups: raw.NagiosServicegroups,
		AdminPassword:       password,
		PasswordGenerated:   generated,
	}, nil
}

//
// install resolution
//

// resolveInstall picks the installation method.  A non-empty
// install_file suppresses the source/key options entirely; they are not
// even parsed in that branch.
func resolveInstall(raw Raw) (InstallSpec, error) {
	if raw.InstallFile != "" {
		if err := validateField(&raw, "InstallFile"); err != nil {
			return InstallSpec{}, err
		}
		return InstallSpec{File: raw.InstallFile}, nil
	}

	sources, err := parseList("install_sources", raw.InstallSources)
	if err != nil {
		return InstallSpec{}, err
	}
	keys, err := parseList("install_keys", raw.InstallKeys)
	if err != nil {
		return InstallSpec{}, err
	}

	if len(sources) != len(keys) {
		return InstallSpec{}, &ListLengthError{Sources: len(sources), Keys: len(keys)}
	}
	if len(sources) == 0 {
		return InstallSpec{}, ErrEmptyInstallSpec
	}

	repos := make([]Repo, len(sources))
	for i := range sources {
		repos[i] = Repo{Source: sources[i], Key: keys[i]}
	}
	return InstallSpec{Repos: repos}, nil
}

// parseList decodes a string-encoded YAML list of strings.  A bare
// scalar is accepted as a one-element list, matching what operators
// actually type; an empty value is an empty list, not an error.
func parseList(option, value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var list []string
	seqErr := yaml.Unmarshal([]byte(value), &list)
	if seqErr == nil {
		return list, nil
	}

	var single string
	if err := yaml.Unmarshal([]byte(value), &single); err == nil {
		return []string{single}, nil
	}
	return nil, &ListParseError{Option: option, Value: value, Err: seqErr}
}

//
// datasource and dashboard parsing
//

// splitEntries breaks a semicolon- or newline-delimited option into
// trimmed, non-empty entries.
func splitEntries(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '\n'
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseDatasources splits each entry into exactly datasourceFields
// comma-separated fields, order preserved.  Trailing fields (password,
// user, database) may be empty strings.
func parseDatasources(s string) ([]Datasource, error) {
	entries := splitEntries(s)
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]Datasource, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Split(entry, ",")
		if len(fields) != datasourceFields {
			return nil, &DatasourceError{Entry: entry, Got: len(fields)}
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		out = append(out, Datasource{
			Type:     fields[0],
			Name:     fields[1],
			Access:   fields[2],
			URL:      fields[3],
			Password: fields[4],
			User:     fields[5],
			Database: fields[6],
		})
	}
	return out, nil
}

//
// scalar parsing
//

// parsePort parses the string-typed port option into [1, 65535].
func parsePort(s string) (uint16, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return 0, &PortError{Value: s}
	}
	return uint16(n), nil
}
