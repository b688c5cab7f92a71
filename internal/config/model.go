// internal/config/model.go
//
// Typed configuration model for the Grafana charm agent.
//
// Context
// -------
// `Raw` mirrors the charm's option surface exactly: every option arrives
// from the orchestrator as a string (booleans and lists included), so the
// struct is string-typed end to end.  `Resolve()` in resolve.go turns a
// Raw into the normalized `Resolved` aggregate that the installer and
// provisioner consume; nothing downstream ever touches a Raw again.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"` for the loader and `validate:"…"` for
//     go-playground/validator.  Tag names are the charm option names.
//   • Install sources and keys are accepted in the charm's paired-list
//     encoding but are converted to `[]Repo` pairs immediately, so the
//     index-matching invariant never leaks past this package.
//   • Oxford commas, two spaces after periods.

package config

//
// Raw option surface
//

// Raw is the charm configuration as supplied by the environment, one
// field per declared option, all string-typed.  It is immutable for the
// duration of a Resolve call.
type Raw struct {
	InstallSources      string `koanf:"install_sources"`
	InstallKeys         string `koanf:"install_keys"`
	InstallFile         string `koanf:"install_file" validate:"omitempty,url"`
	AppMode             string `koanf:"app_mode" validate:"required,oneof=production development"`
	Anonymous           string `koanf:"anonymous"`
	AnonymousRole       string `koanf:"anonymous_role"`
	Datasources         string `koanf:"datasources"`
	DefaultDashboards   string `koanf:"default_dashboards"`
	NagiosContext       string `koanf:"nagios_context"`
	NagiosServicegroups string `koanf:"nagios_servicegroups"`
	Port                string `koanf:"port"`
	AdminPassword       string `koanf:"admin_password"`
}

// Defaults returns a Raw populated with the charm's declared defaults.
// The loader overlays file and environment values on top of these.
func Defaults() Raw {
	return Raw{
		InstallSources:      `["deb https://packagecloud.io/grafana/stable/debian/ wheezy main"]`,
		InstallKeys:         `["418A7F2FB0E1E6E7EABF6FE8C2E73424D59097AB"]`,
		AppMode:             "production",
		Anonymous:           "false",
		AnonymousRole:       "Viewer",
		NagiosContext:       "juju",
		NagiosServicegroups: "juju",
		Port:                "3000",
	}
}

//
// Install specification
//

// Repo pairs one apt source line with the GPG key that signs it.  The
// key may be empty when the source needs no verification.
type Repo struct {
	Source string
	Key    string
}

// InstallSpec names exactly one installation method.  When File is
// non-empty the deb at that URL is installed directly and Repos is nil;
// otherwise Repos carries at least one source/key pair.
type InstallSpec struct {
	File  string
	Repos []Repo
}

// FromFile reports whether the spec installs from a single deb URL.
func (s InstallSpec) FromFile() bool { return s.File != "" }

//
// Datasource specification
//

// Datasource is one parsed entry of the `datasources` option.  Password,
// User, and Database may be empty; the remaining fields are positional
// and always present.
type Datasource struct {
	Type     string
	Name     string
	Access   string
	URL      string
	Password string
	User     string
	Database string
}

//
// Resolved aggregate
//

// Resolved is the validated, normalized form of all options.  It is
// immutable once returned by Resolve and safe to share across
// goroutines; the provisioning collaborators receive it read-only.
type Resolved struct {
	Install     InstallSpec
	Datasources []Datasource
	Dashboards  []string

	AppMode       string
	Anonymous     bool
	AnonymousRole string
	Port          uint16

	NagiosContext       string
	NagiosServicegroups string

	// AdminPassword is the operator-supplied value, or a freshly
	// generated 16-character secret when the option was left empty.
	// PasswordGenerated tells the caller whether to persist it.
	AdminPassword     string
	PasswordGenerated bool
}
