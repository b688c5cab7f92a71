// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// Resolve() consults the `validate:"…"` tags on Raw one field at a time
// (StructPartial keeps the resolution steps in order: install_file is
// checked during install resolution, app_mode during scalar
// validation).  Library failures are translated into this package's
// typed taxonomy so callers never see a validator.ValidationErrors.
//
// Notes
// -----
//   • Only `url` and `oneof` rules are in play today; new option rules
//     belong on the Raw tags, with a translation case added here.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New(validator.WithRequiredStructEnabled())

//
// field validation
//

// validateField runs the validate tag for one Raw field and maps any
// failure onto the typed error for that option.
func validateField(raw *Raw, field string) error {
	err := v.StructPartial(raw, field)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch verrs[0].StructField() {
	case "InstallFile":
		return &URLError{Value: raw.InstallFile}
	case "AppMode":
		return &EnumError{
			Option:  "app_mode",
			Value:   raw.AppMode,
			Allowed: []string{"production", "development"},
		}
	}
	return err
}
