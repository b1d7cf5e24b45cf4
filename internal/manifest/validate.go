package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("localarchive", func(fl validator.FieldLevel) bool {
		return isLocalArchive(fl.Field().String())
	})
	return v
}

// isLocalArchive reports whether name is a file below the archive directory.
// Backslashes are refused on every platform.
func isLocalArchive(name string) bool {
	return filepath.IsLocal(name) && filepath.Clean(name) != "." && !strings.Contains(name, `\`)
}

func validateEntry(entry Entry) error {
	err := entryValidator.Struct(entry)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fieldErr.Field()+" "+friendlyMessage(fieldErr))
	}
	return fmt.Errorf("system %q game %q: %s", entry.System, entry.Game, strings.Join(messages, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "localarchive":
		return "must be a relative path inside the archive directory"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
