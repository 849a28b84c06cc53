package catalog

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archview/pkg/errors"
)

// schema is the shared validator instance for catalog documents.
var schema *validator.Validate

func init() {
	schema = validator.New(validator.WithRequiredStructEnabled())

	// Report json field names ("credentialAlias") instead of Go names.
	schema.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateSystem checks a single system against the schema.
func ValidateSystem(s System) error {
	return check(s, "system")
}

// ValidateSystems checks every system and reports the first failure with
// its index, e.g. "systems[3].owners[0].email".
func ValidateSystems(systems []System) error {
	for i, s := range systems {
		if err := check(s, fmt.Sprintf("systems[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConnection checks a single connection against the schema.
func ValidateConnection(c Connection) error {
	return check(c, "connection")
}

// ValidateConnections checks every connection and reports the first failure.
func ValidateConnections(connections []Connection) error {
	for i, c := range connections {
		if err := check(c, fmt.Sprintf("connections[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateJourney checks a journey document against the schema. A journey
// must carry a connections list, although the list may be empty.
func ValidateJourney(j Journey) error {
	return check(j, "journey")
}

// check runs the validator and converts the first field error into an
// INVALID_INPUT error whose message starts with the field path under prefix.
func check(v any, prefix string) error {
	err := schema.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", prefix)
	}

	fe := fieldErrs[0]
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s.%s: %s", prefix, path, describe(fe))
}

// describe renders a validator failure as a short human-readable reason.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
