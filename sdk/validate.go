package sdk

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("lagoon_scope", validateScope)
}

// scopes are accepted in any case, the API lowercasing them on read
func validateScope(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, scope := range EnvVariableScopes {
		if strings.EqualFold(s, string(scope)) {
			return true
		}
	}
	return false
}

// Validate checks the `validate` tags of v. The returned error is an
// ErrWrongRequest naming the first offending field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewError(ErrWrongRequest, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_if":
		return NewErrorFrom(ErrWrongRequest, "missing required argument %q", fe.Field())
	case "oneof", "lagoon_scope":
		return NewErrorFrom(ErrInvalidEnumValue, "invalid value %q for %q", fe.Value(), fe.Field())
	}
	return NewErrorFrom(ErrWrongRequest, "invalid value %v for %q (%s %s)", fe.Value(), fe.Field(), fe.Tag(), fe.Param())
}

// ValidateEnum returns an ErrInvalidEnumValue error if value is not one of allowed.
func ValidateEnum(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return NewErrorFrom(ErrInvalidEnumValue, "invalid value %q for %q, expected one of %s", value, field, strings.Join(allowed, ", "))
}
