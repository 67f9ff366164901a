package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = vv.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return vv
}

func Struct(s any) error { return v.Struct(s) }

// FieldErrors maps a json field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for k, m := range fe {
		parts = append(parts, k+": "+m)
	}
	return strings.Join(parts, "; ")
}

// Fields runs Struct and converts validator errors into FieldErrors.
// A nil result means the value is valid.
func Fields(s any) FieldErrors {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	out := FieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range ve {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "this field is required"
	case "max":
		return "ensure this value has at most " + fe.Param() + " characters"
	case "min":
		return "ensure this value has at least " + fe.Param() + " characters"
	case "alphanum":
		return "only letters and digits are allowed"
	default:
		return "invalid value"
	}
}
