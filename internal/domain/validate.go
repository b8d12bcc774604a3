package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks the validate tags on input and turns the first failure
// into a Validation error naming the field.
func Validate(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Validation("Invalid input")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return Validation(fmt.Sprintf("%s exceeds the maximum of %s", fe.Field(), fe.Param()))
	case "min":
		return Validation(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "oneof":
		return Validation(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	case "email":
		return Validation(fmt.Sprintf("%s must be a valid email", fe.Field()))
	default:
		return Validation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
