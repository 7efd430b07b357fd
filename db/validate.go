package db

import (
	"errors"
	"reflect"
	"strings"

	"ong_equipment_tool/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates an operation input before the store is touched.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return apperr.BadRequest("%s is required", fe.Field())
		case "oneof":
			return apperr.BadRequest("%s must be one of: %s", fe.Field(), fe.Param())
		case "max":
			return apperr.BadRequest("%s is too long (max %s)", fe.Field(), fe.Param())
		default:
			return apperr.BadRequest("%s is invalid (%s)", fe.Field(), fe.Tag())
		}
	}
	return apperr.BadRequest("%v", err)
}
