package projects

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "codeberg.org/appspec/server/internal/errors"
	"github.com/go-playground/validator/v10"
)

// same tag name gin binds with, so handler and repository enforce identical bounds
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// makes gin's binding validator report json field names
func UseJSONFieldNames(engine any) {
	if v, ok := engine.(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// runs struct validation and converts failures into a ValidationError
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if verr := AsValidation(err); verr != nil {
		return verr
	}

	return apperrors.Validationf("%s", err.Error())
}

// converts validator field errors into a ValidationError, nil for any other error
func AsValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}

	return apperrors.Validationf("%s", strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
