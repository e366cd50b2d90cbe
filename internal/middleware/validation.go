package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Simoh8/pamoja-vote/internal/pkg/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules on gin's validator and
// makes field errors report JSON names instead of Go field names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return fmt.Errorf("register phone rule: %w", err)
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validatePhone(fl validator.FieldLevel) bool {
	return validation.IsValidPhone(fl.Field().String())
}
