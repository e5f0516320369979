package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"medstudy-be/internal/repository/contract"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ValidateRequest checks the validate tags of a request DTO and reports the first violation as a
// ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		message := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		if fe.Param() != "" {
			message = fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
		}
		return contract.NewValidationError(fe.Field(), message)
	}
	return contract.NewValidationError("", err.Error())
}
