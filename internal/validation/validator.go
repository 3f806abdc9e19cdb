// Package validation wires custom tags into gin's validator and runs the
// ordered per-field rule lists that struct tags cannot express.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/apperrors"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	registerOnce sync.Once
	registerErr  error
)

// ReservedUsernames cannot be registered because they collide with routes.
var ReservedUsernames = []string{"me", "subscriptions", "set_password"}

// RegisterBindings installs the custom tags on gin's default validator and
// reports fields by their JSON names. Safe to call more than once.
func RegisterBindings() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}
		registerErr = Register(v)
	})
	return registerErr
}

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", validateUsername); err != nil {
		return fmt.Errorf("register username validator: %w", err)
	}
	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		return fmt.Errorf("register slug validator: %w", err)
	}
	return nil
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, reserved := range ReservedUsernames {
		if strings.EqualFold(value, reserved) {
			return false
		}
	}
	return usernamePattern.MatchString(value)
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// FromBindError converts a gin binding failure into an InvalidArgument error
// with one message per offending field.
func FromBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.InvalidArgument("malformed request body").WithCause(err)
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.InvalidArgument("invalid request").WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "username":
		return "enter a valid username: letters, digits and @/./+/-/_ only"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
