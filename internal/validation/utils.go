package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by every request payload. Validate returns
// validator.ValidationErrors or CustomValidationErrors.
type Validatable interface {
	Validate() error
}

// Defaulter is implemented by payloads that substitute default values for
// absent optional fields. ApplyDefaults runs after binding and before Validate.
type Defaulter interface {
	ApplyDefaults()
}

// CustomValidationError is a field failure validator tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// EmptyRequest is the payload of actions that take no input.
type EmptyRequest struct{}

func (EmptyRequest) Validate() error {
	return nil
}

// validate is shared by every request type. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report the name the client actually sent instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return v
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds path params, query (GET/DELETE) and the JSON body
// into payload, applies defaults and validates it. Failures are 400
// *errs.HTTPError values with field-level errors. payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	if d, ok := payload.(Defaulter); ok {
		d.ApplyDefaults()
	}

	if msg, fieldErrors := validateStruct(payload); msg != "" {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindErrorMessage pulls the binder's message out of echo's error wrapper.
func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request payload"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", nil
	}

	for _, err := range validationErrors {
		field := fieldPath(err)

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: fieldMessage(field, err),
		})
	}

	return "Validation failed", fieldErrors
}

// fieldPath drops the root struct name from the namespace, so nested fields
// read "settings.webhookUrl" and list items "role[0]".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func fieldMessage(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		// For strings and lists min is a length, for numbers a value.
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", err.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must contain at least %s items", err.Param())
		default:
			return fmt.Sprintf("must be at least %s", err.Param())
		}

	case "max":
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must not contain more than %s items", err.Param())
		default:
			return fmt.Sprintf("must not exceed %s", err.Param())
		}

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "email":
		return "must be a valid email address"

	case "url", "http_url":
		return "must be a valid URL"

	case "e164":
		return "must be a valid phone number with country code"

	case "uuid":
		return "must be a valid UUID"

	case "startswith":
		return fmt.Sprintf("must start with %s", err.Param())

	default:
		if err.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
		}
		return fmt.Sprintf("%s: %s", field, err.Tag())
	}
}
