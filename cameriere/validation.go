package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// decodeRequest binds the JSON body into req and validates it.
// Schema violations come back as *ValidationError.
func decodeRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindingError(err)
	}
	return validateRequest(req)
}

func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, FieldError{
			Field:      fieldPath(fe.Namespace()),
			Constraint: fe.Tag(),
			Message:    describeConstraint(fe),
		})
	}

	return &ValidationError{Fields: fields}
}

func bindingError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{
			Field:      field,
			Constraint: "type",
			Message:    fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}}
	}

	return &ValidationError{Fields: []FieldError{{
		Field:      "body",
		Constraint: "json",
		Message:    "request body is not valid JSON",
	}}}
}

// fieldPath drops the root struct name: "NewOrderRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}

func describeConstraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be greater than or equal to " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed on the %q constraint", fe.Tag())
	}
}
