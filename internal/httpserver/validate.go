package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ayresjulia/jobly/internal/apperr"
)

// equityRe matches a decimal fraction between 0 and 1 inclusive.
var equityRe = regexp.MustCompile(`^(0(\.[0-9]+)?|1(\.0+)?)$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("equity", func(fl validator.FieldLevel) bool {
		return equityRe.MatchString(fl.Field().String())
	})
	return v
}

// decode reads a JSON body into dst, rejecting unknown fields, then
// validates dst. Failures are apperr.BadRequest with one detail per problem.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("Request body required")
		}
		return apperr.BadRequest("Invalid JSON body", err.Error())
	}
	if dec.More() {
		return apperr.BadRequest("Invalid JSON body", "unexpected data after JSON value")
	}
	return s.check(dst)
}

// check runs struct validation on v.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperr.BadRequest("Validation failed", details...)
}

func describe(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "email":
		return f + " must be an email address"
	case "url":
		return f + " must be a URL"
	case "lowercase":
		return f + " must be lowercase"
	case "equity":
		return f + " must be a decimal between 0 and 1"
	}
	return fmt.Sprintf("%s failed %s", f, fe.Tag())
}
