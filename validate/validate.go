// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pollbox/pollbox/models"
)

// validate is the shared validator instance, configured in init with the
// custom checks the request types rely on.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report issues against JSON field names, not Go struct fields.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", validateNotBlank)
	_ = validate.RegisterValidation("rfc3339", validateRFC3339)
}

// validateNotBlank rejects strings that are empty after trimming whitespace.
// Used for option labels: "  " is not a usable option.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateRFC3339 accepts RFC 3339 timestamps (the closesAt wire format).
func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

// Error is an InvalidInput condition: the request violated the schema and
// no part of it was applied. Issues lists every failing field.
type Error struct {
	Issues []models.Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return "invalid input"
	}
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.Field + ": " + iss.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// CreatePoll checks a poll creation payload.
func CreatePoll(req *models.CreatePollRequest) *Error {
	return check(req)
}

// UpdatePoll checks a partial poll edit. Every field is optional; present
// fields must still satisfy the creation constraints (except description,
// which may be shortened or cleared on edit).
func UpdatePoll(req *models.UpdatePollRequest) *Error {
	return check(req)
}

// Vote checks a vote submission: optionId must be UUID-shaped.
func Vote(req *models.VoteRequest) *Error {
	return check(req)
}

func check(v any) *Error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError only happens on non-struct input
		return &Error{Issues: []models.Issue{{Field: "", Message: err.Error()}}}
	}

	issues := make([]models.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, models.Issue{
			Field:   issueField(fe),
			Message: issueMessage(fe),
		})
	}
	return &Error{Issues: issues}
}

// issueField strips the struct name prefix from the namespace so issues
// read "options[1]" rather than "CreatePollRequest.options[1]".
func issueField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Ptr {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "notblank":
		return "must not be blank"
	case "rfc3339":
		return "must be an RFC 3339 timestamp"
	case "uuid":
		return "must be a UUID"
	default:
		return "is invalid"
	}
}
