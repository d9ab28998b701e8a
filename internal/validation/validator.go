// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package validation wraps go-playground/validator with the custom rules used
// by CPSync: platform handle syntax, rated platforms and calendar dates.
//
//	type leaderboardQuery struct {
//	    College  string `validate:"required,max=200"`
//	    Platform string `validate:"omitempty,rated_platform"`
//	    Limit    int    `validate:"min=1,max=500"`
//	}
//
//	if err := validation.ValidateStruct(&q); err != nil {
//	    respondError(w, http.StatusBadRequest, err.Error())
//	}
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/cpsync/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// handlePattern is the accepted syntax for a platform username.
var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// ValidHandle reports whether h is a syntactically valid platform handle.
// Leading and trailing whitespace is not tolerated.
func ValidHandle(h string) bool {
	return handlePattern.MatchString(h)
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Error returns the human-readable message.
func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every failed rule of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator with custom rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		mustRegister("handle", func(fl validator.FieldLevel) bool {
			return ValidHandle(fl.Field().String())
		})
		mustRegister("rated_platform", func(fl validator.FieldLevel) bool {
			p, ok := models.ParsePlatform(fl.Field().String())
			return ok && p.Rated()
		})
		mustRegister("date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(models.DateLayout, fl.Field().String())
			return err == nil
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// ValidateStruct validates s, returning nil or a *RequestValidationError.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

var errorMessageTemplates = map[string]string{
	"required":       "%s is required",
	"handle":         "%s must be 1-50 letters, digits, underscores or hyphens",
	"rated_platform": "%s must be one of: codeforces, codechef, leetcode",
	"date":           "%s must be a date in YYYY-MM-DD format",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
