// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package validation checks API request structs with go-playground/validator.
//
// Fields are reported by their json name so messages match the wire format.
// Two tags are registered on top of the built-in ones:
//
//	videourl    a YouTube watch URL, youtu.be short link or bare video id
//	keysegment  non-empty and free of '/', so it can be part of a storage key
//
// Usage:
//
//	type bookmarkRequest struct {
//	    Email   string `json:"email" validate:"required,email"`
//	    VideoID string `json:"videoId" validate:"required,keysegment"`
//	}
//
//	if errs := validation.Check(&req); errs != nil {
//	    rw.ValidationError(errs.Message(), errs.Details())
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/captionmap/internal/captions"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared validator. It caches struct metadata and is
// safe for concurrent use.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)

		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("videourl", func(fl validator.FieldLevel) bool {
			_, err := captions.ParseVideoID(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("keysegment", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s != "" && !strings.Contains(s, "/")
		})
		instance = v
	})
	return instance
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// Errors collects the failed rules of one request. A nil Errors means valid.
type Errors []FieldError

func (e Errors) Error() string {
	return e.Message()
}

// Message is the human readable summary sent to clients. With several
// failures each message is prefixed by its field.
func (e Errors) Message() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return e[0].Message
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Details is the machine readable part of the VALIDATION_FAILED envelope.
func (e Errors) Details() map[string]interface{} {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return map[string]interface{}{"field": e[0].Field, "tag": e[0].Tag, "value": e[0].Value}
	}
	fields := make([]map[string]interface{}, len(e))
	for i, fe := range e {
		fields[i] = map[string]interface{}{"field": fe.Field, "tag": fe.Tag, "message": fe.Message}
	}
	return map[string]interface{}{"fields": fields}
}

// Check validates s and returns nil when every rule passes.
func Check(s interface{}) Errors {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return Errors{{Field: "request", Tag: "struct", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: describe(fe),
		}
	}
	return out
}

var plainMessages = map[string]string{
	"required":   "%s is required",
	"email":      "%s must be a valid email address",
	"videourl":   "%s must be a YouTube watch URL, short link or video id",
	"keysegment": "%s must be non-empty and must not contain '/'",
	"uuid":       "%s must be a valid UUID",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func describe(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if f, ok := plainMessages[tag]; ok {
		return fmt.Sprintf(f, field)
	}
	if f, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(f, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
