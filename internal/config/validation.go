package config

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is a single invalid configuration key.
type FieldError struct {
	Key     string
	Message string
	Cause   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Message)
}

// ValidationErrors collects every invalid key so the user sees them all at
// once.
type ValidationErrors struct {
	Errors []FieldError
}

// Add records err against key.
func (v *ValidationErrors) Add(key string, err error) {
	if err == nil {
		return
	}
	v.Errors = append(v.Errors, FieldError{Key: key, Message: err.Error(), Cause: err})
}

// AddMessage records a message against key.
func (v *ValidationErrors) AddMessage(key, message string) {
	v.Errors = append(v.Errors, FieldError{Key: key, Message: message})
}

// Err returns nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Is matches the cause of any recorded error.
func (v *ValidationErrors) Is(target error) bool {
	for _, e := range v.Errors {
		if e.Cause != nil && errors.Is(e.Cause, target) {
			return true
		}
	}
	return false
}
