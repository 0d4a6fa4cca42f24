package model

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MaxUsernameLength is the longest accepted username, in characters
const MaxUsernameLength = 32

// FieldUsername is the validation key for username errors
const FieldUsername = "username"

var (
	usernameStartPattern = regexp.MustCompile(`(?i)^[a-z]`)
	usernamePattern      = regexp.MustCompile(`(?i)^[a-z][a-z0-9_]{2,}$`)
)

// ValidationError collects field-keyed messages for rejected input
type ValidationError struct {
	Fields map[string][]string
}

// Add records a message against a field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors returns true if any message was recorded
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Error joins every message as "field message"
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		for _, msg := range e.Fields[f] {
			parts = append(parts, f+" "+msg)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateUsername checks the format rules for a username.
// All failing rules are reported; uniqueness is checked by the account directory.
func ValidateUsername(username string) *ValidationError {
	verr := &ValidationError{}
	if !usernameStartPattern.MatchString(username) {
		verr.Add(FieldUsername, "must start with a letter")
	}
	if !usernamePattern.MatchString(username) {
		verr.Add(FieldUsername, "must be at least 3 letters, numbers, or underscores")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		verr.Add(FieldUsername, "is too long")
	}
	if !verr.HasErrors() {
		return nil
	}
	return verr
}

// UsernameKey returns the case-folded form used for username lookups
func UsernameKey(username string) string {
	return cases.Fold().String(username)
}

// SameUsername reports whether two usernames match case-insensitively
func SameUsername(a, b string) bool {
	return UsernameKey(a) == UsernameKey(b)
}
