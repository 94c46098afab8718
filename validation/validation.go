// Package validation checks form input before any request is made.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	urlPattern      = regexp.MustCompile(`(?i)^https?://[-\w.]+(?::\d+)?(?:/\S*)?$`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
	spacesPattern   = regexp.MustCompile(`\s+`)
)

const RequiredMessage = "This field is required"

// Errors holds the messages for every invalid field. It is an error; errors.Is
// matches it against ErrValidation.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == apperrors.ErrValidation
}

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Err returns e as an error, or nil when no field failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Rule is one check on a field value.
type Rule struct {
	Check   func(value string) bool
	Message string
}

func Required() Rule {
	return Rule{Check: func(v string) bool { return strings.TrimSpace(v) != "" }, Message: RequiredMessage}
}

func Email() Rule {
	return Rule{Check: emailPattern.MatchString, Message: "Please enter a valid email address"}
}

func URL() Rule {
	return Rule{Check: urlPattern.MatchString, Message: "Please enter a valid URL"}
}

func Slug() Rule {
	return Rule{Check: slugPattern.MatchString, Message: "Must be a valid slug (lowercase letters, numbers, and hyphens only)"}
}

func Username() Rule {
	return Rule{
		Check:   usernamePattern.MatchString,
		Message: "Username must be 3-30 characters and contain only letters, numbers, and underscores",
	}
}

func MinLength(n int) Rule {
	return Rule{
		Check:   func(v string) bool { return len([]rune(v)) >= n },
		Message: fmt.Sprintf("Must be at least %d characters", n),
	}
}

func MaxLength(n int) Rule {
	return Rule{
		Check:   func(v string) bool { return len([]rune(v)) <= n },
		Message: fmt.Sprintf("Must be no more than %d characters", n),
	}
}

// Matches passes when the value equals other, e.g. a password confirmation.
func Matches(other string) Rule {
	return Rule{Check: func(v string) bool { return v == other }, Message: "Passwords do not match"}
}

// Optional applies r only to non-empty values.
func Optional(r Rule) Rule {
	return Rule{Check: func(v string) bool { return v == "" || r.Check(v) }, Message: r.Message}
}

// Schema maps field names to their rules, checked in order.
type Schema map[string][]Rule

// Validate checks values against the schema. Missing fields validate as "".
func (s Schema) Validate(values map[string]string) Errors {
	errs := Errors{}
	for field, rules := range s {
		for _, rule := range rules {
			if !rule.Check(values[field]) {
				errs.Add(field, rule.Message)
			}
		}
	}
	return errs
}

func LoginSchema() Schema {
	return Schema{
		"email":    {Required(), Email()},
		"password": {Required(), MinLength(6)},
	}
}

func RegisterSchema(password string) Schema {
	return Schema{
		"first_name":       {Required(), MinLength(2)},
		"last_name":        {Required(), MinLength(2)},
		"email":            {Required(), Email()},
		"password":         {Required(), MinLength(8)},
		"password_confirm": {Required(), Matches(password)},
	}
}

func ArticleSchema() Schema {
	return Schema{
		"title":   {Required(), MinLength(3), MaxLength(150)},
		"slug":    {Required(), Slug()},
		"excerpt": {MaxLength(300)},
		"content": {Required(), MinLength(10)},
	}
}

// Sanitizer transforms a string value.
type Sanitizer func(string) string

var (
	Trim            Sanitizer = strings.TrimSpace
	Lowercase       Sanitizer = strings.ToLower
	Uppercase       Sanitizer = strings.ToUpper
	RemoveHTML      Sanitizer = func(v string) string { return htmlTagPattern.ReplaceAllString(v, "") }
	NormalizeSpaces Sanitizer = func(v string) string { return spacesPattern.ReplaceAllString(v, " ") }
)

// Sanitize applies the sanitizers in order.
func Sanitize(value string, sanitizers ...Sanitizer) string {
	for _, s := range sanitizers {
		value = s(value)
	}
	return value
}
