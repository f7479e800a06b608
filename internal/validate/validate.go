package validate

import (
	"strconv"
	"strings"
)

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule is a deferred check against one request field. It returns nil when the
// field is valid.
type Rule func() *FieldError

// Run evaluates the rules in order and collects every violation. It never
// short-circuits, so the caller always gets the full list.
func Run(rules ...Rule) []FieldError {
	var errs []FieldError
	for _, rule := range rules {
		if fe := rule(); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// Required fails when the value is empty or whitespace.
func Required(field, value, message string) Rule {
	return func() *FieldError {
		if strings.TrimSpace(value) == "" {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	}
}

// OneOf fails when the value is not an exact (case-sensitive) member of allowed.
func OneOf(field, value string, allowed []string, message string) Rule {
	return func() *FieldError {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return &FieldError{Field: field, Message: message}
	}
}

// Integer fails when the value does not parse as a base-10 integer.
func Integer(field, value, message string) Rule {
	return func() *FieldError {
		if _, err := strconv.Atoi(value); err != nil {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	}
}
