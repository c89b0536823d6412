package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule codes, shared with the JSON schema validator output.
const (
	CodeRequired     = "REQUIRED_FIELD_MISSING"
	CodeInvalidType  = "INVALID_TYPE"
	CodeMinLength    = "MIN_LENGTH_VIOLATION"
	CodeInvalidEnum  = "INVALID_ENUM_VALUE"
	CodePattern      = "PATTERN_MISMATCH"
	CodeNotNumeric   = "NOT_NUMERIC"
	CodeEmptySet     = "EMPTY_SELECTION"
	CodeInvalidValue = "INVALID_VALUE"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var urlPattern = regexp.MustCompile(`^(https?://)?[^\s/$.?#][^\s]*\.[^\s]+$`)

// Document is a decoded JSON object addressed by dotted field paths.
type Document map[string]interface{}

// Lookup resolves a dotted path such as "blogging.frequency".
func (d Document) Lookup(path string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(d)
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Check reports whether a value satisfies a rule. present is false when the path is absent.
type Check func(value interface{}, present bool) bool

// Rule is one predicate and the message shown when it fails.
type Rule struct {
	Code    string
	Message string
	Check   Check
	// When gates the rule on other fields of the document; nil means always.
	When func(doc Document) bool
}

// OnlyWhen returns a copy of r that applies only when cond holds.
func (r Rule) OnlyWhen(cond func(doc Document) bool) Rule {
	r.When = cond
	return r
}

// Field binds a dotted path to its ordered rules.
type Field struct {
	Path  string
	Rules []Rule
}

// Schema is an ordered list of fields. Only the first failing rule of each field is reported.
type Schema []Field

// Validate evaluates every field of the schema against doc.
func (s Schema) Validate(doc Document) *ValidationResult {
	errs := []ValidationError{}
	for _, field := range s {
		value, present := doc.Lookup(field.Path)
		for _, rule := range field.Rules {
			if rule.When != nil && !rule.When(doc) {
				continue
			}
			if !rule.Check(value, present) {
				errs = append(errs, ValidationError{
					Field:   field.Path,
					Message: rule.Message,
					Code:    rule.Code,
				})
				break
			}
		}
	}
	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// Paths lists the field paths covered by the schema.
func (s Schema) Paths() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Path
	}
	return out
}

// IsTrue is a When condition that holds when path is the boolean true.
func IsTrue(path string) func(doc Document) bool {
	return func(doc Document) bool {
		v, ok := doc.Lookup(path)
		b, isBool := v.(bool)
		return ok && isBool && b
	}
}

func isEmpty(value interface{}, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// Required fails on absent, null, blank strings and empty lists.
func Required(message string) Rule {
	return Rule{
		Code:    CodeRequired,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			return !isEmpty(value, present)
		},
	}
}

// String accepts absent or null values and strings.
func String(message string) Rule {
	return Rule{
		Code:    CodeInvalidType,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			if !present || value == nil {
				return true
			}
			_, ok := value.(string)
			return ok
		},
	}
}

// MinLength requires a string of at least n characters.
func MinLength(n int, message string) Rule {
	return Rule{
		Code:    CodeMinLength,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			s, ok := value.(string)
			return ok && utf8.RuneCountInString(strings.TrimSpace(s)) >= n
		},
	}
}

// OneOf requires a string from allowed. Blank values pass; pair with Required when mandatory.
func OneOf(allowed []string, message string) Rule {
	return Rule{
		Code:    CodeInvalidEnum,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			if isEmpty(value, present) {
				return true
			}
			s, ok := value.(string)
			return ok && contains(allowed, s)
		},
	}
}

// Boolean requires a present boolean.
func Boolean(message string) Rule {
	return Rule{
		Code:    CodeInvalidType,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			_, ok := value.(bool)
			return present && ok
		},
	}
}

// List accepts absent or null values and arrays of strings.
func List(message string) Rule {
	return Rule{
		Code:    CodeInvalidType,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			if !present || value == nil {
				return true
			}
			items, ok := value.([]interface{})
			if !ok {
				return false
			}
			for _, item := range items {
				if _, ok := item.(string); !ok {
					return false
				}
			}
			return true
		},
	}
}

// NonEmptyList requires at least one selected option.
func NonEmptyList(message string) Rule {
	return Rule{
		Code:    CodeEmptySet,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			items, ok := value.([]interface{})
			return present && ok && len(items) > 0
		},
	}
}

// EachOneOf requires every element of a list to come from allowed.
func EachOneOf(allowed []string, message string) Rule {
	return Rule{
		Code:    CodeInvalidEnum,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			items, _ := value.([]interface{})
			for _, item := range items {
				s, ok := item.(string)
				if !ok || !contains(allowed, s) {
					return false
				}
			}
			return true
		},
	}
}

// URL accepts blank values and URL-shaped strings, with or without a scheme.
func URL(message string) Rule {
	return Rule{
		Code:    CodePattern,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			if isEmpty(value, present) {
				return true
			}
			s, ok := value.(string)
			return ok && ValidateURL(strings.TrimSpace(s))
		},
	}
}

// Numeric requires a string holding a plain non-negative decimal such as "1500" or "99.95".
// Signs, exponents, hex floats and Inf/NaN spellings are rejected.
func Numeric(message string) Rule {
	return Rule{
		Code:    CodeNotNumeric,
		Message: message,
		Check: func(value interface{}, present bool) bool {
			s, ok := value.(string)
			return ok && decimalPattern.MatchString(strings.TrimSpace(s))
		},
	}
}

func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
