package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

func newError(field, key, message string, values map[string]any) ValidationError {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return ValidationError{Field: field, Message: message, TranslationKey: key, Values: values}
}

// Required fails for empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: newError(field, "validation.required", "field is required", nil),
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: newError(field, "validation.max_length",
			fmt.Sprintf("must be at most %d characters long", max), map[string]any{"max": max}),
	}
}

func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: newError(field, "validation.one_of",
			fmt.Sprintf("must be one of %v", allowed), map[string]any{"allowed": allowed}),
	}
}

func NonNegative[T ~int | ~int32 | ~int64](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value >= 0 },
		Error: newError(field, "validation.non_negative", "must not be negative", nil),
	}
}

// Satisfies wraps an arbitrary predicate, such as a format check owned by
// another package, into a Rule reported under key.
func Satisfies(field string, ok func(string) bool, value, key, message string) Rule {
	return Rule{
		Check: func() bool { return ok(value) },
		Error: newError(field, key, message, nil),
	}
}

// Optional applies rule only when value is not empty.
func Optional(value string, rule Rule) Rule {
	return Rule{
		Check: func() bool { return value == "" || rule.Check() },
		Error: rule.Error,
	}
}
