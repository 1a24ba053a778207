package scopes

import (
	"slices"
	"strings"
)

const (
	Separator = " "
	Wildcard  = "*"
	Delimiter = "."
)

// Parse splits a space-separated scope string, dropping empty entries.
func Parse(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func Join(scopes []string) string {
	return strings.Join(scopes, Separator)
}

// Matches reports whether pattern grants scope. "*" grants everything and
// "platform.*" grants every scope under "platform.".
func Matches(scope, pattern string) bool {
	if scope == pattern || pattern == Wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, Delimiter+Wildcard); ok {
		return strings.HasPrefix(scope, prefix+Delimiter)
	}
	return false
}

// Has reports whether any of granted matches scope.
func Has(granted []string, scope string) bool {
	return slices.ContainsFunc(granted, func(p string) bool { return Matches(scope, p) })
}

// HasAll reports whether every required scope is granted.
func HasAll(granted, required []string) bool {
	for _, r := range required {
		if !Has(granted, r) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one required scope is granted. An empty
// required list is always satisfied.
func HasAny(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	return slices.ContainsFunc(required, func(r string) bool { return Has(granted, r) })
}
