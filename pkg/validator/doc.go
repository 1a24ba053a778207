// Package validator collects rule-based input validation errors.
//
//	err := validator.Apply(
//		validator.Required("name", in.Name),
//		validator.MaxLen("name", in.Name, 120),
//	)
//	if ve := validator.Extract(err); ve != nil { ... }
//
// Every failure is reported, not just the first, and ValidationErrors matches
// ErrValidationFailed with errors.Is.
package validator
