// Package werrors defines the structured error kinds raised by the
// mdp, simulate, and search packages. Every kind is safe to inspect
// with errors.As; ParseError, DomainError and PolicyError also wrap a
// cause reachable through Unwrap, while ValidationError and
// ConfigError carry no cause.
package werrors

import "fmt"

// ParseError reports a declarative MDP document malformed at the
// syntax level (e.g. invalid YAML).
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// FieldError is a single validation failure attributed to one field
// of the declarative document.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationError reports that a well-formed document violates one or
// more invariants from spec §4.1. Fields accumulates every failure
// found during a single validation stage; the compiler still
// short-circuits between stages (start reference, id uniqueness,
// outcome/probability, terminal-with-actions), per stage, in order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation error: %s", e.Fields[0].Error())
	}
	return fmt.Sprintf("validation error: %d issue(s), first: %s", len(e.Fields), e.Fields[0].Error())
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failures were recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// DomainError reports a caller-supplied domain violating its contract:
// a type-invalid state token, a collision detected under
// check_token_collisions, or an out-of-range action request.
type DomainError struct {
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s", e.Message)
}

func (e *DomainError) Unwrap() error { return e.Cause }

// ConfigError reports a SearchConfig field out of range or an enum
// value outside the set spec.md §4.6 defines.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// PolicyError wraps an error raised by a caller-supplied rollout
// policy callback. Its message is preserved unchanged; Run never
// rewrites or summarizes it, only propagates it (spec.md §4.6, §9).
type PolicyError struct {
	Cause error
}

func (e *PolicyError) Error() string {
	return e.Cause.Error()
}

func (e *PolicyError) Unwrap() error { return e.Cause }
