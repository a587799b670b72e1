package model

// ValidationError reports a malformed rule at write/import time. It is never
// raised during pricing evaluation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "model: invalid " + e.Field + ": " + e.Reason
}
