package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// PermissionError represents a policy denial.
type PermissionError struct {
	Action string
}

func (e PermissionError) Error() string {
	if e.Action == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied: %s", e.Action)
}

// Is enables errors.Is matching on PermissionError.
func (e PermissionError) Is(target error) bool {
	_, ok := target.(PermissionError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionError)
	return ok
}

// ErrPermissionDenied is the sentinel error for policy denials.
var ErrPermissionDenied = PermissionError{}

// ValidationError reports a rejected field.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}
