package validation

import "strings"

// Validator collects field-level messages for a single request.
type Validator struct {
	Errors []string `json:",omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

func (v *Validator) AddError(message string) {
	if v.Errors == nil {
		v.Errors = []string{}
	}

	v.Errors = append(v.Errors, message)
}

func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

// Err returns nil when no check failed, otherwise an *Error wrapping
// ErrInvalidRequest.
func (v Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return &Error{Kind: ErrInvalidRequest, Details: v.Errors}
}

// NotBlank reports whether s has any non-space characters.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// MaxChars reports whether s is at most n characters long.
func MaxChars(s string, n int) bool {
	return len([]rune(s)) <= n
}
