package command

import (
	"encoding/json"
	"fmt"
)

// Error codes returned to callers. String-typed to match the wire format.
const (
	CodeBadRequest  = "400"
	CodeForbidden   = "403"
	CodeNotFound    = "404"
	CodeInternal    = "500"
	CodeUnavailable = "503"
)

// Result is the outcome of processing one Command: exactly one of a success
// payload, an "invalid" message (client-correctable input problem), or an
// "error" message with a coarse numeric code (system fault).
//
// The three cases are mutually exclusive in the marshalled envelope:
//
//	{"fileName": "notes.txt", "bytesWritten": 3}
//	{"invalid": "writeFile: file already exists"}
//	{"error": "Internal Error", "code": "500"}
type Result struct {
	payload map[string]any
	invalid string
	errMsg  string
	code    string
}

// OK builds a success result with the given payload.
func OK(payload map[string]any) *Result {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Result{payload: payload}
}

// Invalidf builds a client-correctable failure result.
func Invalidf(format string, v ...any) *Result {
	return &Result{invalid: fmt.Sprintf(format, v...)}
}

// Errorf builds a system-fault result with the given code.
func Errorf(code, format string, v ...any) *Result {
	return &Result{errMsg: fmt.Sprintf(format, v...), code: code}
}

// IsOK reports whether the result is a success payload.
func (r *Result) IsOK() bool { return r.invalid == "" && r.errMsg == "" }

// IsInvalid reports whether the result is a client-correctable failure.
func (r *Result) IsInvalid() bool { return r.invalid != "" }

// IsError reports whether the result is a system fault.
func (r *Result) IsError() bool { return r.errMsg != "" }

// Payload returns the success payload, or nil for failures.
func (r *Result) Payload() map[string]any {
	if !r.IsOK() {
		return nil
	}
	return r.payload
}

// InvalidMessage returns the invalid-message text ("" when not invalid).
func (r *Result) InvalidMessage() string { return r.invalid }

// ErrorMessage returns the error text ("" when not an error).
func (r *Result) ErrorMessage() string { return r.errMsg }

// Code returns the numeric error code ("" when not an error).
func (r *Result) Code() string { return r.code }

// MarshalJSON emits the wire envelope for the result.
func (r *Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.IsError():
		return json.Marshal(map[string]string{"error": r.errMsg, "code": r.code})
	case r.IsInvalid():
		return json.Marshal(map[string]string{"invalid": r.invalid})
	default:
		return json.Marshal(r.payload)
	}
}

// UnmarshalJSON reconstructs a Result from its wire envelope. Used by
// client-side consumers of replies; a map with an "invalid" or "error" key
// is interpreted as the corresponding failure case.
func (r *Result) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	if msg, ok := m["error"].(string); ok {
		code, _ := m["code"].(string)
		r.errMsg, r.code = msg, code
		return nil
	}
	if msg, ok := m["invalid"].(string); ok {
		r.invalid = msg
		return nil
	}
	r.payload = m
	return nil
}
