package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"

	// Credential lifecycle codes.
	CodeDuplicateKey        Code = "duplicate_key"          // credentialHash already issued; race lost
	CodeUnverifiedIssuer    Code = "unverified_issuer"      // issuer not verified on-chain and auto-registration failed
	CodeUnregisteredStudent Code = "unregistered_student"   // student not registered on-chain and auto-registration failed
	CodeInsufficientFunds   Code = "insufficient_funds"     // preflight shortfall; operator must fund the signer
	CodeContractCall        Code = "contract_call_failed"   // chain revert/parse/transport fault; retryable by caller
	CodeChainDiverged       Code = "chain_write_unmirrored" // chain write mined but local persistence failed
	CodeUploadFailed        Code = "upload_failed"          // blob storage collaborator fault
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Recode wraps an existing error under a new code, overriding any domain code
// already carried. Use it where an inner infrastructure failure must surface
// to callers as a specific business outcome.
func Recode(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsRetryable reports whether the failure is a transient infrastructure fault
// that a caller may retry with backoff. Validation, not-found, and lost-race
// outcomes are terminal and must not be retried.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case CodeContractCall, CodeTimeout, CodeUploadFailed:
		return true
	default:
		return false
	}
}
