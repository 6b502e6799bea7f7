package service

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable vocabulary surfaced to callers. Codes are part of
// the API contract; messages are not.
type ErrorCode string

const (
	CodeEmailMismatch       ErrorCode = "EMAIL_MISMATCH"
	CodeLinkDataMissing     ErrorCode = "LINK_DATA_MISSING"
	CodeTokenExchangeFailed ErrorCode = "TOKEN_EXCHANGE_FAILED"
	CodeIdentityFetchFailed ErrorCode = "IDENTITY_FETCH_FAILED"
	CodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	CodeTokenWrongKind      ErrorCode = "TOKEN_WRONG_KIND"
	CodeTokenMalformed      ErrorCode = "TOKEN_MALFORMED"
	CodeMissingOAuthParams  ErrorCode = "MISSING_OAUTH_PARAMS"
	CodeOAuthProviderError  ErrorCode = "OAUTH_PROVIDER_ERROR"
)

// FlowError is a typed failure of the linking flow. Every error leaving the
// orchestrator or the token codec is a FlowError carrying exactly one code.
type FlowError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError wraps err (which may be nil) with a code and caller-facing message.
func NewFlowError(code ErrorCode, message string, err error) *FlowError {
	return &FlowError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code from err, or empty when err is not a FlowError.
func CodeOf(err error) ErrorCode {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
