package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error type mapped to process exit codes.
type Code int

const (
	CodeSuccess     Code = 0
	CodeInternal    Code = 1
	CodeUsage       Code = 2
	CodeAuth        Code = 10
	CodeRateLimited Code = 11
	CodeUnavailable Code = 12
	CodeUnsupported Code = 13
	CodeBlocked     Code = 16

	CodeConfiguration       Code = 20
	CodeInvalidParameters   Code = 21
	CodeUnknownAction       Code = 22
	CodeInsufficientBalance Code = 23
	CodeNetwork             Code = 24
	CodeNetworkInit         Code = 25
	CodeAggregator          Code = 26
	CodeApprovalFailed      Code = 27
	// CodeGasEstimation is only ever logged; callers recover with a fallback gas limit.
	CodeGasEstimation Code = 28
	CodeSigner        Code = 29
	CodeTimeout       Code = 30
)

// Error is a typed error that carries a stable error code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Is reports whether the outermost typed error in err's chain carries code.
func Is(err error, code Code) bool {
	cErr, ok := As(err)
	return ok && cErr.Code == code
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	if cliErr, ok := As(err); ok {
		return int(cliErr.Code)
	}
	return int(CodeInternal)
}

// TypeName is the snake_case error type rendered in error envelopes.
func TypeName(code Code) string {
	switch code {
	case CodeUsage:
		return "usage_error"
	case CodeAuth:
		return "auth_error"
	case CodeRateLimited:
		return "rate_limited"
	case CodeUnavailable:
		return "provider_unavailable"
	case CodeUnsupported:
		return "unsupported"
	case CodeBlocked:
		return "action_blocked"
	case CodeConfiguration:
		return "configuration_error"
	case CodeInvalidParameters:
		return "invalid_parameters"
	case CodeUnknownAction:
		return "unknown_action"
	case CodeInsufficientBalance:
		return "insufficient_balance"
	case CodeNetwork:
		return "network_error"
	case CodeNetworkInit:
		return "network_init_error"
	case CodeAggregator:
		return "aggregator_error"
	case CodeApprovalFailed:
		return "approval_failed"
	case CodeGasEstimation:
		return "gas_estimation_failure"
	case CodeSigner:
		return "signer_error"
	case CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}
