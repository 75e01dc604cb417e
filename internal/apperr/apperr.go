// Package apperr defines the closed error taxonomy for wallet operations.
// Callers switch on Kind instead of matching message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of a wallet operation.
type Kind string

const (
	KindInvalidKeyFormat    Kind = "invalid_key_format"
	KindInvalidMnemonic     Kind = "invalid_mnemonic"
	KindInvalidAddress      Kind = "invalid_address"
	KindInvalidAmount       Kind = "invalid_amount"
	KindAuthentication      Kind = "authentication"
	KindStorageRead         Kind = "storage_read"
	KindStorageWrite        Kind = "storage_write"
	KindUnknownNetwork      Kind = "unknown_network"
	KindNetworkConnection   Kind = "network_connection"
	KindBalanceQuery        Kind = "balance_query"
	KindBroadcast           Kind = "broadcast"
	KindConfirmationTimeout Kind = "confirmation_timeout"
	KindMissingKey          Kind = "missing_key"
	KindTransferInProgress  Kind = "transfer_in_progress"
	KindWalletExists        Kind = "wallet_exists"
	KindCancelled           Kind = "cancelled"
)

// AuthReason narrows KindAuthentication failures.
type AuthReason string

const (
	ReasonNone             AuthReason = ""
	ReasonUserCancelled    AuthReason = "user_cancelled"
	ReasonNoEnrolledMethod AuthReason = "no_enrolled_method"
	ReasonSystem           AuthReason = "system"
)

// Error is a typed wallet error. Kind is always set; Reason only for
// authentication failures; Err carries the underlying cause when wrapped.
type Error struct {
	Kind   Kind
	Reason AuthReason
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Auth creates an authentication error with the given reason.
func Auth(reason AuthReason, msg string) *Error {
	return &Error{Kind: KindAuthentication, Reason: reason, Msg: msg}
}

// KindOf returns the Kind of err, or "" if err is not a taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind checks if error has the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ReasonOf returns the AuthReason of err, or ReasonNone.
func ReasonOf(err error) AuthReason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}
