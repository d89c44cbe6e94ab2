package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAlreadyArchived indicates the transaction is archived and only a restore is allowed.
var ErrAlreadyArchived = errors.New("transaction is archived")

// ErrInvalidTransition indicates an assignment state change that the state machine rejects.
var ErrInvalidTransition = errors.New("invalid assignment transition")

// ErrSameMemberTransfer indicates a transfer to the member that already owns the transaction.
var ErrSameMemberTransfer = errors.New("transaction already belongs to this member")

// ErrSplitSumMismatch indicates split shares that do not add up to the transaction amount.
var ErrSplitSumMismatch = errors.New("split amounts do not match transaction amount")

// ErrEmptyRecipientSet indicates a split request without recipients.
var ErrEmptyRecipientSet = errors.New("split requires at least one recipient")

// ErrInvalidAmount indicates a non-positive split share.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrConcurrentUpdate indicates the row changed between read and write.
var ErrConcurrentUpdate = errors.New("transaction was modified concurrently")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
// Repositories use it for infrastructure failures so that the cause is kept for logging.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// NewAppError creates an AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// SplitSumMismatchError reports the computed difference between the transaction amount and the
// sum of the requested shares. Delta is Expected minus Provided.
type SplitSumMismatchError struct {
	Expected decimal.Decimal
	Provided decimal.Decimal
	Delta    decimal.Decimal
}

func (e *SplitSumMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, provided %s (delta %s)",
		ErrSplitSumMismatch.Error(), e.Expected.StringFixed(2), e.Provided.StringFixed(2), e.Delta.StringFixed(2))
}

func (e *SplitSumMismatchError) Unwrap() error { return ErrSplitSumMismatch }

// NewSplitSumMismatch builds a SplitSumMismatchError from the expected and provided totals.
func NewSplitSumMismatch(expected, provided decimal.Decimal) *SplitSumMismatchError {
	return &SplitSumMismatchError{Expected: expected, Provided: provided, Delta: expected.Sub(provided)}
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotFound, "NotFound"},
	{ErrAlreadyArchived, "AlreadyArchived"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrSameMemberTransfer, "SameMemberTransfer"},
	{ErrSplitSumMismatch, "SplitSumMismatch"},
	{ErrEmptyRecipientSet, "EmptyRecipientSet"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrValidation, "Validation"},
	{ErrConcurrentUpdate, "ConcurrentUpdate"},
}

// Kind returns the short name of the error kind, e.g. "AlreadyArchived".
// Unknown errors are reported as "Internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
