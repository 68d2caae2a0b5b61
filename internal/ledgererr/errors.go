// Package ledgererr holds the error taxonomy shared by parsing, ingestion,
// the ledger and transfer matching.
package ledgererr

import (
	"errors"
	"fmt"
)

// ParseError means a statement file could not be read at all. It aborts the
// whole call.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowError is a single record that failed normalization or validation.
// Ingestion records it and moves on.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// DuplicateError is returned when an import id already exists for the account.
type DuplicateError struct {
	AccountID string
	ImportID  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("transaction with import id %q already exists in account %s", e.ImportID, e.AccountID)
}

// NotFoundError covers missing records and records owned by another user;
// the two are deliberately indistinguishable to the caller.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// LinkReason enumerates why a transfer link was refused.
type LinkReason string

const (
	LinkSelf           LinkReason = "same_transaction"
	LinkSameAccount    LinkReason = "same_account"
	LinkAmountMismatch LinkReason = "amount_mismatch"
	LinkSameType       LinkReason = "same_type"
	LinkAlreadyLinked  LinkReason = "already_linked"
	LinkNotLinked      LinkReason = "not_linked"
	LinkImmutable      LinkReason = "linked_immutable"
)

// LinkValidationError is returned before any state is touched.
type LinkValidationError struct {
	Reason LinkReason
	Detail string
}

func (e *LinkValidationError) Error() string {
	if e.Detail == "" {
		return "link rejected: " + string(e.Reason)
	}
	return fmt.Sprintf("link rejected: %s: %s", e.Reason, e.Detail)
}

// ValidationError is bad caller input that is not tied to a statement row.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NotFound(resource string, id fmt.Stringer) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

func Invalid(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsDuplicate(err error) bool {
	var target *DuplicateError
	return errors.As(err, &target)
}

func IsLinkValidation(err error) bool {
	var target *LinkValidationError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
