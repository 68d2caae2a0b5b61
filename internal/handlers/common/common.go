// Package common holds request parsing and error mapping shared by the v1
// handlers.
package common

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// UserHeader carries the id of the authenticated caller. Authentication
// happens in front of this service.
type UserHeader struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Authenticated user UUID"`
}

func (u *UserHeader) User() (uuid.UUID, error) {
	id, err := uuid.FromString(u.UserID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, huma.NewError(http.StatusUnauthorized, "invalid X-User-ID header")
	}
	return id, nil
}

// ParseID parses a UUID path or body value named name.
func ParseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return id, nil
}

// ParseOptionalID parses an optional UUID; empty yields nil.
func ParseOptionalID(name, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := ParseID(name, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseAmount parses a decimal amount; empty yields def.
func ParseAmount(name, value string, def money.Amount) (money.Amount, error) {
	if value == "" {
		return def, nil
	}
	a, err := money.Parse(value)
	if err != nil {
		return 0, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return a, nil
}

// NullID renders a nullable id, empty when null.
func NullID(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}

// Error maps a service error onto an HTTP status. Unknown errors become 500
// with msg.
func Error(err error, msg string) error {
	var (
		statusErr huma.StatusError
		linkErr   *ledgererr.LinkValidationError
	)
	switch {
	case errors.As(err, &statusErr):
		return err
	case ledgererr.IsNotFound(err):
		return huma.NewError(http.StatusNotFound, err.Error())
	case ledgererr.IsDuplicate(err):
		return huma.NewError(http.StatusConflict, err.Error())
	case errors.As(err, &linkErr):
		return huma.NewError(http.StatusUnprocessableEntity, err.Error(), &huma.ErrorDetail{
			Message:  string(linkErr.Reason),
			Location: "reason",
		})
	case ledgererr.IsValidation(err), ledgererr.IsParse(err):
		return huma.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return huma.NewError(http.StatusInternalServerError, msg, err)
	}
}
