package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// ValidateLink reports why a and b cannot be linked as the two sides of one
// transfer, or nil.
func ValidateLink(a, b *transaction.Transaction) error {
	switch {
	case a.ID == b.ID:
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkSelf}
	case a.IsLinked() || b.IsLinked():
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkAlreadyLinked}
	case a.AccountID == b.AccountID:
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkSameAccount}
	case a.Type == b.Type:
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkSameType, Detail: string(a.Type)}
	case a.Amount != b.Amount:
		return &ledgererr.LinkValidationError{
			Reason: ledgererr.LinkAmountMismatch,
			Detail: a.Amount.String() + " != " + b.Amount.String(),
		}
	}
	return nil
}

// LinkTransactions marks two transactions as the two sides of one transfer.
// Nothing is written unless every check passes.
type LinkTransactions struct {
	UserID uuid.UUID
	AID    uuid.UUID
	BID    uuid.UUID

	ResultA *transaction.Transaction
	ResultB *transaction.Transaction
}

func (l *LinkTransactions) Perform(ctx context.Context, writer *storage.Writer) error {
	if l.AID == l.BID {
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkSelf}
	}

	a, b, err := lockPair(ctx, writer, l.UserID, l.AID, l.BID)
	if err != nil {
		return err
	}
	if err := ValidateLink(a, b); err != nil {
		return err
	}

	a.LinkedTransactionID = uuid.NullUUID{UUID: b.ID, Valid: true}
	b.LinkedTransactionID = uuid.NullUUID{UUID: a.ID, Valid: true}
	if err := writer.Transaction.Save(ctx, a); err != nil {
		return err
	}
	if err := writer.Transaction.Save(ctx, b); err != nil {
		return err
	}

	l.ResultA, l.ResultB = a, b
	return nil
}

// UnlinkTransaction clears the link on a transaction and its partner.
type UnlinkTransaction struct {
	UserID uuid.UUID
	ID     uuid.UUID

	PartnerID uuid.UUID
}

func (u *UnlinkTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	peek, err := writer.Transaction.FindByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if peek.UserID != u.UserID {
		return ledgererr.NotFound("transaction", u.ID)
	}
	if !peek.IsLinked() {
		return &ledgererr.LinkValidationError{Reason: ledgererr.LinkNotLinked}
	}

	partnerID := peek.LinkedTransactionID.UUID
	tx, partner, err := lockPair(ctx, writer, u.UserID, u.ID, partnerID)
	if err != nil {
		return err
	}
	if tx.LinkedTransactionID != peek.LinkedTransactionID {
		return errLinkChanged
	}

	tx.LinkedTransactionID = uuid.NullUUID{}
	if err := writer.Transaction.Save(ctx, tx); err != nil {
		return err
	}
	if partner.LinkedTransactionID.Valid && partner.LinkedTransactionID.UUID == tx.ID {
		partner.LinkedTransactionID = uuid.NullUUID{}
		if err := writer.Transaction.Save(ctx, partner); err != nil {
			return err
		}
	}

	u.PartnerID = partnerID
	return nil
}
