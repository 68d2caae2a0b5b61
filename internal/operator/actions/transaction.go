package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

var errLinkChanged = errors.New("transaction link changed concurrently, retry")

func validateFields(tx *transaction.TransactionCreate) error {
	if strings.TrimSpace(tx.Description) == "" {
		return ledgererr.Invalid("description", "must not be empty")
	}
	if tx.Amount.IsNegative() {
		return ledgererr.Invalid("amount", "must not be negative")
	}
	if !tx.Type.Valid() {
		return ledgererr.Invalid("type", "must be credit or debit")
	}
	if tx.Date.IsZero() {
		return ledgererr.Invalid("date", "is required")
	}
	return nil
}

// CreateTransaction inserts a transaction and applies its effect to the
// owning account's balance.
type CreateTransaction struct {
	Input *transaction.TransactionCreate

	Result *transaction.Transaction
}

func (c *CreateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	if err := validateFields(c.Input); err != nil {
		return err
	}

	acct, err := lockOwnedAccount(ctx, writer, c.Input.UserID, c.Input.AccountID)
	if err != nil {
		return err
	}

	if c.Input.ImportID != "" {
		exists, err := writer.Transaction.ExistsByImportID(ctx, acct.ID, c.Input.ImportID)
		if err != nil {
			return err
		}
		if exists {
			return &ledgererr.DuplicateError{AccountID: acct.ID.String(), ImportID: c.Input.ImportID}
		}
	}

	tx, err := writer.Transaction.Insert(ctx, c.Input)
	if err != nil {
		return err
	}

	if err := adjustBalance(ctx, writer, acct, tx.Effect()); err != nil {
		return err
	}

	c.Result = tx
	return nil
}

// UpdateTransaction applies a patch. A change of amount or type reverses the
// old effect and applies the new one in one balance write.
type UpdateTransaction struct {
	UserID uuid.UUID
	ID     uuid.UUID
	Patch  transaction.Patch

	Result *transaction.Transaction
}

func (u *UpdateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	tx, err := lockOwnedTransaction(ctx, writer, u.UserID, u.ID)
	if err != nil {
		return err
	}

	if u.Patch.ChangesEffect(tx) && tx.IsLinked() {
		return &ledgererr.LinkValidationError{
			Reason: ledgererr.LinkImmutable,
			Detail: "unlink before changing amount or type",
		}
	}
	if u.Patch.Description != nil && strings.TrimSpace(*u.Patch.Description) == "" {
		return ledgererr.Invalid("description", "must not be empty")
	}

	oldEffect := tx.Effect()
	u.Patch.Apply(tx)
	if tx.Amount.IsNegative() {
		return ledgererr.Invalid("amount", "must not be negative")
	}
	if !tx.Type.Valid() {
		return ledgererr.Invalid("type", "must be credit or debit")
	}

	if delta := tx.Effect().Sub(oldEffect); !delta.IsZero() {
		acct, err := lockOwnedAccount(ctx, writer, u.UserID, tx.AccountID)
		if err != nil {
			return err
		}
		if err := adjustBalance(ctx, writer, acct, delta); err != nil {
			return err
		}
	}

	if err := writer.Transaction.Save(ctx, tx); err != nil {
		return err
	}

	u.Result = tx
	return nil
}

// DeleteTransaction clears any transfer link, reverses the balance effect and
// removes the row.
type DeleteTransaction struct {
	UserID uuid.UUID
	ID     uuid.UUID

	Result *transaction.Transaction
}

func (d *DeleteTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	peek, err := writer.Transaction.FindByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if peek.UserID != d.UserID {
		return ledgererr.NotFound("transaction", d.ID)
	}

	var tx, partner *transaction.Transaction
	if peek.IsLinked() {
		tx, partner, err = lockPair(ctx, writer, d.UserID, d.ID, peek.LinkedTransactionID.UUID)
	} else {
		tx, err = lockOwnedTransaction(ctx, writer, d.UserID, d.ID)
	}
	if err != nil {
		return err
	}
	if tx.LinkedTransactionID != peek.LinkedTransactionID {
		return errLinkChanged
	}

	if partner != nil {
		partner.LinkedTransactionID = uuid.NullUUID{}
		if err := writer.Transaction.Save(ctx, partner); err != nil {
			return err
		}
	}

	acct, err := lockOwnedAccount(ctx, writer, d.UserID, tx.AccountID)
	if err != nil {
		return err
	}
	if err := adjustBalance(ctx, writer, acct, tx.Effect().Neg()); err != nil {
		return err
	}

	if err := writer.Transaction.Delete(ctx, tx.ID); err != nil {
		return err
	}

	d.Result = tx
	return nil
}
