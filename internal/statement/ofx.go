package statement

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
)

var errNoStatements = errors.New("no bank or credit card statements found")

var hundred = big.NewRat(100, 1)

func parseOFX(data []byte, format Format) (*Statement, error) {
	resp, err := ofxgo.ParseResponse(bytes.NewReader(data))
	if err != nil {
		return nil, &ledgererr.ParseError{Format: string(format), Err: err}
	}

	st := &Statement{Format: format}
	index := 0
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		acct := SourceAccount{
			ID:       string(stmt.BankAcctFrom.AcctID),
			BankID:   string(stmt.BankAcctFrom.BankID),
			Type:     bankAccountType(stmt.BankAcctFrom.AcctType.String()),
			Currency: stmt.CurDef.String(),
		}
		acct.LedgerBalance, acct.BalanceAsOf = ledgerBalance(&stmt.BalAmt, &stmt.DtAsOf)
		if stmt.BankTranList != nil {
			acct.Transactions, index = nativeRecords(acct.ID, stmt.BankTranList.Transactions, index)
		}
		st.Accounts = append(st.Accounts, acct)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		acct := SourceAccount{
			ID:       string(stmt.CCAcctFrom.AcctID),
			Type:     "credit_card",
			Currency: stmt.CurDef.String(),
		}
		acct.LedgerBalance, acct.BalanceAsOf = ledgerBalance(&stmt.BalAmt, &stmt.DtAsOf)
		if stmt.BankTranList != nil {
			acct.Transactions, index = nativeRecords(acct.ID, stmt.BankTranList.Transactions, index)
		}
		st.Accounts = append(st.Accounts, acct)
	}

	if len(st.Accounts) == 0 {
		return nil, &ledgererr.ParseError{Format: string(format), Err: errNoStatements}
	}
	return st, nil
}

func nativeRecords(sourceID string, txns []ofxgo.Transaction, index int) ([]RawRecord, int) {
	out := make([]RawRecord, 0, len(txns))
	for _, t := range txns {
		rec := RawRecord{Index: index, SourceAccountID: sourceID}
		index++

		amount, err := ratToAmount(&t.TrnAmt.Rat)
		if err != nil {
			rec.Err = fmt.Errorf("transaction %s: %w", t.FiTID, err)
			out = append(out, rec)
			continue
		}
		native := &NativeTransaction{
			FITID:    string(t.FiTID),
			TrnType:  t.TrnType.String(),
			Posted:   t.DtPosted.Time,
			Amount:   amount,
			Name:     string(t.Name),
			Memo:     string(t.Memo),
			CheckNum: string(t.CheckNum),
			RefNum:   string(t.RefNum),
		}
		if t.Payee != nil {
			native.Payee = string(t.Payee.Name)
		}
		rec.Native = native
		out = append(out, rec)
	}
	return out, index
}

func ledgerBalance(amt *ofxgo.Amount, asOf *ofxgo.Date) (*money.Amount, time.Time) {
	if asOf.IsZero() {
		return nil, time.Time{}
	}
	bal, err := ratToAmount(&amt.Rat)
	if err != nil {
		return nil, time.Time{}
	}
	return &bal, asOf.Time
}

func ratToAmount(r *big.Rat) (money.Amount, error) {
	scaled := new(big.Rat).Mul(r, hundred)
	if !scaled.IsInt() {
		return 0, fmt.Errorf("%w: %s", money.ErrPrecision, r.FloatString(4))
	}
	if !scaled.Num().IsInt64() {
		return 0, money.ErrOverflow
	}
	return money.FromCents(scaled.Num().Int64()), nil
}

func bankAccountType(acctType string) string {
	switch acctType {
	case "CHECKING":
		return "checking"
	case "SAVINGS", "MONEYMRKT", "CD":
		return "savings"
	case "CREDITLINE":
		return "loan"
	default:
		return "checking"
	}
}
