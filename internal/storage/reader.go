package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-ledger/internal/storage/account"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

type Reader struct {
	Accounts     account.IReader
	Transactions transaction.IReader
	Rules        rule.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Accounts:     account.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Rules:        rule.NewReader(exec),
	}
}
