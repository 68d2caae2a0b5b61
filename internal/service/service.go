package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

// processor runs a ledger action inside one storage write transaction.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Options are the tunables of the services.
type Options struct {
	MatchWindowDays   int
	MatchBatchSize    int
	ImportConcurrency int
}

func OptionsFromConfig(c *config.Config) Options {
	return Options{
		MatchWindowDays:   c.MatchWindowDays,
		MatchBatchSize:    c.MatchBatchSize,
		ImportConcurrency: c.ImportConcurrency,
	}
}

func (o Options) withDefaults() Options {
	if o.MatchWindowDays <= 0 {
		o.MatchWindowDays = DefaultMatchWindowDays
	}
	if o.MatchBatchSize <= 0 {
		o.MatchBatchSize = DefaultMatchBatchSize
	}
	if o.ImportConcurrency <= 0 {
		o.ImportConcurrency = 1
	}
	return o
}

// Service holds all business logic services.
type Service struct {
	Account     *AccountService
	Transaction *TransactionService
	Duplicates  *DuplicateDetector
	Rule        *RuleService
	Match       *MatchService
	Import      *ImportService
}

// NewService wires the services over one storage and one operator.
func NewService(store *storage.Storage, op processor, opts Options, logger *logrus.Logger) *Service {
	opts = opts.withDefaults()
	duplicates := NewDuplicateDetector(store)
	rules := NewRuleService(store, op)
	return &Service{
		Account:     NewAccountService(store, op),
		Transaction: NewTransactionService(store, op),
		Duplicates:  duplicates,
		Rule:        rules,
		Match:       NewMatchService(store, op, opts, logger),
		Import:      NewImportService(store, op, duplicates, rules, opts, logger),
	}
}
