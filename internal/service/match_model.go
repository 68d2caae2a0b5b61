package service

import "github.com/carson-networks/budget-ledger/internal/storage/transaction"

const (
	DefaultMatchWindowDays = 3
	DefaultMatchBatchSize  = 100
)

// AutoMatch is a pair linked by a bulk pass.
type AutoMatch struct {
	Transaction *transaction.Transaction
	LinkedTo    *transaction.Transaction
}

// ReviewGroup is a source with several possible counterparts. The source and
// every listed match were reserved for the rest of the run.
type ReviewGroup struct {
	Transaction *transaction.Transaction
	Matches     []*transaction.Transaction
	MatchCount  int
}

type MatchStats struct {
	Scanned          int
	AutoMatchedCount int
	NeedsReviewCount int
	UnmatchedCount   int
}

type BulkMatchResult struct {
	AutoMatched []AutoMatch
	NeedsReview []ReviewGroup
	Stats       MatchStats
}
