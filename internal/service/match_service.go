package service

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// MatchService finds and links the two sides of transfers between accounts.
type MatchService struct {
	storage  *storage.Storage
	operator processor
	opts     Options
	logger   *logrus.Logger
}

func NewMatchService(store *storage.Storage, op processor, opts Options, logger *logrus.Logger) *MatchService {
	return &MatchService{storage: store, operator: op, opts: opts.withDefaults(), logger: logger}
}

// DefaultWindowDays is the configured candidate window.
func (s *MatchService) DefaultWindowDays() int {
	return s.opts.MatchWindowDays
}

// FindPotentialMatches returns unlinked transactions of other accounts with
// the opposite type and the same amount dated within windowDays of the
// source, closest date first. A linked source has no matches.
func (s *MatchService) FindPotentialMatches(ctx context.Context, userID, id uuid.UUID, windowDays int) ([]*transaction.Transaction, error) {
	if windowDays < 0 {
		return nil, ledgererr.Invalid("windowDays", "must not be negative")
	}
	source, err := s.storage.Reader.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source.UserID != userID {
		return nil, ledgererr.NotFound("transaction", id)
	}
	if source.IsLinked() {
		return []*transaction.Transaction{}, nil
	}
	return s.candidates(ctx, source, windowDays)
}

func (s *MatchService) candidates(ctx context.Context, source *transaction.Transaction, windowDays int) ([]*transaction.Transaction, error) {
	day := transaction.DayOf(source.Date)
	found, err := s.storage.Reader.Transactions.FindCandidates(ctx, &transaction.CandidateQuery{
		UserID:    source.UserID,
		SourceID:  source.ID,
		AccountID: source.AccountID,
		Type:      source.Type.Opposite(),
		Amount:    source.Amount,
		From:      day.AddDate(0, 0, -windowDays),
		To:        day.AddDate(0, 0, windowDays),
	})
	if err != nil {
		return nil, err
	}
	sortByDistance(found, day)
	return found, nil
}

// sortByDistance orders candidates by distance from day, then date, then id.
func sortByDistance(txs []*transaction.Transaction, day time.Time) {
	distance := func(t *transaction.Transaction) int64 {
		d := transaction.DayOf(t.Date).Unix() - day.Unix()
		if d < 0 {
			return -d
		}
		return d
	}
	slices.SortStableFunc(txs, func(a, b *transaction.Transaction) int {
		if da, db := distance(a), distance(b); da != db {
			if da < db {
				return -1
			}
			return 1
		}
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// LinkTransactions links a and b after validating that they form a transfer.
func (s *MatchService) LinkTransactions(ctx context.Context, userID, a, b uuid.UUID) (*transaction.Transaction, *transaction.Transaction, error) {
	action := &actions.LinkTransactions{UserID: userID, AID: a, BID: b}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, nil, err
	}
	return action.ResultA, action.ResultB, nil
}

// UnlinkTransaction clears the link of id and its partner and returns the
// partner's id. Balances are untouched.
func (s *MatchService) UnlinkTransaction(ctx context.Context, userID, id uuid.UUID) (uuid.UUID, error) {
	action := &actions.UnlinkTransaction{UserID: userID, ID: id}
	if err := s.operator.Process(ctx, action); err != nil {
		return uuid.Nil, err
	}
	return action.PartnerID, nil
}

// BulkFindAndMatch makes one pass over the user's unlinked transactions in
// (date, id) order. A source with exactly one available candidate is linked
// to it. A source with several is reported for review, and it and all its
// candidates are reserved so no later source in the run can claim them.
func (s *MatchService) BulkFindAndMatch(ctx context.Context, userID uuid.UUID, windowDays, batchSize int) (*BulkMatchResult, error) {
	if windowDays < 0 {
		return nil, ledgererr.Invalid("windowDays", "must not be negative")
	}
	if batchSize <= 0 {
		batchSize = s.opts.MatchBatchSize
	}

	log := s.logger.WithFields(logrus.Fields{"userID": userID.String(), "windowDays": windowDays, "batchSize": batchSize})
	result := &BulkMatchResult{AutoMatched: []AutoMatch{}, NeedsReview: []ReviewGroup{}}
	reserved := make(map[uuid.UUID]struct{})

	var after *transaction.UnlinkedCursor
	for {
		page, err := s.storage.Reader.Transactions.ListUnlinked(ctx, &transaction.UnlinkedQuery{
			UserID: userID,
			After:  after,
			Limit:  batchSize,
		})
		if err != nil {
			return nil, err
		}

		candidates := make([][]*transaction.Transaction, len(page.Transactions))
		for i, tx := range page.Transactions {
			if _, ok := reserved[tx.ID]; ok {
				continue
			}
			if candidates[i], err = s.candidates(ctx, tx, windowDays); err != nil {
				return nil, err
			}
		}

		for i, tx := range page.Transactions {
			if _, ok := reserved[tx.ID]; ok {
				continue
			}
			result.Stats.Scanned++

			available := make([]*transaction.Transaction, 0, len(candidates[i]))
			for _, c := range candidates[i] {
				if _, ok := reserved[c.ID]; !ok {
					available = append(available, c)
				}
			}

			switch len(available) {
			case 0:
				result.Stats.UnmatchedCount++
			case 1:
				a, b, err := s.LinkTransactions(ctx, userID, tx.ID, available[0].ID)
				if ledgererr.IsLinkValidation(err) || ledgererr.IsNotFound(err) {
					log.WithError(err).WithField("transactionID", tx.ID.String()).Debug("MatchService.BulkFindAndMatch.linkSkipped")
					result.Stats.UnmatchedCount++
					continue
				}
				if err != nil {
					return nil, err
				}
				reserved[a.ID] = struct{}{}
				reserved[b.ID] = struct{}{}
				result.AutoMatched = append(result.AutoMatched, AutoMatch{Transaction: a, LinkedTo: b})
			default:
				reserved[tx.ID] = struct{}{}
				for _, c := range available {
					reserved[c.ID] = struct{}{}
				}
				result.NeedsReview = append(result.NeedsReview, ReviewGroup{
					Transaction: tx,
					Matches:     available,
					MatchCount:  len(available),
				})
			}
		}

		if page.Next == nil {
			break
		}
		after = page.Next
	}

	result.Stats.AutoMatchedCount = len(result.AutoMatched)
	result.Stats.NeedsReviewCount = len(result.NeedsReview)
	log.WithFields(logrus.Fields{
		"scanned":     result.Stats.Scanned,
		"autoMatched": result.Stats.AutoMatchedCount,
		"needsReview": result.Stats.NeedsReviewCount,
	}).Info("MatchService.BulkFindAndMatch.done")
	return result, nil
}
