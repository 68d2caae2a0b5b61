// Package transfer serves transfer detection and linking between a user's
// accounts.
package transfer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	txhandler "github.com/carson-networks/budget-ledger/internal/handlers/v1/transaction"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

type FindMatchesInput struct {
	common.UserHeader
	ID         string `path:"id" doc:"Source transaction UUID"`
	WindowDays string `query:"windowDays" doc:"Days either side of the source date, defaults to the configured window"`
}

type FindMatchesOutput struct {
	Body struct {
		Matches []txhandler.Transaction `json:"matches" doc:"Candidates, closest date first"`
	}
}

type LinkInput struct {
	common.UserHeader
	Body struct {
		TransactionID string `json:"transactionId" required:"true"`
		LinkedID      string `json:"linkedTransactionId" required:"true"`
	}
}

type LinkOutput struct {
	Body struct {
		Transaction txhandler.Transaction `json:"transaction"`
		LinkedTo    txhandler.Transaction `json:"linkedTo"`
	}
}

type UnlinkInput struct {
	common.UserHeader
	ID string `path:"id" doc:"Transaction UUID"`
}

type UnlinkOutput struct {
	Body struct {
		TransactionID string `json:"transactionId"`
		PartnerID     string `json:"partnerId" doc:"Transaction that was linked to this one"`
	}
}

type BulkMatchInput struct {
	common.UserHeader
	Body *struct {
		WindowDays *int `json:"windowDays,omitempty" minimum:"0"`
		BatchSize  int  `json:"batchSize,omitempty" minimum:"0" maximum:"1000"`
	}
}

type AutoMatch struct {
	Transaction txhandler.Transaction `json:"transaction"`
	LinkedTo    txhandler.Transaction `json:"linkedTo"`
}

type ReviewGroup struct {
	Transaction txhandler.Transaction   `json:"transaction"`
	Matches     []txhandler.Transaction `json:"matches"`
	MatchCount  int                     `json:"matchCount"`
}

type MatchStats struct {
	Scanned     int `json:"scanned"`
	AutoMatched int `json:"autoMatched"`
	NeedsReview int `json:"needsReview"`
	Unmatched   int `json:"unmatched"`
}

type BulkMatchOutput struct {
	Body struct {
		AutoMatched []AutoMatch   `json:"autoMatched"`
		NeedsReview []ReviewGroup `json:"needsReview"`
		Stats       MatchStats    `json:"stats"`
	}
}

type matchService interface {
	DefaultWindowDays() int
	FindPotentialMatches(ctx context.Context, userID, id uuid.UUID, windowDays int) ([]*transaction.Transaction, error)
	LinkTransactions(ctx context.Context, userID, a, b uuid.UUID) (*transaction.Transaction, *transaction.Transaction, error)
	UnlinkTransaction(ctx context.Context, userID, id uuid.UUID) (uuid.UUID, error)
	BulkFindAndMatch(ctx context.Context, userID uuid.UUID, windowDays, batchSize int) (*service.BulkMatchResult, error)
}

// TransferHandler serves candidate lookup, manual linking, and bulk matching.
type TransferHandler struct {
	MatchService matchService
}

func NewTransferHandler(svc matchService) *TransferHandler {
	return &TransferHandler{MatchService: svc}
}

func (h *TransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "find-transfer-matches",
		Method:      http.MethodGet,
		Path:        "/v1/transaction/{id}/matches",
		Summary:     "Find transfer counterparts",
		Description: "Lists unlinked transactions in other accounts with the opposite type and equal amount near the source date.",
		Tags:        []string{"Transfers"},
	}, h.findMatches)
	huma.Register(api, huma.Operation{
		OperationID: "link-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/transfer/link",
		Summary:     "Link two transactions as a transfer",
		Tags:        []string{"Transfers"},
	}, h.link)
	huma.Register(api, huma.Operation{
		OperationID: "unlink-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/{id}/unlink",
		Summary:     "Unlink a transfer",
		Description: "Clears the link on both halves. Balances are not changed.",
		Tags:        []string{"Transfers"},
	}, h.unlink)
	huma.Register(api, huma.Operation{
		OperationID: "bulk-match-transfers",
		Method:      http.MethodPost,
		Path:        "/v1/transfer/bulk-match",
		Summary:     "Match transfers in bulk",
		Description: "Links every unlinked transaction that has exactly one candidate and reports ambiguous ones for review.",
		Tags:        []string{"Transfers"},
	}, h.bulkMatch)
}

func (h *TransferHandler) findMatches(ctx context.Context, input *FindMatchesInput) (*FindMatchesOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	windowDays := h.MatchService.DefaultWindowDays()
	if input.WindowDays != "" {
		if windowDays, err = strconv.Atoi(input.WindowDays); err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid windowDays", err)
		}
	}

	matches, err := h.MatchService.FindPotentialMatches(ctx, userID, id, windowDays)
	if err != nil {
		return nil, common.Error(err, "failed to find matches")
	}
	logging.AddData(ctx, "matchCount", len(matches))

	out := &FindMatchesOutput{}
	out.Body.Matches = txhandler.ToTransactions(matches)
	return out, nil
}

func (h *TransferHandler) link(ctx context.Context, input *LinkInput) (*LinkOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	a, err := common.ParseID("transactionId", input.Body.TransactionID)
	if err != nil {
		return nil, err
	}
	b, err := common.ParseID("linkedTransactionId", input.Body.LinkedID)
	if err != nil {
		return nil, err
	}

	txA, txB, err := h.MatchService.LinkTransactions(ctx, userID, a, b)
	if err != nil {
		return nil, common.Error(err, "failed to link transactions")
	}
	out := &LinkOutput{}
	out.Body.Transaction = txhandler.ToTransaction(txA)
	out.Body.LinkedTo = txhandler.ToTransaction(txB)
	return out, nil
}

func (h *TransferHandler) unlink(ctx context.Context, input *UnlinkInput) (*UnlinkOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	partner, err := h.MatchService.UnlinkTransaction(ctx, userID, id)
	if err != nil {
		return nil, common.Error(err, "failed to unlink transaction")
	}
	out := &UnlinkOutput{}
	out.Body.TransactionID = id.String()
	out.Body.PartnerID = partner.String()
	return out, nil
}

func (h *TransferHandler) bulkMatch(ctx context.Context, input *BulkMatchInput) (*BulkMatchOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	windowDays, batchSize := h.MatchService.DefaultWindowDays(), 0
	if input.Body != nil {
		if input.Body.WindowDays != nil {
			windowDays = *input.Body.WindowDays
		}
		batchSize = input.Body.BatchSize
	}

	stop := logging.Timed(ctx, "bulkMatchMs")
	result, err := h.MatchService.BulkFindAndMatch(ctx, userID, windowDays, batchSize)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to match transfers")
	}
	logging.AddData(ctx, "autoMatched", result.Stats.AutoMatchedCount)
	logging.AddData(ctx, "needsReview", result.Stats.NeedsReviewCount)

	out := &BulkMatchOutput{}
	out.Body.AutoMatched = make([]AutoMatch, len(result.AutoMatched))
	for i, m := range result.AutoMatched {
		out.Body.AutoMatched[i] = AutoMatch{
			Transaction: txhandler.ToTransaction(m.Transaction),
			LinkedTo:    txhandler.ToTransaction(m.LinkedTo),
		}
	}
	out.Body.NeedsReview = make([]ReviewGroup, len(result.NeedsReview))
	for i, g := range result.NeedsReview {
		out.Body.NeedsReview[i] = ReviewGroup{
			Transaction: txhandler.ToTransaction(g.Transaction),
			Matches:     txhandler.ToTransactions(g.Matches),
			MatchCount:  g.MatchCount,
		}
	}
	out.Body.Stats = MatchStats{
		Scanned:     result.Stats.Scanned,
		AutoMatched: result.Stats.AutoMatchedCount,
		NeedsReview: result.Stats.NeedsReviewCount,
		Unmatched:   result.Stats.UnmatchedCount,
	}
	return out, nil
}
