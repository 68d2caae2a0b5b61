package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type RecomputeBalanceInput struct {
	common.UserHeader
	ID   string `path:"id" doc:"Account UUID"`
	Body *RecomputeBalanceBody
}

type RecomputeBalanceBody struct {
	Repair bool `json:"repair,omitempty" doc:"Overwrite the stored balance when it disagrees"`
}

type BalanceCheck struct {
	AccountID        string `json:"accountId"`
	StoredBalance    string `json:"storedBalance" doc:"Incrementally maintained balance before any repair"`
	ComputedBalance  string `json:"computedBalance" doc:"Starting balance plus credits minus debits"`
	TransactionCount int    `json:"transactionCount"`
	Consistent       bool   `json:"consistent"`
	Repaired         bool   `json:"repaired"`
}

type RecomputeBalanceOutput struct {
	Body BalanceCheck
}

type ReconcileInput struct {
	common.UserHeader
	ID   string `path:"id" doc:"Account UUID"`
	Body struct {
		StatementBalance string `json:"statementBalance" required:"true" doc:"Balance printed on the bank statement"`
		Tolerance        string `json:"tolerance,omitempty" doc:"Accepted absolute difference, defaults to 0.01"`
	}
}

type Reconciliation struct {
	AccountID        string `json:"accountId"`
	LedgerBalance    string `json:"ledgerBalance"`
	StatementBalance string `json:"statementBalance"`
	Difference       string `json:"difference" doc:"Statement balance minus ledger balance"`
	Tolerance        string `json:"tolerance"`
	Matched          bool   `json:"matched"`
}

type ReconcileOutput struct {
	Body Reconciliation
}

type balanceService interface {
	RecomputeBalance(ctx context.Context, userID, id uuid.UUID, repair bool) (*actions.BalanceCheck, error)
	Reconcile(ctx context.Context, userID, id uuid.UUID, statementBalance, tolerance money.Amount) (*service.Reconciliation, error)
}

// BalanceHandler handles POST /v1/account/{id}/recompute and
// POST /v1/account/{id}/reconcile.
type BalanceHandler struct {
	AccountService balanceService
}

func NewBalanceHandler(svc balanceService) *BalanceHandler {
	return &BalanceHandler{AccountService: svc}
}

var defaultTolerance = money.FromCents(1)

func (h *BalanceHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "recompute-balance",
		Method:      http.MethodPost,
		Path:        "/v1/account/{id}/recompute",
		Summary:     "Recompute an account balance",
		Description: "Sums the account's transactions from scratch and compares the result with the stored balance.",
		Tags:        []string{"Accounts"},
	}, h.recompute)
	huma.Register(api, huma.Operation{
		OperationID: "reconcile-account",
		Method:      http.MethodPost,
		Path:        "/v1/account/{id}/reconcile",
		Summary:     "Reconcile against a statement",
		Description: "Compares a bank statement balance with the ledger balance within a tolerance.",
		Tags:        []string{"Accounts"},
	}, h.reconcile)
}

func (h *BalanceHandler) recompute(ctx context.Context, input *RecomputeBalanceInput) (*RecomputeBalanceOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	repair := input.Body != nil && input.Body.Repair
	check, err := h.AccountService.RecomputeBalance(ctx, userID, id, repair)
	if err != nil {
		return nil, common.Error(err, "failed to recompute balance")
	}
	logging.AddData(ctx, "balanceConsistent", check.Consistent())

	return &RecomputeBalanceOutput{Body: BalanceCheck{
		AccountID:        check.AccountID.String(),
		StoredBalance:    check.StoredBalance.String(),
		ComputedBalance:  check.ComputedBalance.String(),
		TransactionCount: check.TransactionCount,
		Consistent:       check.Consistent(),
		Repaired:         check.Repaired,
	}}, nil
}

func (h *BalanceHandler) reconcile(ctx context.Context, input *ReconcileInput) (*ReconcileOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	statementBalance, err := common.ParseAmount("statementBalance", input.Body.StatementBalance, money.Zero)
	if err != nil {
		return nil, err
	}
	tolerance, err := common.ParseAmount("tolerance", input.Body.Tolerance, defaultTolerance)
	if err != nil {
		return nil, err
	}

	rec, err := h.AccountService.Reconcile(ctx, userID, id, statementBalance, tolerance)
	if err != nil {
		return nil, common.Error(err, "failed to reconcile account")
	}
	return &ReconcileOutput{Body: Reconciliation{
		AccountID:        rec.AccountID.String(),
		LedgerBalance:    rec.LedgerBalance.String(),
		StatementBalance: rec.StatementBalance.String(),
		Difference:       rec.Difference.String(),
		Tolerance:        rec.Tolerance.String(),
		Matched:          rec.Matched,
	}}, nil
}
