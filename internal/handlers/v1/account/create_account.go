package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

// CreateAccountInput is the Huma input for creating an account.
type CreateAccountInput struct {
	common.UserHeader
	Body CreateAccountBody
}

// CreateAccountBody is the request body fields for creating an account.
type CreateAccountBody struct {
	Name            string `json:"name" minLength:"1" doc:"Account name"`
	Type            string `json:"type,omitempty" enum:"checking,savings,credit_card,investment,loan,cash" doc:"Account type, defaults to checking"`
	Currency        string `json:"currency,omitempty" doc:"ISO 4217 currency code, defaults to USD"`
	StartingBalance string `json:"startingBalance,omitempty" doc:"Starting balance (e.g. '0' or '1234.56'), defaults to 0"`
}

// CreateAccountOutput is the response for creating an account.
type CreateAccountOutput struct {
	Status int
	Body   Account
}

type accountCreator interface {
	CreateAccount(ctx context.Context, in service.NewAccount) (*account.Account, error)
}

// CreateAccountHandler handles POST /v1/account.
type CreateAccountHandler struct {
	AccountService accountCreator
}

func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-account",
		Method:        http.MethodPost,
		Path:          "/v1/account",
		Summary:       "Create an account",
		Description:   "Creates a new account whose balance starts at the starting balance.",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseCreateAccountInput(input *CreateAccountInput) (service.NewAccount, error) {
	userID, err := input.User()
	if err != nil {
		return service.NewAccount{}, err
	}
	startingBalance, err := common.ParseAmount("startingBalance", input.Body.StartingBalance, money.Zero)
	if err != nil {
		return service.NewAccount{}, err
	}
	accountType := account.AccountTypeChecking
	if input.Body.Type != "" {
		if accountType, err = account.ParseAccountType(input.Body.Type); err != nil {
			return service.NewAccount{}, huma.NewError(http.StatusBadRequest, "invalid type", err)
		}
	}
	return service.NewAccount{
		UserID:          userID,
		Name:            input.Body.Name,
		Type:            accountType,
		Currency:        input.Body.Currency,
		StartingBalance: startingBalance,
	}, nil
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	in, err := parseCreateAccountInput(input)
	if err != nil {
		return nil, err
	}

	stop := logging.Timed(ctx, "createAccountMs")
	acct, err := h.AccountService.CreateAccount(ctx, in)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to create account")
	}

	logging.AddData(ctx, "accountID", acct.ID.String())
	return &CreateAccountOutput{Status: http.StatusCreated, Body: toAccount(acct)}, nil
}
