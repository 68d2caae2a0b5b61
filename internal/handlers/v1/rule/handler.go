package rule

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

type CreateRuleInput struct {
	common.UserHeader
	Body struct {
		Pattern    string `json:"pattern" minLength:"1"`
		Field      string `json:"field,omitempty" enum:"description,vendor" doc:"Defaults to description"`
		MatchType  string `json:"matchType,omitempty" enum:"contains,exact,startsWith,regex" doc:"Defaults to contains"`
		Priority   int    `json:"priority,omitempty"`
		CategoryID string `json:"categoryId,omitempty"`
		VendorName string `json:"vendorName,omitempty"`
		Active     *bool  `json:"active,omitempty" doc:"Defaults to true"`
	}
}

type RuleOutput struct {
	Status int
	Body   Rule
}

type ListRulesInput struct {
	common.UserHeader
}

type ListRulesOutput struct {
	Body struct {
		Rules []Rule `json:"rules"`
	}
}

type UpdateRuleInput struct {
	common.UserHeader
	ID   string `path:"id" doc:"Rule UUID"`
	Body struct {
		Pattern    *string `json:"pattern,omitempty" minLength:"1"`
		Field      *string `json:"field,omitempty" enum:"description,vendor"`
		MatchType  *string `json:"matchType,omitempty" enum:"contains,exact,startsWith,regex"`
		Priority   *int    `json:"priority,omitempty"`
		CategoryID *string `json:"categoryId,omitempty" doc:"Empty string clears the category"`
		VendorName *string `json:"vendorName,omitempty"`
		Active     *bool   `json:"active,omitempty"`
	}
}

type DeleteRuleInput struct {
	common.UserHeader
	ID string `path:"id" doc:"Rule UUID"`
}

type DeleteRuleOutput struct {
	Status int
}

type ruleService interface {
	ListRules(ctx context.Context, userID uuid.UUID) ([]*rule.Rule, error)
	CreateRule(ctx context.Context, create *rule.RuleCreate) (*rule.Rule, error)
	UpdateRule(ctx context.Context, userID, id uuid.UUID, patch actions.RulePatch) (*rule.Rule, error)
	DeleteRule(ctx context.Context, userID, id uuid.UUID) error
}

// RuleHandler serves the /v1/rule endpoints.
type RuleHandler struct {
	RuleService ruleService
}

func NewRuleHandler(svc ruleService) *RuleHandler {
	return &RuleHandler{RuleService: svc}
}

func (h *RuleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-rule",
		Method:        http.MethodPost,
		Path:          "/v1/rule",
		Summary:       "Create an import rule",
		Tags:          []string{"Rules"},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/v1/rules",
		Summary:     "List import rules in evaluation order",
		Tags:        []string{"Rules"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "update-rule",
		Method:      http.MethodPatch,
		Path:        "/v1/rule/{id}",
		Summary:     "Update an import rule",
		Tags:        []string{"Rules"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-rule",
		Method:        http.MethodDelete,
		Path:          "/v1/rule/{id}",
		Summary:       "Delete an import rule",
		Tags:          []string{"Rules"},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}

func nullCategory(value string) (uuid.NullUUID, error) {
	id, err := common.ParseOptionalID("categoryId", value)
	if err != nil || id == nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: *id, Valid: true}, nil
}

func (h *RuleHandler) create(ctx context.Context, input *CreateRuleInput) (*RuleOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	categoryID, err := nullCategory(input.Body.CategoryID)
	if err != nil {
		return nil, err
	}
	create := &rule.RuleCreate{
		UserID:     userID,
		Pattern:    input.Body.Pattern,
		Field:      rule.FieldDescription,
		MatchType:  rule.MatchContains,
		Priority:   input.Body.Priority,
		CategoryID: categoryID,
		VendorName: input.Body.VendorName,
		Active:     input.Body.Active == nil || *input.Body.Active,
	}
	if input.Body.Field != "" {
		create.Field = rule.Field(input.Body.Field)
	}
	if input.Body.MatchType != "" {
		create.MatchType = rule.MatchType(input.Body.MatchType)
	}

	r, err := h.RuleService.CreateRule(ctx, create)
	if err != nil {
		return nil, common.Error(err, "failed to create rule")
	}
	logging.AddData(ctx, "ruleID", r.ID.String())
	return &RuleOutput{Status: http.StatusCreated, Body: toRule(r)}, nil
}

func (h *RuleHandler) list(ctx context.Context, input *ListRulesInput) (*ListRulesOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	rs, err := h.RuleService.ListRules(ctx, userID)
	if err != nil {
		return nil, common.Error(err, "failed to list rules")
	}
	out := &ListRulesOutput{}
	out.Body.Rules = make([]Rule, len(rs))
	for i, r := range rs {
		out.Body.Rules[i] = toRule(r)
	}
	return out, nil
}

func (h *RuleHandler) update(ctx context.Context, input *UpdateRuleInput) (*RuleOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}

	b := input.Body
	patch := actions.RulePatch{
		Pattern:    b.Pattern,
		Priority:   b.Priority,
		VendorName: b.VendorName,
		Active:     b.Active,
	}
	if b.Field != nil {
		f := rule.Field(*b.Field)
		patch.Field = &f
	}
	if b.MatchType != nil {
		m := rule.MatchType(*b.MatchType)
		patch.MatchType = &m
	}
	if b.CategoryID != nil {
		categoryID, err := nullCategory(*b.CategoryID)
		if err != nil {
			return nil, err
		}
		patch.CategoryID = &categoryID
	}

	r, err := h.RuleService.UpdateRule(ctx, userID, id, patch)
	if err != nil {
		return nil, common.Error(err, "failed to update rule")
	}
	return &RuleOutput{Status: http.StatusOK, Body: toRule(r)}, nil
}

func (h *RuleHandler) delete(ctx context.Context, input *DeleteRuleInput) (*DeleteRuleOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	if err := h.RuleService.DeleteRule(ctx, userID, id); err != nil {
		return nil, common.Error(err, "failed to delete rule")
	}
	return &DeleteRuleOutput{Status: http.StatusNoContent}, nil
}
