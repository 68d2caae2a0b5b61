package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/rules"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

type CreateRule struct {
	Input *rule.RuleCreate

	Result *rule.Rule
}

func (c *CreateRule) Perform(ctx context.Context, writer *storage.Writer) error {
	err := rules.Validate(&rule.Rule{
		Pattern:   c.Input.Pattern,
		Field:     c.Input.Field,
		MatchType: c.Input.MatchType,
	})
	if err != nil {
		return err
	}

	r, err := writer.Rule.Insert(ctx, c.Input)
	if err != nil {
		return err
	}
	c.Result = r
	return nil
}

// RulePatch holds the optional changes of an UpdateRule.
type RulePatch struct {
	Pattern    *string
	Field      *rule.Field
	MatchType  *rule.MatchType
	Priority   *int
	CategoryID *uuid.NullUUID
	VendorName *string
	Active     *bool
}

func (p *RulePatch) apply(r *rule.Rule) {
	if p.Pattern != nil {
		r.Pattern = *p.Pattern
	}
	if p.Field != nil {
		r.Field = *p.Field
	}
	if p.MatchType != nil {
		r.MatchType = *p.MatchType
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		r.CategoryID = *p.CategoryID
	}
	if p.VendorName != nil {
		r.VendorName = *p.VendorName
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
}

type UpdateRule struct {
	UserID uuid.UUID
	ID     uuid.UUID
	Patch  RulePatch

	Result *rule.Rule
}

func (u *UpdateRule) Perform(ctx context.Context, writer *storage.Writer) error {
	r, err := findOwnedRule(ctx, writer, u.UserID, u.ID)
	if err != nil {
		return err
	}
	u.Patch.apply(r)
	if err := rules.Validate(r); err != nil {
		return err
	}
	if err := writer.Rule.Save(ctx, r); err != nil {
		return err
	}
	u.Result = r
	return nil
}

type DeleteRule struct {
	UserID uuid.UUID
	ID     uuid.UUID
}

func (d *DeleteRule) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := findOwnedRule(ctx, writer, d.UserID, d.ID); err != nil {
		return err
	}
	return writer.Rule.Delete(ctx, d.ID)
}

func findOwnedRule(ctx context.Context, writer *storage.Writer, userID, id uuid.UUID) (*rule.Rule, error) {
	r, err := writer.Rule.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ledgererr.NotFound("rule", id)
	}
	return r, nil
}
