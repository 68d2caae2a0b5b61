package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

type ruleReader struct {
	view func() *tables
}

func (r *ruleReader) FindByID(_ context.Context, id uuid.UUID) (*rule.Rule, error) {
	ru, ok := r.view().rules[id]
	if !ok {
		return nil, ledgererr.NotFound("rule", id)
	}
	return clone(ru), nil
}

func (r *ruleReader) ListByUser(_ context.Context, userID uuid.UUID) ([]*rule.Rule, error) {
	var rules []*rule.Rule
	for _, ru := range r.view().rules {
		if ru.UserID == userID {
			rules = append(rules, clone(ru))
		}
	}

	slices.SortFunc(rules, func(a, b *rule.Rule) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return rules, nil
}

type ruleWriter struct {
	ruleReader
	s *Store
}

func (w *ruleWriter) Insert(_ context.Context, create *rule.RuleCreate) (*rule.Rule, error) {
	id, err := w.s.newID()
	if err != nil {
		return nil, err
	}
	now := w.s.now()
	ru := &rule.Rule{
		ID:         id,
		UserID:     create.UserID,
		Pattern:    create.Pattern,
		Field:      create.Field,
		MatchType:  create.MatchType,
		Priority:   create.Priority,
		CategoryID: create.CategoryID,
		VendorName: create.VendorName,
		Active:     create.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	w.view().rules[id] = ru
	return clone(ru), nil
}

func (w *ruleWriter) Save(_ context.Context, ru *rule.Rule) error {
	work := w.view()
	if _, ok := work.rules[ru.ID]; !ok {
		return ledgererr.NotFound("rule", ru.ID)
	}
	ru.UpdatedAt = w.s.now()
	work.rules[ru.ID] = clone(ru)
	return nil
}

func (w *ruleWriter) Delete(_ context.Context, id uuid.UUID) error {
	work := w.view()
	if _, ok := work.rules[id]; !ok {
		return ledgererr.NotFound("rule", id)
	}
	delete(work.rules, id)
	return nil
}
