package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

func TestRuleService_SnapshotInvalidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	coffee := uuid.NullUUID{UUID: uuid.Must(uuid.NewV7()), Valid: true}
	draft := normalize.Draft{Description: "STARBUCKS #123"}

	rs, err := svc.Rule.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())

	created, err := svc.Rule.CreateRule(ctx, &rule.RuleCreate{
		UserID: userID, Pattern: "STARBUCKS", Field: rule.FieldDescription,
		MatchType: rule.MatchStartsWith, CategoryID: coffee, Active: true,
	})
	require.NoError(t, err)

	rs, err = svc.Rule.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, coffee, rs.Apply(draft).CategoryID)

	inactive := false
	_, err = svc.Rule.UpdateRule(ctx, userID, created.ID, actions.RulePatch{Active: &inactive})
	require.NoError(t, err)
	rs, err = svc.Rule.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.False(t, rs.Apply(draft).CategoryID.Valid)

	others, err := svc.Rule.Snapshot(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, 0, others.Len())

	listed, err := svc.Rule.ListRules(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].Active)

	require.NoError(t, svc.Rule.DeleteRule(ctx, userID, created.ID))
	err = svc.Rule.DeleteRule(ctx, userID, created.ID)
	assert.True(t, ledgererr.IsNotFound(err))
}

// racingRules creates a rule after reading the list, so the caller holds a
// list that is already stale.
type racingRules struct {
	rule.IReader
	race func()
}

func (r *racingRules) ListByUser(ctx context.Context, userID uuid.UUID) ([]*rule.Rule, error) {
	list, err := r.IReader.ListByUser(ctx, userID)
	if r.race != nil {
		race := r.race
		r.race = nil
		race()
	}
	return list, err
}

func TestRuleService_SnapshotSkipsCacheAfterConcurrentWrite(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	coffee := uuid.NullUUID{UUID: uuid.Must(uuid.NewV7()), Valid: true}
	draft := normalize.Draft{Description: "STARBUCKS #123"}

	racing := &racingRules{IReader: store.Reader.Rules}
	racing.race = func() {
		_, err := svc.Rule.CreateRule(ctx, &rule.RuleCreate{
			UserID: userID, Pattern: "STARBUCKS", Field: rule.FieldDescription,
			MatchType: rule.MatchStartsWith, CategoryID: coffee, Active: true,
		})
		require.NoError(t, err)
	}
	store.Reader.Rules = racing

	stale, err := svc.Rule.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.Len())

	fresh, err := svc.Rule.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Len())
	assert.Equal(t, coffee, fresh.Apply(draft).CategoryID)
}

func TestRuleService_RejectsBadRegex(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Rule.CreateRule(context.Background(), &rule.RuleCreate{
		UserID: userID, Pattern: "(", Field: rule.FieldVendor, MatchType: rule.MatchRegex, Active: true,
	})
	assert.True(t, ledgererr.IsValidation(err))
}
