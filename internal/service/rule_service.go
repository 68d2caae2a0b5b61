package service

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/patrickmn/go-cache"

	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/rules"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

const ruleSnapshotTTL = 10 * time.Minute

// RuleService manages import rules and hands out compiled per-user
// snapshots. Writes made through the service drop the user's snapshot and
// bump its generation so a snapshot read before the write is not cached.
type RuleService struct {
	storage   *storage.Storage
	operator  processor
	snapshots *cache.Cache

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewRuleService(store *storage.Storage, op processor) *RuleService {
	return &RuleService{
		storage:     store,
		operator:    op,
		snapshots:   cache.New(ruleSnapshotTTL, 2*ruleSnapshotTTL),
		generations: make(map[uuid.UUID]uint64),
	}
}

// Snapshot returns the user's active rules in evaluation order.
func (s *RuleService) Snapshot(ctx context.Context, userID uuid.UUID) (*rules.RuleSet, error) {
	if cached, ok := s.snapshots.Get(userID.String()); ok {
		return cached.(*rules.RuleSet), nil
	}
	s.mu.Lock()
	gen := s.generations[userID]
	s.mu.Unlock()

	list, err := s.storage.Reader.Rules.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rs := rules.Compile(list)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] == gen {
		s.snapshots.SetDefault(userID.String(), rs)
	}
	return rs, nil
}

// ListRules returns the user's rules in evaluation order, inactive included.
func (s *RuleService) ListRules(ctx context.Context, userID uuid.UUID) ([]*rule.Rule, error) {
	return s.storage.Reader.Rules.ListByUser(ctx, userID)
}

func (s *RuleService) CreateRule(ctx context.Context, create *rule.RuleCreate) (*rule.Rule, error) {
	action := &actions.CreateRule{Input: create}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	s.invalidate(create.UserID)
	return action.Result, nil
}

func (s *RuleService) UpdateRule(ctx context.Context, userID, id uuid.UUID, patch actions.RulePatch) (*rule.Rule, error) {
	action := &actions.UpdateRule{UserID: userID, ID: id, Patch: patch}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return action.Result, nil
}

func (s *RuleService) DeleteRule(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.operator.Process(ctx, &actions.DeleteRule{UserID: userID, ID: id}); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *RuleService) invalidate(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.snapshots.Delete(userID.String())
}
