package rules

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

var (
	coffee    = uuid.NullUUID{UUID: uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000c1")), Valid: true}
	groceries = uuid.NullUUID{UUID: uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000c2")), Valid: true}
	dining    = uuid.NullUUID{UUID: uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000c3")), Valid: true}
)

func newRule(id byte, pattern string, match rule.MatchType, priority int, category uuid.NullUUID) *rule.Rule {
	var rid uuid.UUID
	rid[15] = id
	return &rule.Rule{
		ID:         rid,
		Pattern:    pattern,
		Field:      rule.FieldDescription,
		MatchType:  match,
		Priority:   priority,
		CategoryID: category,
		Active:     true,
	}
}

func TestApply_PriorityWins(t *testing.T) {
	rules := []*rule.Rule{
		newRule(1, "star", rule.MatchContains, 10, dining),
		newRule(2, "STARBUCKS", rule.MatchContains, 1, coffee),
	}

	d := Apply(rules, normalize.Draft{Description: "STARBUCKS #123"})
	assert.Equal(t, coffee, d.CategoryID)
}

func TestApply_TiesBrokenByID(t *testing.T) {
	rules := []*rule.Rule{
		newRule(9, "market", rule.MatchContains, 1, dining),
		newRule(3, "market", rule.MatchContains, 1, groceries),
	}

	d := Apply(rules, normalize.Draft{Description: "Farmers Market"})
	assert.Equal(t, groceries, d.CategoryID)
}

func TestApply_MatchTypes(t *testing.T) {
	tests := []struct {
		name    string
		rule    *rule.Rule
		desc    string
		matches bool
	}{
		{name: "contains ignores case", rule: newRule(1, "coffee", rule.MatchContains, 0, coffee), desc: "Blue Bottle COFFEE", matches: true},
		{name: "exact", rule: newRule(1, "netflix", rule.MatchExact, 0, coffee), desc: "NETFLIX", matches: true},
		{name: "exact rejects substring", rule: newRule(1, "netflix", rule.MatchExact, 0, coffee), desc: "NETFLIX.COM", matches: false},
		{name: "starts with", rule: newRule(1, "sq *", rule.MatchStartsWith, 0, coffee), desc: "SQ *BAKERY", matches: true},
		{name: "regex is case sensitive", rule: newRule(1, `^AMZN\s`, rule.MatchRegex, 0, coffee), desc: "amzn mktp", matches: false},
		{name: "regex", rule: newRule(1, `^AMZN\s`, rule.MatchRegex, 0, coffee), desc: "AMZN Mktp US", matches: true},
		{name: "invalid regex never matches", rule: newRule(1, `([`, rule.MatchRegex, 0, coffee), desc: "([", matches: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Apply([]*rule.Rule{tc.rule}, normalize.Draft{Description: tc.desc})
			assert.Equal(t, tc.matches, d.CategoryID.Valid)
		})
	}
}

func TestApply_VendorFieldAndName(t *testing.T) {
	r := newRule(1, "uber", rule.MatchContains, 0, uuid.NullUUID{})
	r.Field = rule.FieldVendor
	r.VendorName = "Uber"

	d := Apply([]*rule.Rule{r}, normalize.Draft{Description: "Trip", Vendor: "UBER *TRIP"})
	assert.Equal(t, "Uber", d.Vendor)
	assert.False(t, d.CategoryID.Valid)

	d = Apply([]*rule.Rule{r}, normalize.Draft{Description: "uber trip"})
	assert.Empty(t, d.Vendor)
}

func TestCompile_DropsInactive(t *testing.T) {
	inactive := newRule(1, "coffee", rule.MatchContains, 0, coffee)
	inactive.Active = false

	rs := Compile([]*rule.Rule{inactive})
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.Match(&normalize.Draft{Description: "coffee"}))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(newRule(1, "coffee", rule.MatchContains, 0, coffee)))

	bad := []*rule.Rule{
		newRule(1, "  ", rule.MatchContains, 0, coffee),
		newRule(1, "x", rule.MatchType("fuzzy"), 0, coffee),
		newRule(1, `([`, rule.MatchRegex, 0, coffee),
		{Pattern: "x", Field: rule.Field("notes"), MatchType: rule.MatchExact},
	}
	for _, r := range bad {
		err := Validate(r)
		assert.True(t, ledgererr.IsValidation(err), "%+v", r)
	}
}
