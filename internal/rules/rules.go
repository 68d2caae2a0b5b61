// Package rules assigns categories and vendor names to drafts from a user's
// ordered rule list.
package rules

import (
	"bytes"
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

type compiledRule struct {
	rule    *rule.Rule
	pattern string
	re      *regexp.Regexp
}

// RuleSet is an immutable, evaluation-ordered snapshot of active rules.
type RuleSet struct {
	rules []compiledRule
}

// Compile orders rules by ascending priority, ties by id, and drops inactive
// ones. A rule whose regex does not compile is kept but never matches.
func Compile(rules []*rule.Rule) *RuleSet {
	active := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	slices.SortStableFunc(active, func(a, b *rule.Rule) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	rs := &RuleSet{rules: make([]compiledRule, 0, len(active))}
	for _, r := range active {
		c := compiledRule{rule: r, pattern: strings.ToLower(r.Pattern)}
		if r.MatchType == rule.MatchRegex {
			c.re, _ = regexp.Compile(r.Pattern)
		}
		rs.rules = append(rs.rules, c)
	}
	return rs
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Match returns the first rule that matches d, or nil.
func (rs *RuleSet) Match(d *normalize.Draft) *rule.Rule {
	if rs == nil {
		return nil
	}
	for i := range rs.rules {
		if rs.rules[i].matches(d) {
			return rs.rules[i].rule
		}
	}
	return nil
}

// Apply returns d with the first matching rule's category and vendor name.
func (rs *RuleSet) Apply(d normalize.Draft) normalize.Draft {
	r := rs.Match(&d)
	if r == nil {
		return d
	}
	if r.CategoryID.Valid {
		d.CategoryID = r.CategoryID
	}
	if r.VendorName != "" {
		d.Vendor = r.VendorName
	}
	return d
}

// Apply compiles rules and applies them to a single draft.
func Apply(rules []*rule.Rule, d normalize.Draft) normalize.Draft {
	return Compile(rules).Apply(d)
}

func (c *compiledRule) matches(d *normalize.Draft) bool {
	value := d.Description
	if c.rule.Field == rule.FieldVendor {
		value = d.Vendor
	}

	switch c.rule.MatchType {
	case rule.MatchContains:
		return strings.Contains(strings.ToLower(value), c.pattern)
	case rule.MatchExact:
		return strings.ToLower(value) == c.pattern
	case rule.MatchStartsWith:
		return strings.HasPrefix(strings.ToLower(value), c.pattern)
	case rule.MatchRegex:
		return c.re != nil && c.re.MatchString(value)
	default:
		return false
	}
}

// Validate rejects rules that could never behave as the user intends.
func Validate(r *rule.Rule) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ledgererr.Invalid("pattern", "must not be empty")
	}
	if _, err := rule.ParseField(string(r.Field)); err != nil {
		return &ledgererr.ValidationError{Field: "field", Err: err}
	}
	if _, err := rule.ParseMatchType(string(r.MatchType)); err != nil {
		return &ledgererr.ValidationError{Field: "matchType", Err: err}
	}
	if r.MatchType == rule.MatchRegex {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return &ledgererr.ValidationError{Field: "pattern", Err: err}
		}
	}
	return nil
}
