// Package rule exposes the categorization rules applied to imported drafts.
package rule

import (
	"time"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
)

// Rule is the API response model for an import rule.
type Rule struct {
	ID         string `json:"id"`
	Pattern    string `json:"pattern"`
	Field      string `json:"field" enum:"description,vendor"`
	MatchType  string `json:"matchType" enum:"contains,exact,startsWith,regex"`
	Priority   int    `json:"priority" doc:"Lower values are tried first"`
	CategoryID string `json:"categoryId,omitempty"`
	VendorName string `json:"vendorName,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toRule(r *rule.Rule) Rule {
	return Rule{
		ID:         r.ID.String(),
		Pattern:    r.Pattern,
		Field:      string(r.Field),
		MatchType:  string(r.MatchType),
		Priority:   r.Priority,
		CategoryID: common.NullID(r.CategoryID),
		VendorName: r.VendorName,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}
