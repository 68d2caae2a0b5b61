package rule

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
)

const tableName = "import_rules"

var columns = []string{
	"id", "user_id", "pattern", "field", "match_type", "priority",
	"category_id", "vendor_name", "active", "created_at", "updated_at",
}

type row struct {
	ID         uuid.UUID      `db:"id"`
	UserID     uuid.UUID      `db:"user_id"`
	Pattern    string         `db:"pattern"`
	Field      string         `db:"field"`
	MatchType  string         `db:"match_type"`
	Priority   int            `db:"priority"`
	CategoryID uuid.NullUUID  `db:"category_id"`
	VendorName sql.NullString `db:"vendor_name"`
	Active     bool           `db:"active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func rowToRule(r *row) *Rule {
	return &Rule{
		ID:         r.ID,
		UserID:     r.UserID,
		Pattern:    r.Pattern,
		Field:      Field(r.Field),
		MatchType:  MatchType(r.MatchType),
		Priority:   r.Priority,
		CategoryID: r.CategoryID,
		VendorName: r.VendorName.String,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
