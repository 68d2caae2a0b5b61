package rule

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Field is the draft field a rule pattern is tested against.
type Field string

const (
	FieldDescription Field = "description"
	FieldVendor      Field = "vendor"
)

type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchExact      MatchType = "exact"
	MatchStartsWith MatchType = "startsWith"
	MatchRegex      MatchType = "regex"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldDescription, FieldVendor:
		return f, nil
	default:
		return "", fmt.Errorf("invalid rule field %q", s)
	}
}

func ParseMatchType(s string) (MatchType, error) {
	switch m := MatchType(s); m {
	case MatchContains, MatchExact, MatchStartsWith, MatchRegex:
		return m, nil
	default:
		return "", fmt.Errorf("invalid match type %q", s)
	}
}

// Rule is a user's categorization rule. Lower Priority values are tried first.
type Rule struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Pattern    string
	Field      Field
	MatchType  MatchType
	Priority   int
	CategoryID uuid.NullUUID
	VendorName string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RuleCreate struct {
	UserID     uuid.UUID
	Pattern    string
	Field      Field
	MatchType  MatchType
	Priority   int
	CategoryID uuid.NullUUID
	VendorName string
	Active     bool
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
}

type IWriter interface {
	IReader
	Insert(ctx context.Context, create *RuleCreate) (*Rule, error)
	Save(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id uuid.UUID) error
}
