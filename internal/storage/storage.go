package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/budget-ledger/internal/config"
)

// BeginFunc opens a write transaction.
type BeginFunc func(ctx context.Context) (*Writer, error)

// Storage is the persistence root. Reads go through Reader outside any
// transaction; every mutation runs inside a Writer obtained from Write.
type Storage struct {
	Reader *Reader
	begin  BeginFunc
	close  func() error
}

func New(reader *Reader, begin BeginFunc, closeFn func() error) *Storage {
	return &Storage{Reader: reader, begin: begin, close: closeFn}
}

// NewStorage connects to postgres.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", env.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewFromDB(db), nil
}

func NewFromDB(db *sql.DB) *Storage {
	bobDB := bob.NewDB(db)
	return &Storage{
		Reader: NewReader(bobDB),
		begin: func(ctx context.Context) (*Writer, error) {
			tx, err := bobDB.BeginTx(ctx, nil)
			if err != nil {
				return nil, err
			}
			return NewWriter(tx), nil
		},
		close: db.Close,
	}
}

func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	return s.begin(ctx)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
