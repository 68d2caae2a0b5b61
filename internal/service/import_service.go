package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/rules"
	"github.com/carson-networks/budget-ledger/internal/statement"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// ImportService turns statement files into ledger transactions.
type ImportService struct {
	storage    *storage.Storage
	operator   processor
	duplicates *DuplicateDetector
	rules      *RuleService
	opts       Options
	logger     *logrus.Logger
}

func NewImportService(store *storage.Storage, op processor, duplicates *DuplicateDetector, ruleService *RuleService, opts Options, logger *logrus.Logger) *ImportService {
	return &ImportService{
		storage:    store,
		operator:   op,
		duplicates: duplicates,
		rules:      ruleService,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// batch is the records of one source account bound for one destination.
type batch struct {
	sourceAccountID  string
	sourceID         string
	accountType      string
	currency         string
	destination      uuid.NullUUID
	records          []statement.RawRecord
	recordCount      int
	statementBalance *money.Amount
}

type importPlan struct {
	format   statement.Format
	mapping  normalize.ColumnMapping
	batches  []*batch
	unmapped []string
}

func resolveFormat(req *ImportRequest) (statement.Format, error) {
	if req.Format != "" {
		f, err := statement.ParseFormat(string(req.Format))
		if err != nil {
			return "", &ledgererr.ValidationError{Field: "format", Err: err}
		}
		return f, nil
	}
	if req.Filename == "" {
		return "", ledgererr.Invalid("format", "format or filename is required")
	}
	f, err := statement.DetectFormat(req.Filename)
	if err != nil {
		return "", &ledgererr.ValidationError{Field: "filename", Err: err}
	}
	return f, nil
}

// plan parses the file and routes its records to destinations. limit <= 0
// keeps every record.
func (s *ImportService) plan(ctx context.Context, req *ImportRequest, limit int) (*importPlan, error) {
	format, err := resolveFormat(req)
	if err != nil {
		return nil, err
	}
	p := &importPlan{format: format}

	if format.Structured() {
		err = s.planStructured(p, req, limit)
	} else {
		err = s.planDelimited(p, req, limit)
	}
	if err != nil {
		return nil, err
	}

	checked := make(map[uuid.UUID]bool)
	for _, b := range p.batches {
		if !b.destination.Valid || checked[b.destination.UUID] {
			continue
		}
		acct, err := s.storage.Reader.Accounts.FindByID(ctx, b.destination.UUID)
		if err != nil {
			return nil, err
		}
		if acct.UserID != req.UserID {
			return nil, ledgererr.NotFound("account", b.destination.UUID)
		}
		checked[acct.ID] = true
	}
	return p, nil
}

func (s *ImportService) planDelimited(p *importPlan, req *ImportRequest, limit int) error {
	headers, err := statement.Headers(req.Data)
	if err != nil {
		return err
	}
	if req.Mapping != nil {
		p.mapping = *req.Mapping
	} else {
		suggested, ok := normalize.SuggestMapping(headers)
		if !ok {
			return &ledgererr.ValidationError{Field: "mapping", Err: normalize.ErrMappingRequired}
		}
		p.mapping = suggested
	}
	if err := p.mapping.Validate(len(headers)); err != nil {
		return &ledgererr.ValidationError{Field: "mapping", Err: err}
	}

	seq, err := statement.Parse(req.Data, p.format, limit)
	if err != nil {
		return err
	}
	b := &batch{sourceID: normalize.SourceIDForContent(req.Data)}
	if req.AccountID != uuid.Nil {
		b.destination = uuid.NullUUID{UUID: req.AccountID, Valid: true}
	}
	for rec := range seq {
		b.records = append(b.records, rec)
	}
	b.recordCount = len(b.records)
	p.batches = append(p.batches, b)
	return nil
}

func (s *ImportService) planStructured(p *importPlan, req *ImportRequest, limit int) error {
	st, err := statement.ParseFull(req.Data, p.format)
	if err != nil {
		return err
	}

	remaining := limit
	for _, acct := range st.Accounts {
		b := &batch{
			sourceAccountID:  acct.ID,
			sourceID:         normalize.SourceIDForAccount(acct.BankID, acct.ID),
			accountType:      acct.Type,
			currency:         acct.Currency,
			records:          acct.Transactions,
			recordCount:      len(acct.Transactions),
			statementBalance: acct.LedgerBalance,
		}
		if dest, ok := req.AccountMapping[acct.ID]; ok && dest != uuid.Nil {
			b.destination = uuid.NullUUID{UUID: dest, Valid: true}
		} else if len(req.AccountMapping) == 0 && req.AccountID != uuid.Nil {
			b.destination = uuid.NullUUID{UUID: req.AccountID, Valid: true}
		} else {
			p.unmapped = append(p.unmapped, acct.ID)
		}

		if limit > 0 {
			if remaining < len(b.records) {
				b.records = b.records[:remaining]
			}
			remaining -= len(b.records)
		}
		p.batches = append(p.batches, b)
	}
	return nil
}

func (p *importPlan) draft(b *batch, rec statement.RawRecord) (normalize.Draft, error) {
	if rec.Err != nil {
		return normalize.Draft{}, &ledgererr.RowError{Row: rec.Index, Err: rec.Err}
	}

	var (
		d      normalize.Draft
		rowKey string
		err    error
	)
	if rec.Native != nil {
		d, err = normalize.MapNativeTransaction(rec.Native)
		rowKey = rec.Native.FITID
		if rowKey == "" {
			rowKey = "row:" + strconv.Itoa(rec.Index)
		}
	} else {
		d, err = normalize.MapRowToTransaction(rec.Fields, p.mapping)
		rowKey = strconv.Itoa(rec.Index)
	}
	if err != nil {
		return normalize.Draft{}, &ledgererr.RowError{Row: rec.Index, Err: err}
	}
	d.ImportID = normalize.GenerateImportID(b.sourceID, rowKey, d)
	return d, nil
}

func rowFailure(b *batch, rec statement.RawRecord, err error) RowFailure {
	f := RowFailure{Row: rec.Index, SourceAccountID: b.sourceAccountID, Error: err.Error()}
	var rowErr *ledgererr.RowError
	if errors.As(err, &rowErr) {
		f.Row = rowErr.Row
		f.Error = rowErr.Err.Error()
	}
	return f
}

// Preview normalizes the file without writing anything. Duplicate flags are
// only computed for records with a destination account.
func (s *ImportService) Preview(ctx context.Context, req *ImportRequest) (*PreviewResult, error) {
	p, err := s.plan(ctx, req, req.Limit)
	if err != nil {
		return nil, err
	}
	total, err := statement.CountRows(req.Data, p.format)
	if err != nil {
		return nil, err
	}
	rs, err := s.rules.Snapshot(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		Format:           p.format,
		Transactions:     []DraftPreview{},
		TotalRows:        total,
		Errors:           []RowFailure{},
		AccountSummaries: []AccountSummary{},
	}
	for _, b := range p.batches {
		result.AccountSummaries = append(result.AccountSummaries, AccountSummary{
			SourceAccountID:      b.sourceAccountID,
			Type:                 b.accountType,
			Currency:             b.currency,
			DestinationAccountID: b.destination,
			TransactionCount:     b.recordCount,
			StatementBalance:     b.statementBalance,
		})

		for _, rec := range b.records {
			d, err := p.draft(b, rec)
			if err != nil {
				result.Errors = append(result.Errors, rowFailure(b, rec, err))
				continue
			}
			preview := DraftPreview{Row: rec.Index, SourceAccountID: b.sourceAccountID, Draft: rs.Apply(d)}
			if b.destination.Valid {
				if preview.DuplicateByImportID, err = s.duplicates.IsDuplicateByImportID(ctx, b.destination.UUID, d.ImportID); err != nil {
					return nil, err
				}
				if !preview.DuplicateByImportID {
					if preview.LikelyDuplicate, err = s.duplicates.IsDuplicate(ctx, b.destination.UUID, d); err != nil {
						return nil, err
					}
				}
			}
			if preview.DuplicateByImportID || preview.LikelyDuplicate {
				result.Duplicates++
			}
			result.ValidTransactions++
			result.Transactions = append(result.Transactions, preview)
		}
	}
	return result, nil
}

type batchOutcome struct {
	result AccountResult
	errors []RowFailure
}

// Import writes the file's transactions. Destinations are imported in
// parallel; records of one destination are written in file order.
func (s *ImportService) Import(ctx context.Context, req *ImportRequest) (*ImportResult, error) {
	p, err := s.plan(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if !p.format.Structured() && req.AccountID == uuid.Nil {
		return nil, ledgererr.Invalid("accountId", "is required for delimited files")
	}
	rs, err := s.rules.Snapshot(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	var order []uuid.UUID
	byDestination := make(map[uuid.UUID][]int)
	for i, b := range p.batches {
		if !b.destination.Valid {
			continue
		}
		dest := b.destination.UUID
		if _, ok := byDestination[dest]; !ok {
			order = append(order, dest)
		}
		byDestination[dest] = append(byDestination[dest], i)
	}

	outcomes := make([]batchOutcome, len(p.batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ImportConcurrency)
	for _, dest := range order {
		indexes := byDestination[dest]
		g.Go(func() error {
			created := make(map[uuid.UUID]struct{})
			for _, i := range indexes {
				if err := s.importBatch(gctx, req, p, p.batches[i], rs, created, &outcomes[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors:           []RowFailure{},
		AccountResults:   []AccountResult{},
		UnmappedAccounts: p.unmapped,
	}
	for i, b := range p.batches {
		if !b.destination.Valid {
			continue
		}
		out := outcomes[i]
		result.Imported += out.result.Imported
		result.Skipped += out.result.Skipped
		result.Errors = append(result.Errors, out.errors...)
		result.AccountResults = append(result.AccountResults, out.result)
	}

	s.logger.WithFields(logrus.Fields{
		"userID":   req.UserID.String(),
		"format":   string(p.format),
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"errors":   len(result.Errors),
		"unmapped": len(result.UnmappedAccounts),
	}).Info("ImportService.Import.done")
	return result, nil
}

// importBatch writes one batch. created holds the ids written to the same
// destination earlier in this import so the likely-duplicate check only
// compares against transactions that existed before.
func (s *ImportService) importBatch(ctx context.Context, req *ImportRequest, p *importPlan, b *batch, rs *rules.RuleSet, created map[uuid.UUID]struct{}, out *batchOutcome) error {
	dest := b.destination.UUID
	out.result = AccountResult{DestinationAccountID: dest, SourceAccountID: b.sourceAccountID}

	for _, rec := range b.records {
		if err := ctx.Err(); err != nil {
			return err
		}

		d, err := p.draft(b, rec)
		if err != nil {
			out.errors = append(out.errors, rowFailure(b, rec, err))
			continue
		}

		dup, err := s.duplicates.IsDuplicateByImportID(ctx, dest, d.ImportID)
		if err != nil {
			return err
		}
		if !dup && req.SkipDuplicates {
			if dup, err = s.duplicates.isDuplicateExcept(ctx, dest, d, created); err != nil {
				return err
			}
		}
		if dup {
			out.result.Skipped++
			continue
		}

		d = rs.Apply(d)
		action := &actions.CreateTransaction{Input: &transaction.TransactionCreate{
			UserID:      req.UserID,
			AccountID:   dest,
			Date:        d.Date,
			Description: d.Description,
			Amount:      d.Amount,
			Type:        d.Type,
			CategoryID:  d.CategoryID,
			Vendor:      d.Vendor,
			Reference:   d.Reference,
			ImportID:    d.ImportID,
		}}
		err = s.operator.Process(ctx, action)
		switch {
		case ledgererr.IsDuplicate(err):
			out.result.Skipped++
		case ledgererr.IsValidation(err):
			out.errors = append(out.errors, rowFailure(b, rec, err))
		case err != nil:
			return fmt.Errorf("import into account %s: %w", dest, err)
		default:
			created[action.Result.ID] = struct{}{}
			out.result.Imported++
		}
	}

	if b.statementBalance != nil {
		acct, err := s.storage.Reader.Accounts.FindByID(ctx, dest)
		if err != nil {
			return err
		}
		stmt := *b.statementBalance
		diff := stmt.Sub(acct.Balance)
		out.result.StatementBalance = &stmt
		out.result.BalanceDifference = &diff
	}
	return nil
}
