package main

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/budget-ledger/internal/statement"
)

func detect(cCtx *cli.Context) error {
	name, _, err := readFile(cCtx)
	if err != nil {
		return err
	}
	format, err := statement.DetectFormat(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cCtx), format)
	return nil
}

func count(cCtx *cli.Context) error {
	name, data, err := readFile(cCtx)
	if err != nil {
		return err
	}
	format := statement.Format(cCtx.String("format"))
	if format == "" {
		if format, err = statement.DetectFormat(name); err != nil {
			return err
		}
	} else if format, err = statement.ParseFormat(string(format)); err != nil {
		return err
	}
	n, err := statement.CountRows(data, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cCtx), n)
	return nil
}

func preview(cCtx *cli.Context) error {
	name, data, err := readFile(cCtx)
	if err != nil {
		return err
	}
	req, err := importRequest(cCtx, name, data)
	if err != nil {
		return err
	}
	req.Limit = cCtx.Int("limit")

	e, err := openEnv(cCtx)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.svc.Import.Preview(cCtx.Context, req)
	if err != nil {
		return err
	}

	w := writer(cCtx)
	fmt.Fprintf(w, "format=%s rows=%d valid=%d duplicates=%d errors=%d\n",
		res.Format, res.TotalRows, res.ValidTransactions, res.Duplicates, len(res.Errors))
	for _, s := range res.AccountSummaries {
		if s.SourceAccountID == "" {
			continue
		}
		balance := "-"
		if s.StatementBalance != nil {
			balance = s.StatementBalance.Display(s.Currency)
		}
		fmt.Fprintf(w, "account %s type=%s transactions=%d balance=%s\n", s.SourceAccountID, s.Type, s.TransactionCount, balance)
	}
	for _, p := range res.Transactions {
		flag := ""
		switch {
		case p.DuplicateByImportID:
			flag = " [imported]"
		case p.LikelyDuplicate:
			flag = " [likely duplicate]"
		}
		fmt.Fprintf(w, "%4d %s %-6s %10s %s%s\n", p.Row, p.Draft.Date.Format("2006-01-02"), p.Draft.Type, p.Draft.Amount, p.Draft.Description, flag)
	}
	for _, f := range res.Errors {
		fmt.Fprintf(w, "row %d: %s\n", f.Row, f.Error)
	}
	debugDump(cCtx, res)
	return nil
}

func importFile(cCtx *cli.Context) error {
	name, data, err := readFile(cCtx)
	if err != nil {
		return err
	}
	req, err := importRequest(cCtx, name, data)
	if err != nil {
		return err
	}
	req.SkipDuplicates = cCtx.Bool("skip-duplicates")

	e, err := openEnv(cCtx)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.svc.Import.Import(cCtx.Context, req)
	if err != nil {
		return err
	}

	w := writer(cCtx)
	fmt.Fprintf(w, "imported=%d skipped=%d errors=%d\n", res.Imported, res.Skipped, len(res.Errors))
	for _, a := range res.AccountResults {
		fmt.Fprintf(w, "account %s imported=%d skipped=%d", a.DestinationAccountID, a.Imported, a.Skipped)
		if a.BalanceDifference != nil {
			fmt.Fprintf(w, " statement=%s difference=%s", a.StatementBalance, a.BalanceDifference)
		}
		fmt.Fprintln(w)
	}
	for _, source := range res.UnmappedAccounts {
		fmt.Fprintf(w, "unmapped source account %s\n", source)
	}
	for _, f := range res.Errors {
		fmt.Fprintf(w, "row %d: %s\n", f.Row, f.Error)
	}
	debugDump(cCtx, res)
	return nil
}

func match(cCtx *cli.Context) error {
	userID, err := parseUUID("user", cCtx.String("user"))
	if err != nil {
		return err
	}
	e, err := openEnv(cCtx)
	if err != nil {
		return err
	}
	defer e.close()

	window := cCtx.Int("window")
	if window < 0 {
		window = e.svc.Match.DefaultWindowDays()
	}
	res, err := e.svc.Match.BulkFindAndMatch(cCtx.Context, userID, window, cCtx.Int("batch"))
	if err != nil {
		return err
	}

	w := writer(cCtx)
	fmt.Fprintf(w, "scanned=%d matched=%d review=%d unmatched=%d\n",
		res.Stats.Scanned, res.Stats.AutoMatchedCount, res.Stats.NeedsReviewCount, res.Stats.UnmatchedCount)
	for _, g := range res.NeedsReview {
		ids := make([]uuid.UUID, len(g.Matches))
		for i, m := range g.Matches {
			ids[i] = m.ID
		}
		fmt.Fprintf(w, "review %s candidates=%v\n", g.Transaction.ID, ids)
	}
	debugDump(cCtx, res)
	return nil
}

func recompute(cCtx *cli.Context) error {
	userID, err := parseUUID("user", cCtx.String("user"))
	if err != nil {
		return err
	}
	accountID, err := parseUUID("account", cCtx.String("account"))
	if err != nil {
		return err
	}
	e, err := openEnv(cCtx)
	if err != nil {
		return err
	}
	defer e.close()

	check, err := e.svc.Account.RecomputeBalance(cCtx.Context, userID, accountID, cCtx.Bool("repair"))
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cCtx), "stored=%s computed=%s transactions=%d consistent=%t repaired=%t\n",
		check.StoredBalance, check.ComputedBalance, check.TransactionCount, check.Consistent(), check.Repaired)
	return nil
}
