package statement

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
)

func collect(t *testing.T, data []byte, format Format, limit int) []RawRecord {
	t.Helper()
	seq, err := Parse(data, format, limit)
	require.NoError(t, err)
	var out []RawRecord
	for rec := range seq {
		out = append(out, rec)
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "export.csv", want: FormatCSV},
		{name: "EXPORT.TSV", want: FormatCSV},
		{name: "export.txt", want: FormatCSV},
		{name: "bank.ofx", want: FormatOFX},
		{name: "bank.QFX", want: FormatQFX},
		{name: "bank.pdf", wantErr: true},
		{name: "noext", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat(tc.name)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" QFX ")
	require.NoError(t, err)
	assert.Equal(t, FormatQFX, f)
	assert.True(t, f.Structured())
	assert.False(t, FormatCSV.Structured())

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFDate,Description,Amount\n" +
		"2025-01-02,Coffee,-4.50\n" +
		"\n" +
		",,\n" +
		"2025-01-03,\"Rent, January\",-1200.00\n")

	recs := collect(t, data, FormatCSV, 0)
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].Index)
	assert.Equal(t, []string{"2025-01-02", "Coffee", "-4.50"}, recs[0].Fields)
	assert.Equal(t, 1, recs[1].Index)
	assert.Equal(t, "Rent, January", recs[1].Fields[1])
	assert.Nil(t, recs[0].Native)
}

func TestParseCSVIsRestartable(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n")
	seq, err := Parse(data, FormatCSV, 0)
	require.NoError(t, err)

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	assert.Equal(t, 2, first)
	assert.Equal(t, first, second)
}

func TestParseCSVLimit(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n5,6\n")
	recs := collect(t, data, FormatCSV, 2)
	require.Len(t, recs, 2)
	assert.Equal(t, "3", recs[1].Fields[0])
}

func TestParseCSVSniffsDelimiter(t *testing.T) {
	data := []byte("Datum;Omschrijving;Bedrag\n02-01-2025;Koffie;-4,50\n")
	recs := collect(t, data, FormatCSV, 0)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"02-01-2025", "Koffie", "-4,50"}, recs[0].Fields)

	headers, err := Headers(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Datum", "Omschrijving", "Bedrag"}, headers)
}

func TestParseCSVMalformedRow(t *testing.T) {
	data := []byte("a,b\n1,2\n\"broken,3\n")
	recs := collect(t, data, FormatCSV, 0)
	require.NotEmpty(t, recs)
	assert.NoError(t, recs[0].Err)
	assert.Error(t, recs[len(recs)-1].Err)
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := Parse([]byte("  \n"), FormatCSV, 0)
	assert.True(t, ledgererr.IsParse(err))

	_, err = Headers(nil)
	assert.True(t, ledgererr.IsParse(err))
}

func TestCountRows(t *testing.T) {
	n, err := CountRows([]byte("a,b\n1,2\n3,4\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile("testdata/multi_account.ofx")
	require.NoError(t, err)
	n, err = CountRows(data, FormatOFX)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestParseFullOFX(t *testing.T) {
	data, err := os.ReadFile("testdata/multi_account.ofx")
	require.NoError(t, err)

	st, err := ParseFull(data, FormatOFX)
	require.NoError(t, err)
	require.Len(t, st.Accounts, 3)

	checking := st.Accounts[0]
	assert.Equal(t, "1111", checking.ID)
	assert.Equal(t, "121000248", checking.BankID)
	assert.Equal(t, "checking", checking.Type)
	assert.Equal(t, "USD", checking.Currency)
	require.NotNil(t, checking.LedgerBalance)
	assert.Equal(t, money.MustParse("1454.50"), *checking.LedgerBalance)
	require.Len(t, checking.Transactions, 2)

	debit := checking.Transactions[0].Native
	require.NotNil(t, debit)
	assert.Equal(t, "CHK001", debit.FITID)
	assert.Equal(t, "DEBIT", debit.TrnType)
	assert.Equal(t, money.MustParse("-45.50"), debit.Amount)
	assert.Equal(t, "Transfer to savings", debit.Name)
	assert.Equal(t, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC), debit.Posted.UTC().Truncate(24*time.Hour))

	deposit := checking.Transactions[1].Native
	assert.Equal(t, "ACME CORP", deposit.Memo)
	assert.Equal(t, "1111", checking.Transactions[1].SourceAccountID)

	savings := st.Accounts[1]
	assert.Equal(t, "2222", savings.ID)
	assert.Equal(t, "savings", savings.Type)
	assert.Equal(t, 2, savings.Transactions[0].Index)

	card := st.Accounts[2]
	assert.Equal(t, "4444", card.ID)
	assert.Equal(t, "credit_card", card.Type)
	assert.Equal(t, "STARBUCKS #123", card.Transactions[0].Native.Name)
}

func TestParseOFXFlattensAccounts(t *testing.T) {
	data, err := os.ReadFile("testdata/multi_account.ofx")
	require.NoError(t, err)

	recs := collect(t, data, FormatQFX, 3)
	require.Len(t, recs, 3)
	assert.Equal(t, "1111", recs[0].SourceAccountID)
	assert.Equal(t, "2222", recs[2].SourceAccountID)
}

func TestParseFullRejectsCSV(t *testing.T) {
	_, err := ParseFull([]byte("a,b\n"), FormatCSV)
	assert.ErrorIs(t, err, ErrNoNativeAccounts)
}

func TestParseOFXGarbage(t *testing.T) {
	_, err := Parse([]byte("this is not a statement"), FormatOFX, 0)
	assert.True(t, ledgererr.IsParse(err))
}
