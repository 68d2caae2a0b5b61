package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "0190a000-0000-7000-8000-000000000001"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LEDGER_LOG_LEVEL", "panic")
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"ledgerctl", "--storage", "memory"}, args...))
	return out.String(), err
}

func TestDetect(t *testing.T) {
	out, err := run(t, "detect", "testdata/multi_account.ofx")
	require.NoError(t, err)
	assert.Equal(t, "ofx\n", out)

	_, err = run(t, "detect", "testdata/missing.pdf")
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	out, err := run(t, "count", "testdata/bank.csv")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestPreview_CSV(t *testing.T) {
	out, err := run(t, "preview", "--user", testUser, "testdata/bank.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "format=csv rows=3 valid=2 duplicates=0 errors=1")
	assert.Contains(t, out, "Coffee Shop")
	assert.Contains(t, out, "row 2:")
}

func TestPreview_OFXSummaries(t *testing.T) {
	out, err := run(t, "preview", "--user", testUser, "testdata/multi_account.ofx")
	require.NoError(t, err)
	assert.Contains(t, out, "account 1111")
	assert.Contains(t, out, "account 2222")
}

func TestImport_MissingAccount(t *testing.T) {
	_, err := run(t, "import", "--user", testUser, "--account", "0190a000-0000-7000-8000-0000000000ff", "testdata/bank.csv")
	assert.Error(t, err)
}

func TestBadArguments(t *testing.T) {
	_, err := run(t, "preview", "--user", "nope", "testdata/bank.csv")
	assert.ErrorContains(t, err, "invalid --user")

	_, err = run(t, "preview", "--user", testUser, "--map", "1111", "testdata/multi_account.ofx")
	assert.ErrorContains(t, err, "invalid --map")

	_, err = run(t, "count")
	assert.ErrorContains(t, err, "FILE")
}

func TestMatch_EmptyLedger(t *testing.T) {
	out, err := run(t, "match", "--user", testUser)
	require.NoError(t, err)
	assert.Equal(t, "scanned=0 matched=0 review=0 unmatched=0\n", out)
}
