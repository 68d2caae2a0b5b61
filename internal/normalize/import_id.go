package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SourceIDForContent identifies a delimited file by its bytes.
func SourceIDForContent(data []byte) string {
	sum := sha256.Sum256(data)
	return "csv:" + hex.EncodeToString(sum[:])
}

// SourceIDForAccount identifies a structured-dialect source account.
func SourceIDForAccount(bankID, accountID string) string {
	return "ofx:" + bankID + ":" + accountID
}

// GenerateImportID derives the dedup key of a draft from its source, its row
// key (row position or native transaction id) and its normalized content.
func GenerateImportID(sourceID, rowKey string, d Draft) string {
	h := sha256.New()
	for _, part := range []string{
		sourceID,
		rowKey,
		d.Date.Format("2006-01-02"),
		d.SignedAmount().String(),
		NormalizeDescription(d.Description),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeDescription is the comparison form of a description.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
