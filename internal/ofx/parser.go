// Package ofx parses OFX bank and credit-card statement files.
//
// Real-world Brazilian bank exports are frequently malformed SGML that
// strict parsers reject, so parsing runs in two strategies: a
// structured parse first, and a tolerant regex scan as fallback.
package ofx

import (
	"bytes"
	"strings"

	"github.com/lfarias/meubolso/internal/domain"
)

// Strategy identifies which parse path produced a statement.
type Strategy string

const (
	StrategyStructured Strategy = "structured"
	StrategyScan       Strategy = "scan"
)

// UnknownAccountID is the placeholder when no ACCTID is present.
const UnknownAccountID = "unknown"

// Parse extracts a statement from raw OFX bytes. It reports the
// strategy that produced the result. The parser never deduplicates
// transactions; that is the ingestion layer's responsibility.
func Parse(raw []byte) (*domain.ParsedStatement, Strategy, error) {
	text := string(raw)
	hasMarkers := strings.Contains(text, "<STMTTRN>")

	stmt, err := parseStructured(bytes.NewReader(raw))
	if useStructured(err, txCount(stmt), hasMarkers) {
		return stmt, StrategyStructured, nil
	}

	stmt, err = scanStatement(text)
	if err != nil {
		return nil, StrategyScan, err
	}
	return stmt, StrategyScan, nil
}

// useStructured decides whether the structured result should be
// trusted over the scan fallback. A successful parse that found no
// transactions is only trusted when the raw text contains no
// transaction markers either, i.e. the file is genuinely empty.
func useStructured(err error, transactions int, rawHasMarkers bool) bool {
	if err != nil {
		return false
	}
	return transactions > 0 || !rawHasMarkers
}

func txCount(stmt *domain.ParsedStatement) int {
	if stmt == nil {
		return 0
	}
	return len(stmt.Transactions)
}

// txKind preserves the statement-supplied TRNTYPE tag, lowercased.
// An absent tag becomes "other", the OFX default. Reducing a kind to
// the stored credit/debit view happens at ingestion, never here.
func txKind(trnType string) string {
	kind := strings.ToLower(strings.TrimSpace(trnType))
	if kind == "" {
		return "other"
	}
	return kind
}
