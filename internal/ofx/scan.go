package ofx

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lfarias/meubolso/internal/domain"
)

// The scan path works on the raw text so it tolerates the unclosed
// SGML tags most Brazilian banks emit. Every field is extracted
// independently; a broken field never poisons its siblings.
var (
	stmtTrnRe = regexp.MustCompile(`(?s)<STMTTRN>(.*?)</STMTTRN>`)

	fitIDRe    = fieldRe("FITID")
	dtPostedRe = fieldRe("DTPOSTED")
	trnAmtRe   = fieldRe("TRNAMT")
	memoRe     = fieldRe("MEMO")
	nameRe     = fieldRe("NAME")
	trnTypeRe  = fieldRe("TRNTYPE")
	acctIDRe   = fieldRe("ACCTID")
	balAmtRe   = fieldRe("BALAMT")
	dtAsOfRe   = fieldRe("DTASOF")
)

func fieldRe(tag string) *regexp.Regexp {
	return regexp.MustCompile(`<` + tag + `>([^<\r\n]*)`)
}

func scanField(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// scanStatement extracts a statement with tag-level regex matching.
// Transaction blocks missing FITID or TRNAMT, or whose DTPOSTED does
// not decode, are dropped.
func scanStatement(text string) (*domain.ParsedStatement, error) {
	if idx := strings.Index(text, "<OFX>"); idx >= 0 {
		text = text[idx:]
	} else if !strings.Contains(text, "<STMTTRN>") {
		return nil, &domain.ErrMalformedStatement{Reason: "no OFX markers found"}
	}

	stmt := &domain.ParsedStatement{
		AccountID:   UnknownAccountID,
		BalanceDate: today(),
	}

	if id := scanField(acctIDRe, text); id != "" {
		stmt.AccountID = id
	}
	if bal := scanField(balAmtRe, text); bal != "" {
		if amt, err := parseAmount(bal); err == nil {
			stmt.Balance = amt
		}
	}
	if asOf := scanField(dtAsOfRe, text); asOf != "" {
		stmt.BalanceDate = DecodeDate(asOf)
	}

	for _, m := range stmtTrnRe.FindAllStringSubmatch(text, -1) {
		block := m[1]

		fitID := scanField(fitIDRe, block)
		rawAmt := scanField(trnAmtRe, block)
		if fitID == "" || rawAmt == "" {
			continue
		}
		date, err := ParseDate(scanField(dtPostedRe, block))
		if err != nil {
			continue
		}

		amt, err := parseAmount(rawAmt)
		if err != nil {
			amt = decimal.Zero
		}

		desc := scanField(memoRe, block)
		if desc == "" {
			desc = scanField(nameRe, block)
		}
		if desc == "" {
			desc = MissingDescription
		}

		stmt.Transactions = append(stmt.Transactions, domain.ParsedTransaction{
			FitID:       fitID,
			Date:        date,
			Amount:      amt,
			Description: NormalizeDescription(desc),
			Kind:        txKind(scanField(trnTypeRe, block)),
		})
	}

	return stmt, nil
}

// parseAmount accepts both dot and comma decimal separators.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}
