package ofx

import (
	"io"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/lfarias/meubolso/internal/domain"
)

// parseStructured runs the strict OFX parser over the file and flattens
// every bank and credit-card statement it contains into one result.
// Credit-card statements take precedence for account id and balance.
func parseStructured(r io.Reader) (*domain.ParsedStatement, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, err
	}

	stmt := &domain.ParsedStatement{
		AccountID:   UnknownAccountID,
		BalanceDate: today(),
	}
	accountSet := false

	msgs := make([]ofxgo.Message, 0, len(resp.CreditCard)+len(resp.Bank))
	msgs = append(msgs, resp.CreditCard...)
	msgs = append(msgs, resp.Bank...)

	for _, msg := range msgs {
		switch st := msg.(type) {
		case *ofxgo.CCStatementResponse:
			if !accountSet {
				setAccount(stmt, string(st.CCAcctFrom.AcctID), st.BalAmt, st.DtAsOf.Time)
				accountSet = true
			}
			appendStructuredTransactions(stmt, st.BankTranList)
		case *ofxgo.StatementResponse:
			if !accountSet {
				setAccount(stmt, string(st.BankAcctFrom.AcctID), st.BalAmt, st.DtAsOf.Time)
				accountSet = true
			}
			appendStructuredTransactions(stmt, st.BankTranList)
		}
	}

	return stmt, nil
}

func setAccount(stmt *domain.ParsedStatement, acctID string, balance ofxgo.Amount, asOf time.Time) {
	if id := strings.TrimSpace(acctID); id != "" {
		stmt.AccountID = id
	}
	if amt, err := decimal.NewFromString(balance.String()); err == nil {
		stmt.Balance = amt
	}
	if !asOf.IsZero() {
		stmt.BalanceDate = dateOnly(asOf)
	}
}

func appendStructuredTransactions(stmt *domain.ParsedStatement, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}
	for _, tr := range list.Transactions {
		fitID := strings.TrimSpace(string(tr.FiTID))
		if fitID == "" || tr.DtPosted.IsZero() {
			continue
		}

		amt, err := decimal.NewFromString(tr.TrnAmt.String())
		if err != nil {
			amt = decimal.Zero
		}

		desc := strings.TrimSpace(string(tr.Memo))
		if desc == "" {
			desc = strings.TrimSpace(string(tr.Name))
		}

		stmt.Transactions = append(stmt.Transactions, domain.ParsedTransaction{
			FitID:       fitID,
			Date:        dateOnly(tr.DtPosted.Time),
			Amount:      amt,
			Description: NormalizeDescription(desc),
			Kind:        txKind(tr.TrnType.String()),
		})
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
