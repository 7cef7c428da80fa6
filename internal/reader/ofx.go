package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/saldo-fin/saldo/internal/domain"
)

// ReadOFX reads an OFX/QFX statement and re-keys its transactions to the
// preset's column names, so normalization sees the same shape it would get
// from a delimited export. Dates are rendered with the preset's layout and
// amounts with the statement's exact decimal text.
func ReadOFX(r io.Reader, preset domain.Preset) ([]domain.RawRow, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX statement: %w", err)
	}

	tranList, err := statementTransactions(resp)
	if err != nil {
		return nil, err
	}
	if tranList == nil {
		return nil, nil
	}

	rows := make([]domain.RawRow, 0, len(tranList.Transactions))
	for i, txn := range tranList.Transactions {
		row, err := rekeyTransaction(txn, preset)
		if err != nil {
			return nil, fmt.Errorf("OFX transaction %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// statementTransactions picks the first bank or credit card statement in the
// response. Investment statements are out of scope.
func statementTransactions(resp *ofxgo.Response) (*ofxgo.TransactionList, error) {
	if len(resp.Bank) > 0 {
		stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected bank statement type %T", resp.Bank[0])
		}
		return stmt.BankTranList, nil
	}

	if len(resp.CreditCard) > 0 {
		stmt, ok := resp.CreditCard[0].(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected credit card statement type %T", resp.CreditCard[0])
		}
		return stmt.BankTranList, nil
	}

	return nil, fmt.Errorf("no bank or credit card statement in OFX response (bank: %d, creditcard: %d, investment: %d)",
		len(resp.Bank), len(resp.CreditCard), len(resp.InvStmt))
}

func rekeyTransaction(txn ofxgo.Transaction, preset domain.Preset) (domain.RawRow, error) {
	date := txn.DtPosted.Time
	if date.IsZero() {
		date = txn.DtUser.Time
	}
	if date.IsZero() {
		return nil, fmt.Errorf("transaction %s has no posted or user date", txn.FiTID.String())
	}

	description := strings.TrimSpace(txn.Name.String())
	if description == "" {
		description = strings.TrimSpace(txn.Memo.String())
	}

	row := domain.RawRow{
		preset.DateColumn:        date.Format(preset.DateLayout),
		preset.AmountColumn:      txn.TrnAmt.String(),
		preset.DescriptionColumn: description,
	}

	if preset.TypeRule != nil && preset.TypeRule.Kind == domain.TypeRuleColumn {
		row[preset.TypeRule.Column] = ofxTypeHint(txn)
	}

	return row, nil
}

// ofxTypeHint maps the statement's transaction type onto the debit/credit
// vocabulary the column rule understands. Types that carry no direction, such
// as CHECK or POS, are left for the amount sign to disambiguate.
func ofxTypeHint(txn ofxgo.Transaction) string {
	switch txn.TrnType {
	case ofxgo.TrnTypeCredit, ofxgo.TrnTypeDep, ofxgo.TrnTypeInt:
		return "credit"
	case ofxgo.TrnTypeDebit, ofxgo.TrnTypeFee, ofxgo.TrnTypePayment:
		return "debit"
	default:
		return ""
	}
}
