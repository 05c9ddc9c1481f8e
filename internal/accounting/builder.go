package accounting

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// TransactionFields carries everything a builder may need from a business
// event. Builders read only the fields relevant to their type.
type TransactionFields struct {
	TransactionID   string
	Date            time.Time
	Amount          decimal.Decimal
	CostOfGoods     decimal.Decimal
	PaymentMethod   models.PaymentMethod
	ItemName        string
	PartyName       string
	ExpenseCategory string
	Description     string
	Lines           []models.OpeningBalanceLine
}

// FieldsFromRaw maps a stored business transaction to builder fields.
func FieldsFromRaw(raw models.RawTransaction) TransactionFields {
	return TransactionFields{
		TransactionID:   raw.TransactionID(),
		Date:            raw.Date,
		Amount:          raw.Amount,
		CostOfGoods:     raw.CostOfGoods,
		PaymentMethod:   raw.PaymentMethod,
		ItemName:        raw.ItemName,
		PartyName:       raw.PartyName,
		ExpenseCategory: raw.ExpenseCategory,
		Description:     raw.Description,
	}
}

// ExpenseCategory groups operating expenses for account lookup.
type ExpenseCategory string

const (
	ExpenseSupplies  ExpenseCategory = "supplies"
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseRent      ExpenseCategory = "rent"
	ExpensePayroll   ExpenseCategory = "payroll"
	ExpenseOther     ExpenseCategory = "other"
)

var expenseCategoryNames = map[string]ExpenseCategory{
	"supplies":        ExpenseSupplies,
	"perlengkapan":    ExpenseSupplies,
	"atk":             ExpenseSupplies,
	"utilities":       ExpenseUtilities,
	"utility":         ExpenseUtilities,
	"listrik":         ExpenseUtilities,
	"air":             ExpenseUtilities,
	"listrik dan air": ExpenseUtilities,
	"listrik & air":   ExpenseUtilities,
	"rent":            ExpenseRent,
	"sewa":            ExpenseRent,
	"payroll":         ExpensePayroll,
	"salary":          ExpensePayroll,
	"gaji":            ExpensePayroll,
	"upah":            ExpensePayroll,
	"other":           ExpenseOther,
	"lainnya":         ExpenseOther,
	"lain-lain":       ExpenseOther,
}

var expenseAccounts = map[ExpenseCategory]string{
	ExpenseSupplies:  AccBebanPerlengkapan,
	ExpenseUtilities: AccBebanListrikAir,
	ExpenseRent:      AccBebanSewa,
	ExpensePayroll:   AccBebanGaji,
	ExpenseOther:     AccBebanLain,
}

// ParseExpenseCategory resolves an Indonesian or English category label.
// Unknown and empty labels fall back to ExpenseOther.
func ParseExpenseCategory(label string) ExpenseCategory {
	if c, ok := expenseCategoryNames[normalizeName(label)]; ok {
		return c
	}
	return ExpenseOther
}

// ExpenseAccount returns the expense account for a category label.
func ExpenseAccount(label string) string {
	return expenseAccounts[ParseExpenseCategory(label)]
}

// BuildEntries maps one business transaction to a balanced journal batch.
// It never writes; ids, batch ids and timestamps are assigned by the store.
func BuildEntries(txType models.TransactionType, f TransactionFields, actor string) ([]models.JournalEntry, error) {
	if f.Date.IsZero() {
		return nil, invalid("date", ReasonMissing)
	}
	if txType != models.TxOpeningBalance && !f.Amount.IsPositive() {
		return nil, invalid("amount", ReasonNonPositiveAmount)
	}

	b := batch{fields: f, txType: txType, actor: actor}
	switch txType {
	case models.TxSale:
		return b.sale()
	case models.TxPurchase:
		return b.purchase()
	case models.TxOperatingExpense:
		return b.operatingExpense()
	case models.TxOwnerDraw:
		return b.ownerDraw()
	case models.TxCapitalContribution:
		return b.capitalContribution()
	case models.TxReceivableSettlement:
		return b.receivableSettlement()
	case models.TxPayableSettlement:
		return b.payableSettlement()
	case models.TxOpeningBalance:
		return b.openingBalance()
	}
	return nil, invalid("transaction_type", fmt.Sprintf("%s: %q", ReasonUnsupported, txType))
}

type batch struct {
	fields  TransactionFields
	txType  models.TransactionType
	actor   string
	entries []models.JournalEntry
}

func (b *batch) debit(account string, amount decimal.Decimal, desc string) {
	b.add(account, amount, decimal.Zero, desc)
}

func (b *batch) credit(account string, amount decimal.Decimal, desc string) {
	b.add(account, decimal.Zero, amount, desc)
}

func (b *batch) add(account string, debit, credit decimal.Decimal, desc string) {
	def := DefaultChart().MustLookup(account)
	b.entries = append(b.entries, models.JournalEntry{
		Date:            b.fields.Date,
		AccountName:     def.Name,
		AccountCode:     def.Code,
		Debit:           debit,
		Credit:          credit,
		Description:     desc,
		TransactionType: b.txType,
		TransactionID:   b.fields.TransactionID,
		Actor:           b.actor,
	})
}

// MaxDescriptionLength is the widest description the ledger tables hold,
// counted in characters.
const MaxDescriptionLength = 500

func (b *batch) describe(format string, args ...interface{}) string {
	d := strings.TrimSpace(b.fields.Description)
	if d == "" {
		d = strings.TrimSpace(fmt.Sprintf(format, args...))
	}
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		d = string([]rune(d)[:MaxDescriptionLength])
	}
	return d
}

// settlementAccount is the account money moves through for a payment method.
func settlementAccount(method models.PaymentMethod, allowCredit bool, creditAccount string) (string, error) {
	switch method {
	case models.PaymentCash, "":
		return AccKas, nil
	case models.PaymentBank:
		return AccBank, nil
	case models.PaymentCredit:
		if allowCredit {
			return creditAccount, nil
		}
	}
	return "", invalid("payment_method", fmt.Sprintf("%s: %q", ReasonUnsupported, method))
}

func (b *batch) sale() ([]models.JournalEntry, error) {
	f := b.fields
	if f.CostOfGoods.IsNegative() {
		return nil, invalid("cost_of_goods", ReasonNegativeAmount)
	}
	account, err := settlementAccount(f.PaymentMethod, true, AccPiutangUsaha)
	if err != nil {
		return nil, err
	}
	var desc string
	if f.PaymentMethod == models.PaymentCredit {
		desc = b.describe("Penjualan kredit %s kepada %s", f.ItemName, f.PartyName)
	} else {
		desc = b.describe("Penjualan tunai %s", f.ItemName)
	}
	b.debit(account, f.Amount, desc)
	b.credit(AccPenjualan, f.Amount, desc)
	if f.CostOfGoods.IsPositive() {
		b.debit(AccHPP, f.CostOfGoods, desc)
		b.credit(AccPersediaan, f.CostOfGoods, desc)
	}
	return b.entries, nil
}

func (b *batch) purchase() ([]models.JournalEntry, error) {
	f := b.fields
	account, err := settlementAccount(f.PaymentMethod, true, AccUtangUsaha)
	if err != nil {
		return nil, err
	}
	desc := b.describe("Pembelian %s dari %s", f.ItemName, f.PartyName)
	b.debit(AccPersediaan, f.Amount, desc)
	b.credit(account, f.Amount, desc)
	return b.entries, nil
}

func (b *batch) operatingExpense() ([]models.JournalEntry, error) {
	f := b.fields
	account, err := settlementAccount(f.PaymentMethod, true, AccUtangUsaha)
	if err != nil {
		return nil, err
	}
	expense := ExpenseAccount(f.ExpenseCategory)
	desc := b.describe("Pembayaran %s", strings.ToLower(expense))
	b.debit(expense, f.Amount, desc)
	b.credit(account, f.Amount, desc)
	return b.entries, nil
}

func (b *batch) ownerDraw() ([]models.JournalEntry, error) {
	account, err := settlementAccount(b.fields.PaymentMethod, false, "")
	if err != nil {
		return nil, err
	}
	desc := b.describe("Pengambilan prive pemilik")
	b.debit(AccPrive, b.fields.Amount, desc)
	b.credit(account, b.fields.Amount, desc)
	return b.entries, nil
}

func (b *batch) capitalContribution() ([]models.JournalEntry, error) {
	account, err := settlementAccount(b.fields.PaymentMethod, false, "")
	if err != nil {
		return nil, err
	}
	desc := b.describe("Setoran modal pemilik")
	b.debit(account, b.fields.Amount, desc)
	b.credit(AccModalPemilik, b.fields.Amount, desc)
	return b.entries, nil
}

func (b *batch) receivableSettlement() ([]models.JournalEntry, error) {
	account, err := settlementAccount(b.fields.PaymentMethod, false, "")
	if err != nil {
		return nil, err
	}
	desc := b.describe("Pelunasan piutang dari %s", b.fields.PartyName)
	b.debit(account, b.fields.Amount, desc)
	b.credit(AccPiutangUsaha, b.fields.Amount, desc)
	return b.entries, nil
}

func (b *batch) payableSettlement() ([]models.JournalEntry, error) {
	account, err := settlementAccount(b.fields.PaymentMethod, false, "")
	if err != nil {
		return nil, err
	}
	desc := b.describe("Pelunasan utang kepada %s", b.fields.PartyName)
	b.debit(AccUtangUsaha, b.fields.Amount, desc)
	b.credit(account, b.fields.Amount, desc)
	return b.entries, nil
}

// openingBalance takes caller-supplied lines. Names are folded onto the
// chart when known and kept verbatim otherwise.
func (b *batch) openingBalance() ([]models.JournalEntry, error) {
	lines := b.fields.Lines
	if len(lines) < 2 {
		return nil, invalid("lines", "at least two lines required")
	}
	desc := b.describe("Saldo awal")
	chart := DefaultChart()
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		if strings.TrimSpace(l.AccountName) == "" {
			return nil, invalid(field+".account_name", ReasonMissing)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, invalid(field, ReasonNegativeAmount)
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return nil, invalid(field, "exactly one of debit or credit must be positive")
		}
		cls := chart.Classify(l.AccountCode, l.AccountName)
		code := l.AccountCode
		if code == "" {
			code = cls.Code
		}
		b.entries = append(b.entries, models.JournalEntry{
			Date:            b.fields.Date,
			AccountName:     cls.Name,
			AccountCode:     code,
			Debit:           l.Debit,
			Credit:          l.Credit,
			Description:     desc,
			TransactionType: b.txType,
			TransactionID:   b.fields.TransactionID,
			Actor:           b.actor,
		})
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, invalid("lines", ReasonUnbalanced)
	}
	return b.entries, nil
}

// BatchTotals returns the debit and credit totals of a batch.
func BatchTotals(entries []models.JournalEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether a batch debits and credits the same total.
func IsBalanced(entries []models.JournalEntry) bool {
	d, c := BatchTotals(entries)
	return d.Equal(c)
}
