package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/utils"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

var transactionHeaders = []string{
	"Transaction Type", "Date", "Amount", "Quantity", "Cost of Goods",
	"Payment Method", "Item Name", "Party Name", "Expense Category", "Description",
}

var transactionTypeLabels = map[string]models.TransactionType{
	"sale":                  models.TxSale,
	"penjualan":             models.TxSale,
	"purchase":              models.TxPurchase,
	"pembelian":             models.TxPurchase,
	"expense":               models.TxOperatingExpense,
	"operating_expense":     models.TxOperatingExpense,
	"beban":                 models.TxOperatingExpense,
	"owner_draw":            models.TxOwnerDraw,
	"prive":                 models.TxOwnerDraw,
	"capital_contribution":  models.TxCapitalContribution,
	"setoran modal":         models.TxCapitalContribution,
	"modal":                 models.TxCapitalContribution,
	"receivable_settlement": models.TxReceivableSettlement,
	"pelunasan piutang":     models.TxReceivableSettlement,
	"payable_settlement":    models.TxPayableSettlement,
	"pelunasan utang":       models.TxPayableSettlement,
}

// ParseTransactionType resolves an import label such as "Penjualan" or "SALE".
func ParseTransactionType(label string) (models.TransactionType, bool) {
	norm := strings.ToLower(strings.TrimSpace(label))
	if t, ok := transactionTypeLabels[norm]; ok {
		return t, true
	}
	t := models.TransactionType(strings.ToUpper(strings.ReplaceAll(norm, " ", "_")))
	return t, t.IsRaw()
}

// ParseTransactionFile reads an import workbook. Rows that fail validation
// are reported with their row number; the rest are returned ready to record.
func (s *ExcelService) ParseTransactionFile(r io.Reader) (*models.TransactionImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain at least header row and one data row")
	}
	if len(rows[0]) < 3 || !strings.EqualFold(strings.TrimSpace(rows[0][0]), transactionHeaders[0]) {
		return nil, fmt.Errorf("invalid header format. Expected columns: %v", transactionHeaders)
	}

	result := &models.TransactionImportResult{
		ValidRows:        []models.TransactionImportRow{},
		ValidationErrors: []models.TransactionImportError{},
		ImportTime:       time.Now(),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		// The template's instruction block starts after a blank row.
		if len(row) == 0 || strings.TrimSpace(getCellValue(row, 0)) == "" {
			break
		}
		result.TotalRows++

		rowNum := i + 1
		parsed, rowErrors := s.parseTransactionRow(rowNum, row)
		if len(rowErrors) > 0 {
			result.ValidationErrors = append(result.ValidationErrors, rowErrors...)
			result.ErrorCount++
			continue
		}
		result.ValidRows = append(result.ValidRows, parsed)
		result.ValidCount++
	}

	return result, nil
}

func (s *ExcelService) parseTransactionRow(rowNum int, row []string) (models.TransactionImportRow, []models.TransactionImportError) {
	var errs []models.TransactionImportError
	addErr := func(field, value, msg string) {
		errs = append(errs, models.TransactionImportError{Row: rowNum, Field: field, Value: value, Message: msg})
	}

	typeLabel := getCellValue(row, 0)
	txType, ok := ParseTransactionType(typeLabel)
	if !ok {
		addErr("transaction_type", typeLabel, "unknown transaction type")
	}

	dateStr := getCellValue(row, 1)
	date, err := parseDate(dateStr)
	if err != nil {
		addErr("date", dateStr, "date must be YYYY-MM-DD")
	}

	amountStr := getCellValue(row, 2)
	amount, err := parseAmount(amountStr)
	if err != nil {
		addErr("amount", amountStr, "amount must be a number")
	} else if !amount.IsPositive() {
		addErr("amount", amountStr, "amount must be greater than 0")
	}

	quantityStr := getCellValue(row, 3)
	quantity := 0
	if strings.TrimSpace(quantityStr) != "" {
		quantity, err = strconv.Atoi(strings.TrimSpace(quantityStr))
		if err != nil || quantity < 0 {
			addErr("quantity", quantityStr, "quantity must be a whole number of at least 0")
		}
	}

	cogsStr := getCellValue(row, 4)
	cogs, err := parseAmount(cogsStr)
	if err != nil || cogs.IsNegative() {
		addErr("cost_of_goods", cogsStr, "cost of goods must be a number of at least 0")
	}

	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(getCellValue(row, 5))))
	switch method {
	case "":
		method = models.PaymentCash
	case models.PaymentCash, models.PaymentBank, models.PaymentCredit:
	default:
		addErr("payment_method", string(method), "payment method must be CASH, BANK or CREDIT")
	}

	if len(errs) > 0 {
		return models.TransactionImportRow{}, errs
	}
	return models.TransactionImportRow{
		Row:  rowNum,
		Type: txType,
		Request: models.TransactionRequest{
			Date:            date.Format("2006-01-02"),
			Amount:          amount,
			Quantity:        quantity,
			CostOfGoods:     cogs,
			PaymentMethod:   method,
			ItemName:        getCellValue(row, 6),
			PartyName:       getCellValue(row, 7),
			ExpenseCategory: getCellValue(row, 8),
			Description:     getCellValue(row, 9),
		},
	}, nil
}

// GenerateTransactionTemplate writes the import template with sample rows.
func (s *ExcelService) GenerateTransactionTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	writeHeader(f, sheetName, transactionHeaders, "#E0E0E0")

	sampleData := [][]interface{}{
		{"CAPITAL_CONTRIBUTION", "2024-01-02", 50000000, 0, 0, "BANK", "", "Pemilik", "", "Setoran modal awal"},
		{"PURCHASE", "2024-01-05", 12000000, 40, 0, "CREDIT", "Kemeja", "CV Sumber Rejeki", "", "Pembelian stok"},
		{"SALE", "2024-01-10", 4500000, 10, 3000000, "CASH", "Kemeja", "Toko Melati", "", "Penjualan tunai"},
		{"SALE", "2024-01-12", 2700000, 6, 1800000, "CREDIT", "Kemeja", "Toko Mawar", "", "Penjualan kredit"},
		{"OPERATING_EXPENSE", "2024-01-15", 750000, 0, 0, "CASH", "", "PLN", "listrik", "Tagihan listrik"},
		{"RECEIVABLE_SETTLEMENT", "2024-01-20", 2700000, 0, 0, "BANK", "", "Toko Mawar", "", "Pelunasan piutang"},
		{"PAYABLE_SETTLEMENT", "2024-01-25", 6000000, 0, 0, "BANK", "", "CV Sumber Rejeki", "", "Cicilan utang"},
		{"OWNER_DRAW", "2024-01-31", 1000000, 0, 0, "CASH", "", "Pemilik", "", "Prive"},
	}
	for rowIdx, rowData := range sampleData {
		writeRow(f, sheetName, rowIdx+2, rowData)
	}

	widths := []float64{24, 14, 16, 10, 16, 16, 20, 22, 18, 30}
	setWidths(f, sheetName, widths)

	instructionsStartRow := len(sampleData) + 4
	instructions := []string{
		"Instructions:",
		"1. Transaction Type: SALE, PURCHASE, OPERATING_EXPENSE, OWNER_DRAW, CAPITAL_CONTRIBUTION, RECEIVABLE_SETTLEMENT, PAYABLE_SETTLEMENT",
		"2. Date: YYYY-MM-DD",
		"3. Amount: greater than 0",
		"4. Quantity: units moved in or out of stock (SALE and PURCHASE only)",
		"5. Cost of Goods: cost of the units sold (SALE only)",
		"6. Payment Method: CASH, BANK or CREDIT",
		"7. Expense Category: perlengkapan, listrik, sewa, gaji or lainnya (OPERATING_EXPENSE only)",
		"",
		"Note: Do not modify the header row. Leave one empty row before these instructions.",
	}
	for i, instruction := range instructions {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", instructionsStartRow+i), instruction)
	}
	instructionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F8FF"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", instructionsStartRow), fmt.Sprintf("A%d", instructionsStartRow), instructionStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

// GenerateImportErrorReport lists the rejected rows of an import.
func (s *ExcelService) GenerateImportErrorReport(result *models.TransactionImportResult, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row Number", "Field", "Error Message", "Invalid Value"}
	writeHeader(f, sheetName, headers, "#FFE6E6")

	for rowIdx, e := range result.ValidationErrors {
		writeRow(f, sheetName, rowIdx+2, []interface{}{e.Row, e.Field, e.Message, e.Value})
	}
	setWidths(f, sheetName, []float64{12, 20, 50, 25})

	summaryStartRow := len(result.ValidationErrors) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Total Rows Processed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), result.TotalRows)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Recorded:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), result.Recorded)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Errors Found:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), result.ErrorCount)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	return f.Write(w)
}

// ExportTrialBalance writes the neraca saldo.
func (s *ExcelService) ExportTrialBalance(report accounting.TrialBalanceReport, title string, w io.Writer) error {
	rows := make([][]interface{}, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		rows = append(rows, []interface{}{r.AccountCode, r.AccountName, money(r.Debit), money(r.Credit)})
	}
	rows = append(rows, []interface{}{"", "Total", money(report.TotalDebit), money(report.TotalCredit)})
	return s.exportReport(w, reportSheet{
		name:     "Neraca Saldo",
		title:    title,
		headers:  []string{"Kode Akun", "Nama Akun", "Debit", "Kredit"},
		rows:     rows,
		widths:   []float64{12, 34, 20, 20},
		moneyCol: 3,
		footer: []string{
			fmt.Sprintf("Selisih: %s", utils.FormatRupiah(report.Difference)),
			fmt.Sprintf("Seimbang: %s", yesNo(report.Balanced)),
		},
	})
}

// ExportWorksheet writes the ten-column neraca lajur.
func (s *ExcelService) ExportWorksheet(ws accounting.Worksheet, title string, w io.Writer) error {
	rows := make([][]interface{}, 0, len(ws.Rows)+2)
	for _, r := range ws.Rows {
		name := r.AccountName
		if r.Unclassified {
			name += " (?)"
		}
		rows = append(rows, []interface{}{
			r.AccountCode, name,
			money(r.TrialDebit), money(r.TrialCredit),
			money(r.AdjustmentDebit), money(r.AdjustmentCredit),
			money(r.AdjustedDebit), money(r.AdjustedCredit),
			money(r.IncomeStatementDebit), money(r.IncomeStatementCredit),
			money(r.BalanceSheetDebit), money(r.BalanceSheetCredit),
		})
	}
	t := ws.Totals
	rows = append(rows, []interface{}{
		"", "Total",
		money(t.TrialDebit), money(t.TrialCredit),
		money(t.AdjustmentDebit), money(t.AdjustmentCredit),
		money(t.AdjustedDebit), money(t.AdjustedCredit),
		money(t.IncomeStatementDebit), money(t.IncomeStatementCredit),
		money(t.BalanceSheetDebit), money(t.BalanceSheetCredit),
	})
	footer := []string{
		fmt.Sprintf("Laba/Rugi: %s", utils.FormatRupiah(ws.ProfitOrLoss)),
		fmt.Sprintf("Seimbang: %s", yesNo(ws.Balanced())),
	}
	if len(ws.UnclassifiedAccounts) > 0 {
		footer = append(footer, "(?) Akun tidak terklasifikasi: "+strings.Join(ws.UnclassifiedAccounts, ", "))
	}
	return s.exportReport(w, reportSheet{
		name:  "Neraca Lajur",
		title: title,
		headers: []string{
			"Kode Akun", "Nama Akun",
			"NS Debit", "NS Kredit", "AJP Debit", "AJP Kredit",
			"NSSP Debit", "NSSP Kredit", "LR Debit", "LR Kredit",
			"Neraca Debit", "Neraca Kredit",
		},
		rows:     rows,
		widths:   []float64{12, 34, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16},
		moneyCol: 3,
		footer:   footer,
	})
}

// ExportIncomeStatement writes the laba rugi statement.
func (s *ExcelService) ExportIncomeStatement(is accounting.IncomeStatementReport, title string, w io.Writer) error {
	var rows [][]interface{}
	section := func(label string, lines []accounting.StatementLine, total decimal.Decimal) {
		rows = append(rows, []interface{}{label, ""})
		for _, l := range lines {
			rows = append(rows, []interface{}{"    " + l.AccountName, money(l.Amount)})
		}
		rows = append(rows, []interface{}{"Total " + label, money(total)})
	}
	section("Pendapatan", is.Revenue, is.RevenueTotal)
	rows = append(rows, []interface{}{"Harga Pokok Penjualan", money(is.COGS)})
	rows = append(rows, []interface{}{"Laba Kotor", money(is.GrossProfit)})
	section("Beban Operasional", is.OperatingExpenses, is.OpexTotal)
	section("Beban Lain-lain", is.OtherExpenses, is.OtherExpenseTotal)
	rows = append(rows, []interface{}{"Laba Bersih", money(is.NetIncome)})
	return s.exportReport(w, reportSheet{
		name:     "Laba Rugi",
		title:    title,
		headers:  []string{"Keterangan", "Jumlah"},
		rows:     rows,
		widths:   []float64{40, 22},
		moneyCol: 2,
		footer:   []string{fmt.Sprintf("Margin laba bersih: %s%%", is.MarginPct.StringFixed(2))},
	})
}

// ExportGeneralJournal writes the jurnal umum, one line per entry.
func (s *ExcelService) ExportGeneralJournal(gj accounting.GeneralJournal, title string, w io.Writer) error {
	var rows [][]interface{}
	for _, b := range gj.Batches {
		for _, e := range b.Entries {
			rows = append(rows, []interface{}{
				e.Date.Format("2006-01-02"), string(e.TransactionType), e.TransactionID,
				e.AccountCode, e.AccountName, e.Description, money(e.Debit), money(e.Credit),
			})
		}
	}
	rows = append(rows, []interface{}{"", "", "", "", "Total", "", money(gj.TotalDebit), money(gj.TotalCredit)})
	return s.exportReport(w, reportSheet{
		name:     "Jurnal Umum",
		title:    title,
		headers:  []string{"Tanggal", "Jenis", "No. Transaksi", "Kode Akun", "Nama Akun", "Keterangan", "Debit", "Kredit"},
		rows:     rows,
		widths:   []float64{12, 22, 16, 10, 28, 34, 18, 18},
		moneyCol: 7,
	})
}

// ExportAccounts writes the custom chart-of-accounts rows.
func (s *ExcelService) ExportAccounts(accounts []models.Account, w io.Writer) error {
	rows := make([][]interface{}, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []interface{}{a.AccountCode, a.AccountName, a.AccountType, a.NormalBalance, a.Role, a.Aliases, yesNo(a.IsActive)})
	}
	return s.exportReport(w, reportSheet{
		name:    "Accounts",
		headers: []string{"Account Code", "Account Name", "Account Type", "Normal Balance", "Role", "Aliases", "Is Active"},
		rows:    rows,
		widths:  []float64{15, 40, 15, 15, 22, 40, 10},
	})
}

type reportSheet struct {
	name    string
	title   string
	headers []string
	rows    [][]interface{}
	widths  []float64
	// moneyCol is the first 1-based column holding amounts; 0 means none.
	moneyCol int
	footer   []string
}

func (s *ExcelService) exportReport(w io.Writer, rs reportSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rs.name)
	if err != nil {
		return err
	}

	headerRow := 1
	if rs.title != "" {
		f.SetCellValue(rs.name, "A1", rs.title)
		titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
		f.SetCellStyle(rs.name, "A1", "A1", titleStyle)
		headerRow = 3
	}

	for i, header := range rs.headers {
		f.SetCellValue(rs.name, fmt.Sprintf("%s%d", getColumnName(i), headerRow), header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(rs.name, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", getColumnName(len(rs.headers)-1), headerRow), headerStyle)

	for rowIdx, values := range rs.rows {
		writeRow(f, rs.name, headerRow+1+rowIdx, values)
	}
	lastRow := headerRow + len(rs.rows)

	if rs.moneyCol > 0 && len(rs.rows) > 0 {
		numFmt := "#,##0.00;(#,##0.00)"
		moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		f.SetCellStyle(rs.name,
			fmt.Sprintf("%s%d", getColumnName(rs.moneyCol-1), headerRow+1),
			fmt.Sprintf("%s%d", getColumnName(len(rs.headers)-1), lastRow),
			moneyStyle)
	}

	for i, line := range rs.footer {
		f.SetCellValue(rs.name, fmt.Sprintf("A%d", lastRow+2+i), line)
	}
	setWidths(f, rs.name, rs.widths)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	return f.Write(w)
}

// Helper functions
func writeHeader(f *excelize.File, sheetName string, headers []string, color string) {
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", getColumnName(i)), header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)
}

func writeRow(f *excelize.File, sheetName string, row int, values []interface{}) {
	for colIdx, value := range values {
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", getColumnName(colIdx), row), value)
	}
}

func setWidths(f *excelize.File, sheetName string, widths []float64) {
	for i, width := range widths {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, width)
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func yesNo(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}

func getCellValue(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// parseAmount reads a money cell. Both 1,250,000.50 and 1.250.000,50 are
// accepted; "-" and blanks are zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), ".")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}

// parseDate reads a date cell: an Excel date serial or one of the text
// layouts ParseDate accepts.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
