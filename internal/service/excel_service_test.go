package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
)

func TestTemplateRoundTrip(t *testing.T) {
	svc := NewExcelService()
	var buf bytes.Buffer
	require.NoError(t, svc.GenerateTransactionTemplate(&buf))

	result, err := svc.ParseTransactionFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalRows)
	assert.Equal(t, 8, result.ValidCount)
	assert.Empty(t, result.ValidationErrors)

	first := result.ValidRows[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, models.TxCapitalContribution, first.Type)
	assert.Equal(t, models.PaymentBank, first.Request.PaymentMethod)
	assert.Equal(t, "2024-01-02", first.Request.Date)
	assertDecimal(t, "50000000", first.Request.Amount)

	ctx := context.Background()
	store := newStore()
	txs := NewTransactionService(store, nil, testLogger())
	txs.ImportTransactions(ctx, result, "importer", RecordOptions{})
	assert.Equal(t, 8, result.Recorded)
	assert.Equal(t, 0, result.ErrorCount)

	stock, err := store.GetStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, stock)
}

func TestParseTransactionFile_ReportsBadRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	writeRow(f, sheet, 1, []interface{}{"Transaction Type", "Date", "Amount"})
	writeRow(f, sheet, 2, []interface{}{"Penjualan", "10/01/2024", "1.250.000", "2", "", "tunai"})
	writeRow(f, sheet, 3, []interface{}{"Hibah", "2024-01-11", "100"})
	writeRow(f, sheet, 4, []interface{}{"Prive", "2024-01-12", "500.000,50"})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := NewExcelService().ParseTransactionFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.ValidCount)
	assert.Equal(t, 2, result.ErrorCount)

	fields := map[string]int{}
	for _, e := range result.ValidationErrors {
		fields[e.Field] = e.Row
	}
	assert.Equal(t, 2, fields["payment_method"])
	assert.Equal(t, 3, fields["transaction_type"])

	require.Len(t, result.ValidRows, 1)
	assert.Equal(t, models.TxOwnerDraw, result.ValidRows[0].Type)
	assertDecimal(t, "500000.50", result.ValidRows[0].Request.Amount)
}

func TestParseTransactionFile_RejectsForeignHeader(t *testing.T) {
	f := excelize.NewFile()
	writeRow(f, "Sheet1", 1, []interface{}{"Kode", "Nama", "Saldo"})
	writeRow(f, "Sheet1", 2, []interface{}{"1-1000", "Kas", "100"})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := NewExcelService().ParseTransactionFile(&buf)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1,250,000.50": "1250000.5",
		"1.250.000,50": "1250000.5",
		"1.250.000":    "1250000",
		"1250,5":       "1250.5",
		"Rp 2.500.000": "2500000",
		"-":            "0",
		"":             "0",
		"750000":       "750000",
	}
	for in, want := range cases {
		got, err := parseAmount(in)
		require.NoError(t, err, in)
		assertDecimal(t, want, got, in)
	}

	_, err := parseAmount("seribu")
	assert.Error(t, err)
}

func TestExportTrialBalance(t *testing.T) {
	report := accounting.TrialBalanceReport{
		Rows: []accounting.AccountTotals{
			{AccountCode: "1-1000", AccountName: "Kas", Debit: dec("1000000"), Credit: dec("0")},
			{AccountCode: "3-1000", AccountName: "Modal Pemilik", Debit: dec("0"), Credit: dec("1000000")},
		},
		TotalDebit:  dec("1000000"),
		TotalCredit: dec("1000000"),
		Difference:  dec("0"),
		Balanced:    true,
	}

	var buf bytes.Buffer
	require.NoError(t, NewExcelService().ExportTrialBalance(report, "Neraca Saldo Maret 2024", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Neraca Saldo"}, f.GetSheetList())
	title, _ := f.GetCellValue("Neraca Saldo", "A1")
	assert.Equal(t, "Neraca Saldo Maret 2024", title)
	header, _ := f.GetCellValue("Neraca Saldo", "B3")
	assert.Equal(t, "Nama Akun", header)
	name, _ := f.GetCellValue("Neraca Saldo", "B4")
	assert.Equal(t, "Kas", name)
	total, _ := f.GetCellValue("Neraca Saldo", "B6")
	assert.Equal(t, "Total", total)
	balanced, _ := f.GetCellValue("Neraca Saldo", "A9")
	assert.Equal(t, "Seimbang: Ya", balanced)
}

func TestParseTransactionFile_ReadsDateCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	writeRow(f, sheet, 1, []interface{}{"Transaction Type", "Date", "Amount"})
	writeRow(f, sheet, 2, []interface{}{"Prive", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 25000})
	writeRow(f, sheet, 3, []interface{}{"Prive", "04/03/2024", 25000})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := NewExcelService().ParseTransactionFile(&buf)
	require.NoError(t, err)
	require.Empty(t, result.ValidationErrors)
	require.Len(t, result.ValidRows, 2)
	assert.Equal(t, "2024-03-15", result.ValidRows[0].Request.Date)
	assert.Equal(t, "2024-03-04", result.ValidRows[1].Request.Date)
}

func TestParseDate_DayFirstOnly(t *testing.T) {
	now := time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2024-04-03": time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		"03/04/2024": time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		"03-04-2024": time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		"3 Apr 2024": time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		"":           time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q: got %s", in, got)
	}

	_, err := ParseDate("03-04-24", now)
	assert.True(t, accounting.IsValidationError(err))
}
