package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	AccountName string `validate:"required"`
	Months      int    `validate:"required,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(sampleRequest{AccountName: "Kas", Months: 1}))

	errs := ValidateStruct(sampleRequest{})
	require.Len(t, errs, 2)
	assert.Equal(t, "account_name", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "months", errs[1].Field)
}

type transferRequest struct {
	TransactionID string `validate:"required"`
	IDCard        string `validate:"required"`
	ID            int    `validate:"required"`
	Memo          string `json:"memo_text" validate:"required"`
}

func TestValidateStructFieldNames(t *testing.T) {
	errs := ValidateStruct(transferRequest{})
	require.Len(t, errs, 4)
	assert.Equal(t, "transaction_id", errs[0].Field)
	assert.Equal(t, "id_card", errs[1].Field)
	assert.Equal(t, "id", errs[2].Field)
	assert.Equal(t, "memo_text", errs[3].Field)
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.250.000,00", FormatRupiah(decimal.NewFromInt(1250000)))
	assert.Equal(t, "(Rp 500,50)", FormatRupiah(decimal.RequireFromString("-500.5")))
}

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 25)
	assert.Equal(t, 3, meta.LastPage)
	assert.Equal(t, 11, meta.From)
	assert.Equal(t, 20, meta.To)
	assert.True(t, meta.HasMore)

	empty := CalculatePagination(1, 10, 0)
	assert.Equal(t, 0, empty.From)
	assert.False(t, empty.HasMore)
}
