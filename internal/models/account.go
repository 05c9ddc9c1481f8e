package models

import "time"

// Account is a custom chart-of-accounts row extending the built-in chart.
type Account struct {
	ID            int       `db:"id" json:"id"`
	AccountCode   string    `db:"account_code" json:"account_code"`
	AccountName   string    `db:"account_name" json:"account_name"`
	AccountType   string    `db:"account_type" json:"account_type"`     // Asset, Liability, Equity, Revenue, COGS, Expense
	NormalBalance string    `db:"normal_balance" json:"normal_balance"` // debit, credit
	Role          string    `db:"role" json:"role"`
	Aliases       string    `db:"aliases" json:"aliases"` // comma separated
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type AccountRequest struct {
	AccountCode   string `json:"account_code" validate:"required,numeric,max=20"`
	AccountName   string `json:"account_name" validate:"required,max=255"`
	AccountType   string `json:"account_type" validate:"required,oneof=Asset Liability Equity Revenue COGS Expense"`
	NormalBalance string `json:"normal_balance" validate:"omitempty,oneof=debit credit"`
	Role          string `json:"role"`
	Aliases       string `json:"aliases"`
	IsActive      bool   `json:"is_active"`
}
