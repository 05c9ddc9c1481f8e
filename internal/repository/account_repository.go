package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pinkilang/internal/models"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id,
		       account_code,
		       account_name,
		       COALESCE(account_type, '') as account_type,
		       COALESCE(normal_balance, '') as normal_balance,
		       COALESCE(role, '') as role,
		       COALESCE(aliases, '') as aliases,
		       is_active,
		       created_at,
		       updated_at`

func (r *AccountRepository) FindAll(ctx context.Context, limit, offset int, search string) ([]models.Account, int, error) {
	accounts := []models.Account{}
	var total int

	whereClause := ""
	args := []interface{}{}

	if search != "" {
		whereClause = "WHERE account_code LIKE ? OR account_name LIKE ? OR aliases LIKE ?"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM accounts %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, wrap("count accounts", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts %s ORDER BY account_code LIMIT ? OFFSET ?`, accountColumns, whereClause)
	args = append(args, limit, offset)
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, wrap("list accounts", err)
	}

	return accounts, total, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int) (*models.Account, error) {
	var account models.Account
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE id = ? LIMIT 1", accountColumns)
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, wrap("get account", err)
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (account_code, account_name, account_type, normal_balance, role, aliases, is_active)
	          VALUES (:account_code, :account_name, :account_type, :normal_balance, :role, :aliases, :is_active)`
	result, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateAccount
		}
		return wrap("create account", err)
	}
	id, _ := result.LastInsertId()
	account.ID = int(id)
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `UPDATE accounts SET account_code = :account_code, account_name = :account_name,
	          account_type = :account_type, normal_balance = :normal_balance, role = :role,
	          aliases = :aliases, is_active = :is_active
	          WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateAccount
		}
		return wrap("update account", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		if _, err := r.FindByID(ctx, account.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return wrap("delete account", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepository) GetAllActive(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE is_active = 1 ORDER BY account_code", accountColumns)
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, wrap("list active accounts", err)
	}
	return accounts, nil
}
