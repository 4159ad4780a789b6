package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cesaralej/agastar/internal/core"
)

// SQLiteStore implements Store and SyncStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// storeErr maps driver failures into the domain error taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, core.ErrStoreUnavailable, err)
}

const transactionColumns = `id, amount_cents, type, account, category, date,
	effective_date, description, comment, is_credit_card_payment, recurring_id`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx           core.Transaction
		date, effDay string
		ccPayment    int
	)
	err := row.Scan(&tx.ID, &tx.Amount.Cents, &tx.Type, &tx.Account, &tx.Category,
		&date, &effDay, &tx.Description, &tx.Comment, &ccPayment, &tx.RecurringID)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}
	if tx.EffectiveDate, err = core.ParseDate(effDay); err != nil {
		return core.Transaction{}, err
	}
	tx.IsCreditCardPayment = ccPayment != 0
	return tx, nil
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_cents, type, account, category,
			date, effective_date, description, comment, is_credit_card_payment, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Amount.Cents, tx.Type, tx.Account, tx.Category,
		tx.Date.String(), tx.EffectiveDate.String(), tx.Description, tx.Comment,
		boolToInt(tx.IsCreditCardPayment), tx.RecurringID)
	if err != nil {
		return core.Transaction{}, storeErr("create transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	return tx, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, storeErr("get transaction", err)
	}
	return tx, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	applyTransactionPatch(&tx, patch)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE transactions SET amount_cents = ?, type = ?, account = ?, category = ?,
			date = ?, effective_date = ?, description = ?, comment = ?,
			is_credit_card_payment = ?, recurring_id = ?,
			updated_at = CURRENT_TIMESTAMP, sync_status = 'pending', synced_at = NULL
		WHERE user_id = ? AND id = ?`,
		tx.Amount.Cents, tx.Type, tx.Account, tx.Category,
		tx.Date.String(), tx.EffectiveDate.String(), tx.Description, tx.Comment,
		boolToInt(tx.IsCreditCardPayment), tx.RecurringID, userID, id)
	if err != nil {
		return core.Transaction{}, storeErr("update transaction", err)
	}
	return tx, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storeErr("delete transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete transaction: %w", core.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = ? ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txs, nil
}

func (s *SQLiteStore) UpsertBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if b.Category.IsReserved() {
		return core.Budget{}, core.ErrReservedCategory
	}
	b.ID = core.BudgetID(b.Category, b.Month, b.Year)
	b.LastUpdated = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category, month, year, amount_cents, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			last_updated = excluded.last_updated`,
		b.ID, userID, b.Category, int(b.Month), b.Year, b.Amount.Cents, b.LastUpdated)
	if err != nil {
		return core.Budget{}, storeErr("upsert budget", err)
	}
	return b, nil
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storeErr("delete budget", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete budget: %w", core.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string, year int, month time.Month) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, month, year, amount_cents, last_updated
		FROM budgets WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, int(month))
	if err != nil {
		return nil, storeErr("list budgets", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			b        core.Budget
			monthInt int
		)
		if err := rows.Scan(&b.ID, &b.Category, &monthInt, &b.Year, &b.Amount.Cents, &b.LastUpdated); err != nil {
			return nil, storeErr("scan budget", err)
		}
		b.Month = time.Month(monthInt)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list budgets", err)
	}
	return budgets, nil
}

const recurringColumns = `id, description, amount_cents, due_day, account, last_payment_date, last_updated`

func scanRecurring(row interface{ Scan(...any) error }) (core.Recurring, error) {
	var (
		r        core.Recurring
		lastPaid string
	)
	err := row.Scan(&r.ID, &r.Description, &r.Amount.Cents, &r.DueDay, &r.Account, &lastPaid, &r.LastUpdated)
	if err != nil {
		return core.Recurring{}, err
	}
	if r.LastPaymentDate, err = core.ParseDate(lastPaid); err != nil {
		return core.Recurring{}, err
	}
	return r, nil
}

func (s *SQLiteStore) CreateRecurring(ctx context.Context, userID string, r core.Recurring) (core.Recurring, error) {
	r.ID = uuid.NewString()
	r.LastUpdated = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurrings (id, user_id, description, amount_cents, due_day, account, last_payment_date, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, userID, r.Description, r.Amount.Cents, r.DueDay, r.Account,
		r.LastPaymentDate.String(), r.LastUpdated)
	if err != nil {
		return core.Recurring{}, storeErr("create recurring", err)
	}
	return r, nil
}

func (s *SQLiteStore) GetRecurring(ctx context.Context, userID, id string) (core.Recurring, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recurringColumns+`
		FROM recurrings WHERE user_id = ? AND id = ?`, userID, id)
	r, err := scanRecurring(row)
	if err != nil {
		return core.Recurring{}, storeErr("get recurring", err)
	}
	return r, nil
}

func (s *SQLiteStore) UpdateRecurring(ctx context.Context, userID, id string, patch core.RecurringPatch) (core.Recurring, error) {
	r, err := s.GetRecurring(ctx, userID, id)
	if err != nil {
		return core.Recurring{}, err
	}
	applyRecurringPatch(&r, patch)
	if err := r.Validate(); err != nil {
		return core.Recurring{}, err
	}
	r.LastUpdated = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE recurrings SET description = ?, amount_cents = ?, due_day = ?,
			account = ?, last_payment_date = ?, last_updated = ?
		WHERE user_id = ? AND id = ?`,
		r.Description, r.Amount.Cents, r.DueDay, r.Account,
		r.LastPaymentDate.String(), r.LastUpdated, userID, id)
	if err != nil {
		return core.Recurring{}, storeErr("update recurring", err)
	}
	return r, nil
}

func (s *SQLiteStore) DeleteRecurring(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recurrings WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storeErr("delete recurring", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete recurring: %w", core.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListRecurrings(ctx context.Context, userID string) ([]core.Recurring, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recurringColumns+`
		FROM recurrings WHERE user_id = ? ORDER BY due_day ASC`, userID)
	if err != nil {
		return nil, storeErr("list recurrings", err)
	}
	defer rows.Close()

	var items []core.Recurring
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, storeErr("scan recurring", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list recurrings", err)
	}
	return items, nil
}

// GetPendingSyncTransactions returns transactions awaiting export,
// oldest first.
func (s *SQLiteStore) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, created_at
		FROM transactions WHERE sync_status = 'pending'
		ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, storeErr("get pending sync transactions", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, storeErr("scan pending sync transaction", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get pending sync transactions", err)
	}
	return pending, nil
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return storeErr("mark transaction synced", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (s *SQLiteStore) MarkSyncError(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = 'error'
		WHERE id = ?`, id)
	if err != nil {
		return storeErr("mark transaction sync error", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func applyTransactionPatch(tx *core.Transaction, p core.TransactionPatch) {
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Account != nil {
		tx.Account = *p.Account
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.EffectiveDate != nil {
		tx.EffectiveDate = *p.EffectiveDate
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Comment != nil {
		tx.Comment = *p.Comment
	}
	if p.IsCreditCardPayment != nil {
		tx.IsCreditCardPayment = *p.IsCreditCardPayment
	}
	if p.RecurringID != nil {
		tx.RecurringID = *p.RecurringID
	}
}

func applyRecurringPatch(r *core.Recurring, p core.RecurringPatch) {
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.DueDay != nil {
		r.DueDay = *p.DueDay
	}
	if p.Account != nil {
		r.Account = *p.Account
	}
	if p.LastPaymentDate != nil {
		r.LastPaymentDate = *p.LastPaymentDate
	}
}
