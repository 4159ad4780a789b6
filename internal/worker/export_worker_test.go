package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cesaralej/agastar/internal/amqp"
	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/storage"
)

type fakeStore struct {
	txs     map[string]core.Transaction
	pending []storage.PendingSyncTransaction
	synced  []string
	errored []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: make(map[string]core.Transaction)}
}

func (f *fakeStore) GetTransaction(_ context.Context, _, id string) (core.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (f *fakeStore) GetPendingSyncTransactions(_ context.Context, limit int) ([]storage.PendingSyncTransaction, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkSynced(_ context.Context, id string) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeStore) MarkSyncError(_ context.Context, id string) error {
	f.errored = append(f.errored, id)
	return nil
}

type fakeAppender struct {
	rows []core.Transaction
	err  error
}

func (f *fakeAppender) Append(_ context.Context, _ string, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, tx)
	return fmt.Sprintf("Transactions!A%d:H%d", len(f.rows), len(f.rows)), nil
}

func TestHandleExportMessage(t *testing.T) {
	store := newFakeStore()
	store.txs["tx-1"] = core.Transaction{
		ID: "tx-1", Amount: core.Money{Cents: 1200}, Type: core.Expense,
		Account: core.Savings, Category: core.CategoryFood,
		Date: core.NewDate(2025, time.May, 2), Description: "lunch",
	}
	appender := &fakeAppender{}
	w := NewExportWorker(store, appender, 10)

	msg := amqp.NewExportMessage("tx-1", "u1")
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.rows) != 1 || appender.rows[0].ID != "tx-1" {
		t.Fatalf("rows = %+v", appender.rows)
	}
	if len(store.synced) != 1 || store.synced[0] != "tx-1" {
		t.Fatalf("synced = %v", store.synced)
	}
}

func TestHandleExportMessageMissingTransaction(t *testing.T) {
	store := newFakeStore()
	w := NewExportWorker(store, &fakeAppender{}, 10)

	err := w.HandleExportMessage(context.Background(), amqp.NewExportMessage("gone", "u1"))
	if err == nil {
		t.Fatal("expected error for missing transaction")
	}
	if len(store.errored) != 1 || store.errored[0] != "gone" {
		t.Fatalf("errored = %v", store.errored)
	}
}

func TestHandleExportMessageAppendFailure(t *testing.T) {
	store := newFakeStore()
	store.txs["tx-1"] = core.Transaction{ID: "tx-1", Amount: core.Money{Cents: 100}}
	appender := &fakeAppender{err: errors.New("quota exceeded")}
	w := NewExportWorker(store, appender, 10)

	if err := w.HandleExportMessage(context.Background(), amqp.NewExportMessage("tx-1", "u1")); err == nil {
		t.Fatal("expected append error")
	}
	if len(store.errored) != 1 {
		t.Fatalf("errored = %v", store.errored)
	}
	if len(store.synced) != 0 {
		t.Fatalf("synced = %v", store.synced)
	}
}

func TestStartupCheckProcessesBacklog(t *testing.T) {
	store := newFakeStore()
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("tx-%d", i)
		store.txs[id] = core.Transaction{ID: id, Amount: core.Money{Cents: int64(i * 100)}}
		store.pending = append(store.pending, storage.PendingSyncTransaction{ID: id, UserID: "u1"})
	}
	appender := &fakeAppender{}
	w := NewExportWorker(store, appender, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(appender.rows) != 3 || len(store.synced) != 3 {
		t.Fatalf("rows=%d synced=%d", len(appender.rows), len(store.synced))
	}
}
