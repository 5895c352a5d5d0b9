package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory stand-in for Postgres. Transactions are serialised and
// roll back by restoring a snapshot taken when they began.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	seq      int64
	accounts map[int64]account.Account
	entries  map[int64]entry.Entry
	presets  map[int64]preset.Transaction
	events   []history.Event
	outbox   []outbox.Message

	// appendErr, when set, is returned by every history append
	appendErr error
}

type memSnapshot struct {
	seq      int64
	accounts map[int64]account.Account
	entries  map[int64]entry.Entry
	presets  map[int64]preset.Transaction
	events   []history.Event
	outbox   []outbox.Message
}

func newMemDB() *memDB {
	return &memDB{
		accounts: map[int64]account.Account{},
		entries:  map[int64]entry.Entry{},
		presets:  map[int64]preset.Transaction{},
	}
}

func (db *memDB) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	if err := fn(nil); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()

	s := memSnapshot{
		seq:      db.seq,
		accounts: make(map[int64]account.Account, len(db.accounts)),
		entries:  make(map[int64]entry.Entry, len(db.entries)),
		presets:  make(map[int64]preset.Transaction, len(db.presets)),
		events:   append([]history.Event(nil), db.events...),
		outbox:   append([]outbox.Message(nil), db.outbox...),
	}
	for k, v := range db.accounts {
		s.accounts[k] = v
	}
	for k, v := range db.entries {
		s.entries[k] = v
	}
	for k, v := range db.presets {
		s.presets[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seq = s.seq
	db.accounts = s.accounts
	db.entries = s.entries
	db.presets = s.presets
	db.events = s.events
	db.outbox = s.outbox
}

func (db *memDB) nextID() int64 {
	db.seq++
	return db.seq
}

// eventsFor returns the account's events in append order
func (db *memDB) eventsFor(accountID int64) []history.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []history.Event
	for _, e := range db.events {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) eventCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.events)
}

func (db *memDB) preset(id int64) preset.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.presets[id]
}

func (db *memDB) amount(accountID int64) decimal.Decimal {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.accounts[accountID].Amount
}

// accounts

type memAccounts struct{ db *memDB }

func (r memAccounts) Create(ctx context.Context, acc *account.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	acc.ID = r.db.nextID()
	r.db.accounts[acc.ID] = *acc
	return nil
}

func (r memAccounts) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	acc, ok := r.db.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return &acc, nil
}

func (r memAccounts) List(ctx context.Context) ([]*account.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*account.Account
	for _, acc := range r.db.accounts {
		acc := acc
		out = append(out, &acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccounts) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal, version int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	acc, ok := r.db.accounts[id]
	if !ok || acc.Version != version {
		return account.ErrConcurrentModification{AccountID: id}
	}
	acc.Amount = acc.Amount.Add(delta)
	acc.Version++
	r.db.accounts[id] = acc
	return nil
}

func (r memAccounts) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	return r.GetByID(ctx, id)
}

func (r memAccounts) HasReferences(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.entries {
		if e.AccountID == id {
			return true, nil
		}
	}
	for _, e := range r.db.events {
		if e.AccountID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memAccounts) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.accounts, id)
	return nil
}

func (r memAccounts) WithTx(tx pgx.Tx) account.Repository { return r }

// ledger entries

type memEntries struct{ db *memDB }

func (r memEntries) Create(ctx context.Context, e *entry.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e.ID = r.db.nextID()
	r.db.entries[e.ID] = *e
	return nil
}

func (r memEntries) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.entries[id]
	if !ok {
		return nil, entry.ErrEntryNotFound{ID: id}
	}
	return &e, nil
}

func (r memEntries) LockForUpdate(ctx context.Context, id int64) (*entry.Entry, error) {
	return r.GetByID(ctx, id)
}

func (r memEntries) Update(ctx context.Context, e *entry.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.entries[e.ID]; !ok {
		return entry.ErrEntryNotFound{ID: e.ID}
	}
	r.db.entries[e.ID] = *e
	return nil
}

func (r memEntries) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.entries[id]; !ok {
		return entry.ErrEntryNotFound{ID: id}
	}
	delete(r.db.entries, id)
	return nil
}

func (r memEntries) List(ctx context.Context, filter entry.Filter, limit, offset int) ([]*entry.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entry.Entry
	for _, e := range r.db.entries {
		e := e
		if filter.AccountID != nil && e.AccountID != *filter.AccountID {
			continue
		}
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memEntries) Count(ctx context.Context, filter entry.Filter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

func (r memEntries) ListDueTemplates(ctx context.Context, asOf time.Time) ([]*entry.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entry.Entry
	for _, e := range r.db.entries {
		e := e
		if e.IsDueTemplate(asOf) {
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEntries) WithTx(tx pgx.Tx) entry.Repository { return r }

// preset transactions

type memPresets struct{ db *memDB }

func (r memPresets) Create(ctx context.Context, t *preset.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.nextID()
	r.db.presets[t.ID] = *t
	return nil
}

func (r memPresets) GetByID(ctx context.Context, id int64) (*preset.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.presets[id]
	if !ok {
		return nil, preset.ErrPresetNotFound{ID: id}
	}
	return &t, nil
}

func (r memPresets) List(ctx context.Context, status *preset.Status, limit, offset int) ([]*preset.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*preset.Transaction
	for _, t := range r.db.presets {
		t := t
		if status == nil || t.Status == *status {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPresets) Count(ctx context.Context, status *preset.Status) (int64, error) {
	list, _ := r.List(ctx, status, 0, 0)
	return int64(len(list)), nil
}

func (r memPresets) ListDue(ctx context.Context, asOf time.Time) ([]*preset.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*preset.Transaction
	for _, t := range r.db.presets {
		t := t
		if t.Status == preset.StatusPending && !t.ExecutionDate.After(asOf) {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExecutionDate.Equal(out[j].ExecutionDate) {
			return out[i].ExecutionDate.Before(out[j].ExecutionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memPresets) Claim(ctx context.Context, id int64, asOf time.Time) (*preset.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.presets[id]
	if !ok || t.Status != preset.StatusPending || t.ExecutionDate.After(asOf) {
		return nil, nil
	}
	t.Status = preset.StatusExecuting
	r.db.presets[id] = t
	return &t, nil
}

func (r memPresets) UpdateStatus(ctx context.Context, id int64, from, to preset.Status) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.presets[id]
	if !ok || t.Status != from || !preset.CanTransition(from, to) {
		return preset.ErrInvalidTransition{ID: id, From: from, To: to}
	}
	t.Status = to
	r.db.presets[id] = t
	return nil
}

func (r memPresets) Update(ctx context.Context, t *preset.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.presets[t.ID] = *t
	return nil
}

func (r memPresets) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.presets, id)
	return nil
}

func (r memPresets) WithTx(tx pgx.Tx) preset.Repository { return r }

// listingPresets runs afterList once the due rows have been read, standing in
// for writers that commit between a sweep's listing and its claims
type listingPresets struct {
	memPresets
	afterList func()
}

func (r listingPresets) ListDue(ctx context.Context, asOf time.Time) ([]*preset.Transaction, error) {
	due, err := r.memPresets.ListDue(ctx, asOf)
	if r.afterList != nil {
		r.afterList()
	}
	return due, err
}

// history

type memHistory struct{ db *memDB }

func (r memHistory) Append(ctx context.Context, event *history.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.appendErr != nil {
		return r.db.appendErr
	}
	event.ID = r.db.nextID()
	r.db.events = append(r.db.events, *event)
	return nil
}

func (r memHistory) List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*history.Event
	for i := len(r.db.events) - 1; i >= 0; i-- {
		e := r.db.events[i]
		if filter.AccountID != nil && e.AccountID != *filter.AccountID {
			continue
		}
		if filter.ChangeType != nil && e.ChangeType != *filter.ChangeType {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r memHistory) Count(ctx context.Context, filter history.Filter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

func (r memHistory) ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error) {
	var out []*history.Event
	for _, e := range r.db.eventsFor(accountID) {
		e := e
		out = append(out, &e)
	}
	return out, nil
}

func (r memHistory) WithTx(tx pgx.Tx) history.Repository { return r }

// outbox

type memOutbox struct{ db *memDB }

func (r memOutbox) Create(ctx context.Context, m *outbox.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m.ID = r.db.nextID()
	r.db.outbox = append(r.db.outbox, *m)
	return nil
}

func (r memOutbox) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	return nil, nil
}

func (r memOutbox) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return nil
}

func (r memOutbox) IncrementAttempts(ctx context.Context, id int64) error { return nil }

func (r memOutbox) Delete(ctx context.Context, id int64) error { return nil }

func (r memOutbox) WithTx(tx pgx.Tx) outbox.Repository { return r }
