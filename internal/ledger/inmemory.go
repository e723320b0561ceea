package ledger

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/congo-pay/wallet_ledger/internal/money"
)

type walletRecord struct {
	wallet     Wallet
	lock       chan struct{}
	operations []Operation
	lastOpAt   time.Time
}

type inMemoryStore struct {
	mu           sync.RWMutex
	wallets      map[int64]*walletRecord
	names        map[string]int64
	nextWalletID int64
	nextOpID     atomic.Int64
	now          func() time.Time
}

// NewInMemory creates a concurrency-safe in-memory store used in development
// and tests. Readers only ever observe committed state.
func NewInMemory() Store {
	return &inMemoryStore{
		wallets: make(map[int64]*walletRecord),
		names:   make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *inMemoryStore) GetWallet(_ context.Context, id int64) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.wallets[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return rec.wallet, nil
}

func (s *inMemoryStore) ListWallets(_ context.Context) ([]Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Wallet, 0, len(s.wallets))
	for _, rec := range s.wallets {
		out = append(out, rec.wallet)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *inMemoryStore) CreateWallet(_ context.Context, in WalletInput) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[in.Name]; taken {
		return Wallet{}, fmt.Errorf("wallet name %q: %w", in.Name, ErrConflict)
	}
	s.nextWalletID++
	w := Wallet{
		ID:              s.nextWalletID,
		Name:            in.Name,
		ClientFirstname: in.ClientFirstname,
		ClientSurname:   in.ClientSurname,
		Balance:         money.Zero,
	}
	s.wallets[w.ID] = &walletRecord{wallet: w, lock: make(chan struct{}, 1)}
	s.names[w.Name] = w.ID
	return w, nil
}

func (s *inMemoryStore) UpdateWallet(_ context.Context, id int64, patch WalletPatch) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.wallets[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	if patch.Name != nil && *patch.Name != rec.wallet.Name {
		if _, taken := s.names[*patch.Name]; taken {
			return Wallet{}, fmt.Errorf("wallet name %q: %w", *patch.Name, ErrConflict)
		}
		delete(s.names, rec.wallet.Name)
		s.names[*patch.Name] = id
		rec.wallet.Name = *patch.Name
	}
	if patch.ClientFirstname != nil {
		rec.wallet.ClientFirstname = *patch.ClientFirstname
	}
	if patch.ClientSurname != nil {
		rec.wallet.ClientSurname = *patch.ClientSurname
	}
	return rec.wallet, nil
}

// DeleteWallet waits for any in-flight unit of work holding the wallet, then
// removes it together with its operations.
func (s *inMemoryStore) DeleteWallet(ctx context.Context, id int64) error {
	s.mu.RLock()
	rec, ok := s.wallets[id]
	s.mu.RUnlock()
	if !ok {
		return ErrWalletNotFound
	}
	if err := acquire(ctx, rec.lock); err != nil {
		return err
	}
	defer release(rec.lock)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.wallets[id]; !ok || cur != rec {
		return ErrWalletNotFound
	}
	delete(s.wallets, id)
	delete(s.names, rec.wallet.Name)
	return nil
}

func (s *inMemoryStore) ListOperations(_ context.Context, walletID int64, filter OperationFilter) ([]Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	out := make([]Operation, 0, len(rec.operations))
	for _, op := range rec.operations {
		if filter.Kind != "" && op.Kind != filter.Kind {
			continue
		}
		out = append(out, op)
	}

	switch filter.Order {
	case OrderDateAsc:
		sort.SliceStable(out, func(i, j int) bool { return lessByDate(out[i], out[j]) })
	case OrderDateDesc:
		sort.SliceStable(out, func(i, j int) bool { return lessByDate(out[j], out[i]) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out, nil
}

func lessByDate(a, b Operation) bool {
	if a.Date.Equal(b.Date) {
		return a.ID < b.ID
	}
	return a.Date.Before(b.Date)
}

func (s *inMemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &inMemoryTx{
		store:  s,
		locked: make(map[int64]*walletRecord),
		deltas: make(map[int64]money.Amount),
		lastAt: make(map[int64]time.Time),
	}
	defer tx.releaseAll()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type inMemoryTx struct {
	store  *inMemoryStore
	locked map[int64]*walletRecord
	order  []int64
	deltas map[int64]money.Amount
	ops    []Operation
	lastAt map[int64]time.Time
}

func (t *inMemoryTx) LockWallets(ctx context.Context, ids ...int64) error {
	wanted := slices.Clone(ids)
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)

	for _, id := range wanted {
		if _, held := t.locked[id]; held {
			continue
		}
		t.store.mu.RLock()
		rec, ok := t.store.wallets[id]
		t.store.mu.RUnlock()
		if !ok {
			return fmt.Errorf("wallet %d: %w", id, ErrWalletNotFound)
		}
		if err := acquire(ctx, rec.lock); err != nil {
			return err
		}
		t.store.mu.RLock()
		cur, ok := t.store.wallets[id]
		t.store.mu.RUnlock()
		if !ok || cur != rec {
			release(rec.lock)
			return fmt.Errorf("wallet %d: %w", id, ErrWalletNotFound)
		}
		t.locked[id] = rec
		t.order = append(t.order, id)
	}
	return nil
}

func (t *inMemoryTx) AdjustBalance(_ context.Context, walletID int64, delta money.Amount) (money.Amount, error) {
	rec, ok := t.locked[walletID]
	if !ok {
		return money.Amount{}, fmt.Errorf("wallet %d: %w", walletID, errWalletNotLocked)
	}
	t.store.mu.RLock()
	committed := rec.wallet.Balance
	t.store.mu.RUnlock()

	pending := t.deltas[walletID].Add(delta)
	next := committed.Add(pending)
	if next.GreaterThanMax() {
		return money.Amount{}, fmt.Errorf("wallet %d: %w", walletID, ErrBalanceLimit)
	}
	t.deltas[walletID] = pending
	return next, nil
}

// CreateOperation dates the operation now. The wallet lock is held until
// commit, so dates per wallet never go backwards.
func (t *inMemoryTx) CreateOperation(_ context.Context, kind Kind, walletID int64, amount money.Amount) (Operation, error) {
	rec, ok := t.locked[walletID]
	if !ok {
		return Operation{}, fmt.Errorf("wallet %d: %w", walletID, errWalletNotLocked)
	}
	if !kind.Valid() {
		return Operation{}, fmt.Errorf("unknown operation kind %q", kind)
	}
	if err := amount.ValidateTransferable(); err != nil {
		return Operation{}, err
	}

	t.store.mu.RLock()
	last := rec.lastOpAt
	date := t.store.now()
	t.store.mu.RUnlock()
	if pending, ok := t.lastAt[walletID]; ok && pending.After(last) {
		last = pending
	}
	if date.Before(last) {
		date = last
	}
	t.lastAt[walletID] = date

	op := Operation{
		ID:       t.store.nextOpID.Add(1),
		Kind:     kind,
		WalletID: walletID,
		Amount:   amount,
		Date:     date,
	}
	t.ops = append(t.ops, op)
	return op, nil
}

// commit publishes staged deltas and operations in one step under the store
// write lock.
func (t *inMemoryTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, delta := range t.deltas {
		rec := t.locked[id]
		rec.wallet.Balance = rec.wallet.Balance.Add(delta)
	}
	for _, op := range t.ops {
		rec := t.locked[op.WalletID]
		rec.lastOpAt = op.Date
		rec.operations = append(rec.operations, op)
	}
}

func (t *inMemoryTx) releaseAll() {
	for i := len(t.order) - 1; i >= 0; i-- {
		release(t.locked[t.order[i]].lock)
	}
	t.order = nil
}

func acquire(ctx context.Context, lock chan struct{}) error {
	select {
	case lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(lock chan struct{}) {
	<-lock
}
