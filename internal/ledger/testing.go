package ledger

import "github.com/congo-pay/wallet_ledger/internal/money"

// SeedBalance is a test helper that sets a wallet balance directly when using
// the in-memory store. It writes no operation.
func SeedBalance(s Store, walletID int64, amount money.Amount) {
	mem, ok := s.(*inMemoryStore)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if rec, exists := mem.wallets[walletID]; exists {
		rec.wallet.Balance = amount
	}
}

// TotalBalance sums every wallet balance held by the in-memory store.
func TotalBalance(s Store) money.Amount {
	total := money.Zero
	mem, ok := s.(*inMemoryStore)
	if !ok {
		return total
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	for _, rec := range mem.wallets {
		total = total.Add(rec.wallet.Balance)
	}
	return total
}
