package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
)

// Service provisions and maintains wallets. It never touches balances.
type Service struct {
	store  ledger.Store
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(store ledger.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create provisions a wallet with a 0.00 balance.
func (s *Service) Create(ctx context.Context, input CreateInput) (ledger.Wallet, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := input.validate(); err != nil {
		return ledger.Wallet{}, err
	}

	w, err := s.store.CreateWallet(ctx, ledger.WalletInput{
		Name:            input.Name,
		ClientFirstname: input.ClientFirstname,
		ClientSurname:   input.ClientSurname,
	})
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("create wallet: %w", err)
	}
	s.logger.Info("wallet created", slog.Int64("wallet_id", w.ID), slog.String("name", w.Name))
	return w, nil
}

// Get retrieves a wallet including its balance.
func (s *Service) Get(ctx context.Context, id int64) (ledger.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// List returns every wallet without balances.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	out := make([]Summary, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, Summary{
			ID:              w.ID,
			Name:            w.Name,
			ClientFirstname: w.ClientFirstname,
			ClientSurname:   w.ClientSurname,
		})
	}
	return out, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (ledger.Wallet, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if err := input.validate(); err != nil {
		return ledger.Wallet{}, err
	}

	w, err := s.store.UpdateWallet(ctx, id, ledger.WalletPatch{
		Name:            input.Name,
		ClientFirstname: input.ClientFirstname,
		ClientSurname:   input.ClientSurname,
	})
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("update wallet %d: %w", id, err)
	}
	return w, nil
}

// Delete removes the wallet and, with it, its operations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteWallet(ctx, id); err != nil {
		return fmt.Errorf("delete wallet %d: %w", id, err)
	}
	s.logger.Info("wallet deleted", slog.Int64("wallet_id", id))
	return nil
}
