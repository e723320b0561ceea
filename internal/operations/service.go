package operations

import (
	"context"
	"fmt"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

// Service answers ledger history queries.
type Service struct {
	store ledger.Store
}

// NewService constructs a query service.
func NewService(store ledger.Store) *Service {
	return &Service{store: store}
}

// Query selects a wallet's history. Kinds holds every place the caller named
// a kind (path segment, query string); non-empty values must agree.
type Query struct {
	Kinds []string
	Order string
}

// List returns every operation of the wallet matching kind, sorted by order.
func (s *Service) List(ctx context.Context, walletID int64, kind, order string) ([]ledger.Operation, error) {
	return s.Find(ctx, walletID, Query{Kinds: []string{kind}, Order: order})
}

// Find is List for a Query. The wallet must exist; that is checked before
// the filters are validated.
func (s *Service) Find(ctx context.Context, walletID int64, q Query) ([]ledger.Operation, error) {
	if _, err := s.store.GetWallet(ctx, walletID); err != nil {
		return nil, fmt.Errorf("list operations of wallet %d: %w", walletID, err)
	}

	kind, err := resolveKind(q.Kinds)
	if err != nil {
		return nil, err
	}
	k, err := validation.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	o, err := validation.ParseOrder(q.Order)
	if err != nil {
		return nil, err
	}

	ops, err := s.store.ListOperations(ctx, walletID, ledger.OperationFilter{Kind: k, Order: o})
	if err != nil {
		return nil, fmt.Errorf("list operations of wallet %d: %w", walletID, err)
	}
	return ops, nil
}

func resolveKind(kinds []string) (string, error) {
	var kind string
	for _, k := range kinds {
		switch {
		case k == "" || k == kind:
		case kind == "":
			kind = k
		default:
			return "", &validation.Error{Kind: validation.ErrInvalidFilter, Details: []string{"kind given twice with different values"}}
		}
	}
	return kind, nil
}
