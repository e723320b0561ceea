package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/wallet_ledger/internal/money"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOverflow     = "22003"
	pgCheckViolation      = "23514"
)

// PostgresStore persists wallets and operations in PostgreSQL. Balances are
// NUMERIC(9,2) and travel as text so no float conversion ever happens.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const walletColumns = `id, name, client_firstname, client_surname, balance::text`

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		balance string
	)
	if err := row.Scan(&w.ID, &w.Name, &w.ClientFirstname, &w.ClientSurname, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	amount, err := money.ParseBalance(balance)
	if err != nil {
		return Wallet{}, fmt.Errorf("wallet %d balance: %w", w.ID, err)
	}
	w.Balance = amount
	return w, nil
}

// GetWallet fetches a wallet by id.
func (s *PostgresStore) GetWallet(ctx context.Context, id int64) (Wallet, error) {
	return scanWallet(s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
}

// ListWallets returns every wallet ordered by id.
func (s *PostgresStore) ListWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := s.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := []Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// CreateWallet inserts a wallet with a zero balance.
func (s *PostgresStore) CreateWallet(ctx context.Context, in WalletInput) (Wallet, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO wallets (name, client_firstname, client_surname)
        VALUES ($1, $2, $3) RETURNING `+walletColumns, in.Name, in.ClientFirstname, in.ClientSurname)
	w, err := scanWallet(row)
	if err != nil {
		return Wallet{}, mapPgError(err)
	}
	return w, nil
}

// UpdateWallet applies the non-nil fields of patch.
func (s *PostgresStore) UpdateWallet(ctx context.Context, id int64, patch WalletPatch) (Wallet, error) {
	row := s.db.QueryRow(ctx, `UPDATE wallets SET
            name = COALESCE($2, name),
            client_firstname = COALESCE($3, client_firstname),
            client_surname = COALESCE($4, client_surname)
        WHERE id = $1
        RETURNING `+walletColumns, id, patch.Name, patch.ClientFirstname, patch.ClientSurname)
	w, err := scanWallet(row)
	if err != nil {
		return Wallet{}, mapPgError(err)
	}
	return w, nil
}

// DeleteWallet removes the wallet; its operations go with it (ON DELETE CASCADE).
func (s *PostgresStore) DeleteWallet(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// ListOperations returns the wallet's operations, filtered and ordered.
func (s *PostgresStore) ListOperations(ctx context.Context, walletID int64, filter OperationFilter) ([]Operation, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, walletID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrWalletNotFound
	}

	var orderBy string
	switch filter.Order {
	case OrderDateAsc:
		orderBy = "created_at ASC, id ASC"
	case OrderDateDesc:
		orderBy = "created_at DESC, id DESC"
	case OrderDefault:
		orderBy = "id ASC"
	default:
		return nil, fmt.Errorf("unknown order %q", filter.Order)
	}

	query := `SELECT id, kind, wallet_id, amount::text, created_at
        FROM operations
        WHERE wallet_id = $1 AND ($2 = '' OR kind = $2)
        ORDER BY ` + orderBy

	rows, err := s.db.Query(ctx, query, walletID, string(filter.Kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := []Operation{}
	for rows.Next() {
		var (
			op     Operation
			kind   string
			amount string
			date   time.Time
		)
		if err := rows.Scan(&op.ID, &kind, &op.WalletID, &amount, &date); err != nil {
			return nil, err
		}
		op.Kind = Kind(kind)
		if op.Amount, err = money.ParseBalance(amount); err != nil {
			return nil, fmt.Errorf("operation %d amount: %w", op.ID, err)
		}
		op.Date = date.UTC()
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// WithinTx runs fn inside a READ COMMITTED transaction. Row locks taken by
// LockWallets serialise overlapping units.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) LockWallets(ctx context.Context, ids ...int64) error {
	rows, err := t.tx.Query(ctx, `SELECT id FROM wallets WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("wallet %d: %w", id, ErrWalletNotFound)
		}
	}
	return nil
}

func (t *postgresTx) AdjustBalance(ctx context.Context, walletID int64, delta money.Amount) (money.Amount, error) {
	var balance string
	err := t.tx.QueryRow(ctx, `UPDATE wallets SET balance = balance + $2::numeric
        WHERE id = $1 RETURNING balance::text`, walletID, delta.String()).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return money.Amount{}, fmt.Errorf("wallet %d: %w", walletID, ErrWalletNotFound)
		}
		return money.Amount{}, fmt.Errorf("wallet %d: %w", walletID, mapPgError(err))
	}
	return money.ParseBalance(balance)
}

func (t *postgresTx) CreateOperation(ctx context.Context, kind Kind, walletID int64, amount money.Amount) (Operation, error) {
	if !kind.Valid() {
		return Operation{}, fmt.Errorf("unknown operation kind %q", kind)
	}
	op := Operation{Kind: kind, WalletID: walletID, Amount: amount}
	err := t.tx.QueryRow(ctx, `INSERT INTO operations (kind, wallet_id, amount)
        VALUES ($1, $2, $3::numeric) RETURNING id, created_at`, string(kind), walletID, amount.String()).Scan(&op.ID, &op.Date)
	if err != nil {
		return Operation{}, mapPgError(err)
	}
	op.Date = op.Date.UTC()
	return op, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrConflict)
	case pgForeignKeyViolation:
		return ErrWalletNotFound
	case pgNumericOverflow:
		return ErrBalanceLimit
	case pgCheckViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, money.ErrInvalidAmount)
	default:
		return err
	}
}
