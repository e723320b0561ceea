package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/money"
	"github.com/congo-pay/wallet_ledger/internal/notification"
)

// Service applies deposits and wallet-to-wallet transfers as atomic units
// against the ledger store.
type Service struct {
	store    ledger.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a payment service. notifier may be nil.
func NewService(store ledger.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// DepositResult describes the committed outcome of a deposit.
type DepositResult struct {
	WalletID    int64
	Balance     money.Amount
	OperationID int64
	CompletedAt time.Time
}

// TransferInput captures the data needed to move funds between wallets.
type TransferInput struct {
	SenderID   int64
	ReceiverID int64
	Amount     money.Amount
}

// TransferResult describes the committed outcome of a transfer.
type TransferResult struct {
	SenderBalance   money.Amount
	ReceiverBalance money.Amount
	WithdrawalID    int64
	DepositID       int64
	CompletedAt     time.Time
}

// Deposit credits amount to the wallet and records one deposit operation.
func (s *Service) Deposit(ctx context.Context, walletID int64, amount money.Amount) (DepositResult, error) {
	if err := amount.ValidateTransferable(); err != nil {
		return DepositResult{}, err
	}

	res := DepositResult{WalletID: walletID}
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if err := tx.LockWallets(ctx, walletID); err != nil {
			return err
		}
		balance, err := tx.AdjustBalance(ctx, walletID, amount)
		if err != nil {
			return err
		}
		op, err := tx.CreateOperation(ctx, ledger.KindDeposit, walletID, amount)
		if err != nil {
			return err
		}
		res.Balance = balance
		res.OperationID = op.ID
		res.CompletedAt = op.Date
		return nil
	})
	if err != nil {
		s.logRejected("deposit", err, slog.Int64("wallet_id", walletID), slog.String("amount", amount.String()))
		return DepositResult{}, fmt.Errorf("deposit to wallet %d: %w", walletID, err)
	}
	s.logger.Info("deposit committed",
		slog.Int64("wallet_id", walletID),
		slog.String("amount", amount.String()),
		slog.String("balance", res.Balance.String()),
		slog.Int64("operation_id", res.OperationID),
	)
	s.notify(ctx, notification.Event{
		Kind:         notification.KindDepositCompleted,
		WalletID:     walletID,
		Amount:       amount,
		OperationIDs: []int64{res.OperationID},
		OccurredAt:   res.CompletedAt,
	})
	return res, nil
}

// Transfer moves amount from sender to receiver. The sender is debited first
// and the resulting balance is checked inside the same unit, so concurrent
// transfers from one wallet can never overdraw it.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	if err := in.Amount.ValidateTransferable(); err != nil {
		return TransferResult{}, err
	}

	var res TransferResult
	err := s.store.WithinTx(ctx, func(tx ledger.Tx) error {
		if err := tx.LockWallets(ctx, in.SenderID, in.ReceiverID); err != nil {
			return err
		}

		senderBalance, err := tx.AdjustBalance(ctx, in.SenderID, in.Amount.Neg())
		if err != nil {
			return err
		}
		if senderBalance.IsNegative() {
			return ledger.ErrInsufficientFunds
		}

		receiverBalance, err := tx.AdjustBalance(ctx, in.ReceiverID, in.Amount)
		if err != nil {
			return err
		}
		deposit, err := tx.CreateOperation(ctx, ledger.KindDeposit, in.ReceiverID, in.Amount)
		if err != nil {
			return err
		}
		withdrawal, err := tx.CreateOperation(ctx, ledger.KindWithdrawal, in.SenderID, in.Amount)
		if err != nil {
			return err
		}

		if in.SenderID == in.ReceiverID {
			senderBalance = receiverBalance
		}
		res = TransferResult{
			SenderBalance:   senderBalance,
			ReceiverBalance: receiverBalance,
			WithdrawalID:    withdrawal.ID,
			DepositID:       deposit.ID,
			CompletedAt:     withdrawal.Date,
		}
		return nil
	})
	if err != nil {
		s.logRejected("transfer", err,
			slog.Int64("sender_id", in.SenderID),
			slog.Int64("receiver_id", in.ReceiverID),
			slog.String("amount", in.Amount.String()))
		return TransferResult{}, fmt.Errorf("transfer %d -> %d: %w", in.SenderID, in.ReceiverID, err)
	}
	s.logger.Info("transfer committed",
		slog.Int64("sender_id", in.SenderID),
		slog.Int64("receiver_id", in.ReceiverID),
		slog.String("amount", in.Amount.String()),
		slog.Int64("withdrawal_id", res.WithdrawalID),
		slog.Int64("deposit_id", res.DepositID),
	)
	s.notify(ctx, notification.Event{
		Kind:         notification.KindTransferCompleted,
		SenderID:     in.SenderID,
		ReceiverID:   in.ReceiverID,
		Amount:       in.Amount,
		OperationIDs: []int64{res.WithdrawalID, res.DepositID},
		OccurredAt:   res.CompletedAt,
	})
	return res, nil
}

func (s *Service) notify(ctx context.Context, event notification.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("notification failed", slog.String("kind", event.Kind), slog.Any("error", err))
	}
}

func (s *Service) logRejected(op string, err error, attrs ...any) {
	attrs = append(attrs, slog.Any("error", err))
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, money.ErrInvalidAmount):
		s.logger.Warn(op+" rejected", attrs...)
	default:
		s.logger.Error(op+" failed", attrs...)
	}
}
