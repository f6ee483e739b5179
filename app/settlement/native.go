package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
)

var ErrInsufficientBalance = errors.New("settlement: insufficient balance")

// Native holds the native-coin balances of the host ledger, stored in the
// shared billing namespace so a charge commits atomically with the billing
// writes that caused it.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

// Transfer moves amount from one address to the other inside txn.
func (n *Native) Transfer(ctx context.Context, txn *storage.Txn, from, to string, amount uint64) error {
	fromBalance, err := storage.ReadCount(ctx, txn, storage.BalanceKey(from))
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, fromBalance, amount)
	}
	if from == to {
		// Same key on both sides: the funds check applies, the balance
		// does not move.
		return nil
	}

	toBalance, err := storage.ReadCount(ctx, txn, storage.BalanceKey(to))
	if err != nil {
		return err
	}

	txn.Set(storage.BalanceKey(from), storage.EncodeCount(fromBalance-amount))
	txn.Set(storage.BalanceKey(to), storage.EncodeCount(toBalance+amount))
	return nil
}

// Credit mints amount onto an address. Backs the dev faucet and the tests.
func (n *Native) Credit(ctx context.Context, store storage.Backend, address string, amount uint64) error {
	txn := storage.Begin(store)
	balance, err := storage.ReadCount(ctx, txn, storage.BalanceKey(address))
	if err != nil {
		return err
	}
	txn.Set(storage.BalanceKey(address), storage.EncodeCount(balance+amount))
	return txn.Commit(ctx)
}

// Balance reads an address's balance; unknown addresses hold zero.
func (n *Native) Balance(ctx context.Context, r storage.Reader, address string) (uint64, error) {
	return storage.ReadCount(ctx, r, storage.BalanceKey(address))
}
