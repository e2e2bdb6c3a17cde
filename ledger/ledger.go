/*
Package ledger defines the fungible ledger client the controller moves value
through, and a reference implementation which keeps balances in the same
transactional state as the controller.
*/
package ledger

import (
	"errors"

	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/types"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidRecipient      = errors.New("invalid recipient")
	ErrSupplyOverflow        = errors.New("total supply overflow")
)

type (
	// Client is a single fungible ledger instance, amounts are fixed-point
	// integers with types.Decimals places.
	Client interface {
		Ref() types.LedgerRef
		Mint(to types.Address, amount int64) error
		Burn(from types.Address, amount int64) error
		Transfer(from, to types.Address, amount int64) error
		// TransferFrom moves funds of "from" on behalf of the spender, "from"
		// must have approved the spender for at least the amount.
		TransferFrom(spender, from, to types.Address, amount int64) error
		// Approve sets the allowance of the spender, zero revokes it.
		Approve(owner, spender types.Address, amount int64) error
		Allowance(owner, spender types.Address) (int64, error)
		Balance(holder types.Address) (int64, error)
		TotalSupply() (int64, error)
	}

	// Resolver returns ledger client bound to the state transaction so that
	// ledger writes commit (or are discarded) together with the caller's writes.
	Resolver interface {
		Client(tx state.Tx, ref types.LedgerRef) (Client, error)
	}
)
