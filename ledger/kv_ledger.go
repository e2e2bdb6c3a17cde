package ledger

import (
	"fmt"

	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/types"
	"github.com/carbonmarket/carbon-controller-go/util"
)

const keyPrefix = "ledger/"

// KVResolver resolves ledger references to KVLedger instances.
type KVResolver struct{}

func (KVResolver) Client(tx state.Tx, ref types.LedgerRef) (Client, error) {
	if err := ref.IsValid(); err != nil {
		return nil, err
	}
	return &KVLedger{tx: tx, ref: ref}, nil
}

/*
KVLedger stores balances, allowances and total supply of a single ledger in
the state transaction. Zero balances and allowances are not stored.
*/
type KVLedger struct {
	tx  state.Tx
	ref types.LedgerRef
}

var _ Client = (*KVLedger)(nil)

func (l *KVLedger) Ref() types.LedgerRef { return l.ref }

func (l *KVLedger) Mint(to types.Address, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == types.ZeroAddress {
		return ErrInvalidRecipient
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	if supply, err = util.AddInt64(supply, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrSupplyOverflow, err)
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	return l.setAmount(l.supplyKey(), supply)
}

func (l *KVLedger) Burn(from types.Address, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	supply, ok := util.SafeSub(supply, amount)
	if !ok {
		return fmt.Errorf("burning %d exceeds total supply of ledger %s", amount, l.ref)
	}
	return l.setAmount(l.supplyKey(), supply)
}

func (l *KVLedger) Transfer(from, to types.Address, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == types.ZeroAddress {
		return ErrInvalidRecipient
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	return l.credit(to, amount)
}

func (l *KVLedger) TransferFrom(spender, from, to types.Address, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(from, spender)
	if err != nil {
		return err
	}
	remaining, ok := util.SafeSub(allowance, amount)
	if !ok {
		return fmt.Errorf("%w: %s allowed %s to spend %s on ledger %s, transfer needs %s",
			ErrInsufficientAllowance, from, spender, types.FormatAmount(allowance), l.ref, types.FormatAmount(amount))
	}
	if err := l.setAmount(l.allowanceKey(from, spender), remaining); err != nil {
		return err
	}
	return l.Transfer(from, to, amount)
}

func (l *KVLedger) Approve(owner, spender types.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: allowance must not be negative", ErrInvalidAmount)
	}
	if spender == types.ZeroAddress {
		return fmt.Errorf("%w: spender is zero address", ErrInvalidRecipient)
	}
	return l.setAmount(l.allowanceKey(owner, spender), amount)
}

func (l *KVLedger) Allowance(owner, spender types.Address) (int64, error) {
	return l.getAmount(l.allowanceKey(owner, spender))
}

func (l *KVLedger) Balance(holder types.Address) (int64, error) {
	return l.getAmount(l.balanceKey(holder))
}

func (l *KVLedger) TotalSupply() (int64, error) {
	return l.getAmount(l.supplyKey())
}

func (l *KVLedger) debit(from types.Address, amount int64) error {
	balance, err := l.Balance(from)
	if err != nil {
		return err
	}
	balance, ok := util.SafeSub(balance, amount)
	if !ok {
		return fmt.Errorf("%w: %s holds less than %s on ledger %s", ErrInsufficientBalance, from, types.FormatAmount(amount), l.ref)
	}
	return l.setAmount(l.balanceKey(from), balance)
}

func (l *KVLedger) credit(to types.Address, amount int64) error {
	balance, err := l.Balance(to)
	if err != nil {
		return err
	}
	if balance, err = util.AddInt64(balance, amount); err != nil {
		return fmt.Errorf("crediting %s on ledger %s: %w", to, l.ref, err)
	}
	return l.setAmount(l.balanceKey(to), balance)
}

func (l *KVLedger) getAmount(key []byte) (int64, error) {
	var v int64
	if _, err := state.GetValue(l.tx, key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (l *KVLedger) setAmount(key []byte, v int64) error {
	if v == 0 {
		return l.tx.Delete(key)
	}
	return state.SetValue(l.tx, key, v)
}

func (l *KVLedger) balanceKey(a types.Address) []byte {
	return fmt.Appendf(nil, "%s%s/balance/%s", keyPrefix, l.ref, a.Hex())
}

func (l *KVLedger) allowanceKey(owner, spender types.Address) []byte {
	return fmt.Appendf(nil, "%s%s/allowance/%s/%s", keyPrefix, l.ref, owner.Hex(), spender.Hex())
}

func (l *KVLedger) supplyKey() []byte {
	return fmt.Appendf(nil, "%s%s/supply", keyPrefix, l.ref)
}

func checkAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d must be positive", ErrInvalidAmount, amount)
	}
	return nil
}
