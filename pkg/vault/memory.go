package vault

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an in-process Transferor used in local mode and tests. It
// keeps per-account, per-mint balances and enforces the same authorization
// rule as the on-chain ledger: a vault account only releases funds to its
// derived authority, a user account only to its own signature.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64 // account -> mint -> balance
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]map[string]uint64)}
}

// Deposit credits an account directly, bypassing authorization. Test and
// bootstrap helper.
func (l *MemoryLedger) Deposit(account, mint string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(account, mint, amount)
}

// Balance returns the current balance of an account for a mint.
func (l *MemoryLedger) Balance(account, mint string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account][mint]
}

func (l *MemoryLedger) EnsureAccount(ctx context.Context, owner, mint string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[owner]; !ok {
		l.balances[owner] = make(map[string]uint64)
	}
	return nil
}

func (l *MemoryLedger) Transfer(ctx context.Context, req TransferRequest) error {
	if req.Amount == 0 {
		return nil
	}
	if err := authorize(req); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, ok := l.balances[req.From]
	if !ok || from[req.Mint] < req.Amount {
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, req.From)
		}
		return fmt.Errorf("%w: %s needs %d of %s, has %d",
			ErrInsufficientBalance, req.From, req.Amount, req.Mint, from[req.Mint])
	}

	from[req.Mint] -= req.Amount
	l.credit(req.To, req.Mint, req.Amount)
	return nil
}

func (l *MemoryLedger) credit(account, mint string, amount uint64) {
	if _, ok := l.balances[account]; !ok {
		l.balances[account] = make(map[string]uint64)
	}
	l.balances[account][mint] += amount
}

// authorize checks that the presented authority actually controls the source
// account.
func authorize(req TransferRequest) error {
	if req.Authority.IsVault() {
		if req.Authority.VaultAddress() != req.From {
			return fmt.Errorf("%w: vault authority does not match source %s", ErrUnauthorized, req.From)
		}
		return nil
	}
	if req.Authority.Signer() != req.From {
		return fmt.Errorf("%w: signer %s does not own source %s", ErrUnauthorized, req.Authority.Signer(), req.From)
	}
	return nil
}
