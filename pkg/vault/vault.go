package vault

import (
	"context"
	"errors"
	"fmt"
)

// Vault seed prefixes, one per vault kind. A vault's outgoing transfers are
// authorized by an authority derived from (seed, pool key), never by an end
// user's signature.
const (
	PurchaseVaultSeed = "purchase-vault"
	OfferVaultSeed    = "offer-vault"
	RewardPotSeed     = "reward-pot"
	StakeVaultSeed    = "farm-vault"
)

var (
	ErrInsufficientBalance = errors.New("vault: insufficient balance")
	ErrUnauthorized        = errors.New("vault: transfer not authorized")
	ErrUnknownAccount      = errors.New("vault: unknown account")
)

// Authority is the capability presented with a transfer: either a user signing
// for their own account, or a vault authority derived from a pool's identity.
// Only the settlement engine constructs vault authorities.
type Authority struct {
	signer    string
	vaultSeed string
	vaultKey  string
}

// UserAuthority authorizes transfers out of the user's own account.
func UserAuthority(address string) Authority {
	return Authority{signer: address}
}

// VaultAuthority derives the capability for a pool-owned vault.
func VaultAuthority(seed, poolKey string) Authority {
	return Authority{vaultSeed: seed, vaultKey: poolKey}
}

// IsVault reports whether this is a derived vault authority.
func (a Authority) IsVault() bool {
	return a.vaultSeed != ""
}

// Signer returns the user address for a user authority, empty for vaults.
func (a Authority) Signer() string {
	return a.signer
}

// VaultAddress returns the deterministic account address this authority
// controls. Empty for user authorities.
func (a Authority) VaultAddress() string {
	if !a.IsVault() {
		return ""
	}
	return VaultAccount(a.vaultSeed, a.vaultKey)
}

// VaultAccount returns the deterministic address of a pool's vault account.
func VaultAccount(seed, poolKey string) string {
	return fmt.Sprintf("%s:%s", seed, poolKey)
}

// TransferRequest describes one balance move between two asset accounts.
type TransferRequest struct {
	From      string
	To        string
	Mint      string
	Amount    uint64
	Authority Authority
}

// Transferor is the asset-transfer collaborator the settlement engine drives.
// A Transfer either fully moves the balance or fails with no effect; the
// engine commits ledger state only after Transfer returns nil.
type Transferor interface {
	Transfer(ctx context.Context, req TransferRequest) error
	// EnsureAccount lazily materializes the recipient's asset account.
	EnsureAccount(ctx context.Context, owner, mint string) error
}
