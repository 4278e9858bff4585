package vault

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// SolanaVault executes transfers against the on-chain token ledger. The
// engine's derived vault authorities map to PDAs of the settlement program;
// the vault holds the operator key that co-signs vault-outgoing transfers.
type SolanaVault struct {
	client    *rpc.Client
	limiter   *rate.Limiter
	programID solana.PublicKey
	operator  solana.PrivateKey
	keys      map[string]*solana.PrivateKey // user address -> signing key, when custodied
}

// NewSolanaVault builds a vault against SOLANA_RPC with the given settlement
// program and operator key. rps bounds RPC submissions per second.
func NewSolanaVault(programID string, operator solana.PrivateKey, rps int) (*SolanaVault, error) {
	endpoint := os.Getenv("SOLANA_RPC")
	if endpoint == "" {
		return nil, fmt.Errorf("SOLANA_RPC environment variable is not set")
	}
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	return &SolanaVault{
		client:    rpc.New(endpoint),
		limiter:   rate.NewLimiter(rate.Limit(rps), rps),
		programID: program,
		operator:  operator,
		keys:      make(map[string]*solana.PrivateKey),
	}, nil
}

// RegisterKey adds a custodied signing key for a user address.
func (v *SolanaVault) RegisterKey(address string, key *solana.PrivateKey) {
	v.keys[address] = key
}

// DeriveVaultAddress resolves the PDA behind a derived vault authority.
func (v *SolanaVault) DeriveVaultAddress(seed, poolKey string) (solana.PublicKey, uint8, error) {
	pool, err := solana.PublicKeyFromBase58(poolKey)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("invalid pool key: %w", err)
	}
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(seed), pool.Bytes()}, v.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive vault address: %w", err)
	}
	return addr, bump, nil
}

func (v *SolanaVault) EnsureAccount(ctx context.Context, owner, mint string) error {
	ownerPub, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return fmt.Errorf("invalid owner: %w", err)
	}
	mintPub, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(ownerPub, mintPub)
	if err != nil {
		return err
	}
	info, _ := v.client.GetAccountInfo(ctx, ata)
	if info != nil && info.Value != nil {
		return nil
	}

	payer := v.operator.PublicKey()
	ix := associatedtokenaccount.NewCreateInstruction(payer, ownerPub, mintPub).Build()
	if err := v.submit(ctx, []solana.Instruction{ix}, payer); err != nil {
		return fmt.Errorf("create token account for %s: %w", owner, err)
	}
	log.Infof("Created token account %s for owner %s", ata, owner)
	return nil
}

func (v *SolanaVault) Transfer(ctx context.Context, req TransferRequest) error {
	if req.Amount == 0 {
		return nil
	}
	mintPub, err := solana.PublicKeyFromBase58(req.Mint)
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}

	source, signer, err := v.resolveSource(req)
	if err != nil {
		return err
	}
	destOwner, err := solana.PublicKeyFromBase58(req.To)
	if err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(destOwner, mintPub)
	if err != nil {
		return err
	}

	ix := token.NewTransferInstruction(req.Amount, source, destATA, signer.PublicKey(), nil).Build()
	if err := v.submit(ctx, []solana.Instruction{ix}, signer.PublicKey()); err != nil {
		return fmt.Errorf("transfer %d of %s from %s to %s: %w", req.Amount, req.Mint, req.From, req.To, err)
	}
	return nil
}

// resolveSource maps the request's source account and authority to the token
// account to debit and the key that signs for it.
func (v *SolanaVault) resolveSource(req TransferRequest) (solana.PublicKey, solana.PrivateKey, error) {
	mintPub, err := solana.PublicKeyFromBase58(req.Mint)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("invalid mint: %w", err)
	}

	if req.Authority.IsVault() {
		if req.Authority.VaultAddress() != req.From {
			return solana.PublicKey{}, nil, fmt.Errorf("%w: vault authority does not match source %s", ErrUnauthorized, req.From)
		}
		addr, _, err := v.DeriveVaultAddress(req.Authority.vaultSeed, req.Authority.vaultKey)
		if err != nil {
			return solana.PublicKey{}, nil, err
		}
		// The program verifies the PDA; the operator co-signs the submission.
		return addr, v.operator, nil
	}

	if req.Authority.Signer() != req.From {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: signer %s does not own source %s", ErrUnauthorized, req.Authority.Signer(), req.From)
	}
	key, ok := v.keys[req.From]
	if !ok || key == nil {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: no signing key for %s", ErrUnauthorized, req.From)
	}
	ownerPub, err := solana.PublicKeyFromBase58(req.From)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("invalid source: %w", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(ownerPub, mintPub)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return ata, *key, nil
}

func (v *SolanaVault) submit(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) error {
	if err := v.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	bh, err := v.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return err
	}
	tx, err := solana.NewTransaction(instructions, bh.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return err
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(v.operator.PublicKey()) {
			return &v.operator
		}
		for _, k := range v.keys {
			if k != nil && key.Equals(k.PublicKey()) {
				return k
			}
		}
		return nil
	}); err != nil {
		return err
	}

	start := time.Now()
	sig, err := v.client.SendTransaction(ctx, tx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"signature": sig.String(),
		"elapsed":   time.Since(start).String(),
	}).Info("Submitted vault transaction")
	return nil
}
