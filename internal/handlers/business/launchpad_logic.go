package business

import (
	"context"
	"errors"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/vault"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateLaunchPool validates the creation invariants and persists the pool.
// Every parameter except the TGE date and the phase close times is fixed for
// the pool's lifetime.
func CreateLaunchPool(p CreatePoolParams) (*models.LaunchPool, error) {
	if err := ValidateCreateParams(p); err != nil {
		return nil, err
	}

	pool := models.LaunchPool{
		Owner:                        p.Owner,
		PurchaseMint:                 p.PurchaseMint,
		PurchaseDecimals:             p.PurchaseDecimals,
		OfferedMint:                  p.OfferedMint,
		OfferedDecimals:              p.OfferedDecimals,
		OfferedRate:                  p.OfferedRate,
		TotalRaiseAmount:             p.TotalRaiseAmount,
		EarlyPoolProportion:          p.EarlyPoolProportion,
		OpenPoolProportion:           p.OpenPoolProportion,
		MaxPurchaseForKycUser:        p.MaxPurchaseForKycUser,
		MaxPurchaseForNonKycUser:     p.MaxPurchaseForNonKycUser,
		EarlyPoolParticipationFeePct: p.EarlyPoolParticipationFeePct,
		OpenPoolParticipationFeePct:  p.OpenPoolParticipationFeePct,
		EarlyPoolOpenTime:            p.EarlyPoolOpenTime,
		EarlyPoolCloseTime:           p.EarlyPoolCloseTime,
		OpenPoolOpenTime:             p.OpenPoolOpenTime,
		OpenPoolCloseTime:            p.OpenPoolCloseTime,
		TgeDate:                      p.TgeDate,
		InitialTgeDate:               p.TgeDate,
		TgePercentage:                p.TgePercentage,
		VestingCliff:                 p.VestingCliff,
		VestingFrequency:             p.VestingFrequency,
		NumberOfVesting:              p.NumberOfVesting,
		StakePoolID:                  p.StakePoolID,
	}
	if err := dbconfig.DB.Create(&pool).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"pool_id": pool.ID,
		"owner":   pool.Owner,
	}).Info("Launch pool created")
	return &pool, nil
}

// FundOffer deposits offered tokens into the pool's offer vault and marks the
// pool funded. Cumulative; callable any number of times.
func FundOffer(poolID uint, funder string, amount uint64) (*models.LaunchPool, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	ctx := context.Background()

	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}

		offerVault := vault.VaultAccount(vault.OfferVaultSeed, launchPoolKey(pool.ID))
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      funder,
			To:        offerVault,
			Mint:      pool.OfferedMint,
			Amount:    amount,
			Authority: vault.UserAuthority(funder),
		}); err != nil {
			return err
		}

		pool.Funded = true
		pool.TotalFundedAmount += amount
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "launchpad", pool.ID, funder, pool.OfferedMint, "in", models.TransferPurposeFundOffer, amount)
	})
	if err != nil {
		return nil, err
	}

	publishEvent("pool.funded", map[string]interface{}{"pool_id": pool.ID, "amount": amount})
	return &pool, nil
}

// UpdateTgeDate moves the TGE date under the bounded adjustment rules.
// Owner-only; each success burns one attempt.
func UpdateTgeDate(poolID uint, caller string, newDate int64) (*models.LaunchPool, error) {
	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if pool.Owner != caller {
			return ErrNotOwner
		}
		if err := ValidateTgeUpdate(&pool, newDate); err != nil {
			return err
		}

		previous := pool.TgeDate
		pool.TgeDate = newDate
		pool.TgeUpdateAttempts++
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		systemLog(tx, pool.ID, "UpdateTgeDate", "TGE date adjusted", models.JSONMap{
			"previous": previous, "new": newDate, "attempts": pool.TgeUpdateAttempts,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// UpdatePhaseTimes moves the two close times; the open pool reopens where the
// early pool closes. Owner-only; re-validated against the current TGE date.
func UpdatePhaseTimes(poolID uint, caller string, earlyClose, openClose int64) (*models.LaunchPool, error) {
	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if pool.Owner != caller {
			return ErrNotOwner
		}
		if err := ValidatePhaseTimes(&pool, earlyClose, openClose); err != nil {
			return err
		}

		pool.EarlyPoolCloseTime = earlyClose
		pool.OpenPoolOpenTime = earlyClose
		pool.OpenPoolCloseTime = openClose
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		systemLog(tx, pool.ID, "UpdatePhaseTimes", "Phase close times adjusted", models.JSONMap{
			"early_close": earlyClose, "open_close": openClose,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// MakeClaimable opens vesting claims. Owner-only; there is no way back once
// set.
func MakeClaimable(poolID uint, caller string) (*models.LaunchPool, error) {
	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if pool.Owner != caller {
			return ErrNotOwner
		}
		pool.Claimable = true
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		systemLog(tx, pool.ID, "MakeClaimable", "Pool marked claimable", nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent("pool.claimable", map[string]interface{}{"pool_id": pool.ID})
	return &pool, nil
}

// CancelPool flags the failure path. Purchases and claims are untouched by
// the flag; only the two withdrawal operations read it.
func CancelPool(poolID uint, caller string) (*models.LaunchPool, error) {
	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if pool.Owner != caller {
			return ErrNotOwner
		}
		pool.Cancelled = true
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		systemLog(tx, pool.ID, "CancelPool", "Pool cancelled", nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent("pool.cancelled", map[string]interface{}{"pool_id": pool.ID})
	return &pool, nil
}

// lockBuyer loads the buyer row for update, or returns a fresh unsaved record
// on first purchase.
func lockBuyer(tx *gorm.DB, poolID uint, address string) (*models.Buyer, error) {
	var buyer models.Buyer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pool_id = ? AND address = ?", poolID, address).
		First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Buyer{PoolID: poolID, Address: address}, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// stakedAmountFor reads the buyer's stake in the pool's gating stake pool.
func stakedAmountFor(tx *gorm.DB, pool *models.LaunchPool, address string) (uint64, error) {
	if pool.StakePoolID == 0 {
		return 0, nil
	}
	var staker models.Staker
	err := tx.Where("stake_pool_id = ? AND address = ?", pool.StakePoolID, address).First(&staker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return staker.TotalStaked, nil
}

// BuyEarly settles an early-pool purchase: guards per the early rules, one
// net-of-fee transfer into the purchase vault, then the ledger commit. The
// transfer failing aborts the whole step.
func BuyEarly(poolID uint, buyerAddr string, amount uint64) (*models.Buyer, error) {
	return buy(poolID, buyerAddr, amount, true)
}

// BuyOpen settles an open-pool purchase under the flat per-user cap.
func BuyOpen(poolID uint, buyerAddr string, amount uint64) (*models.Buyer, error) {
	return buy(poolID, buyerAddr, amount, false)
}

func buy(poolID uint, buyerAddr string, amount uint64, early bool) (*models.Buyer, error) {
	now := Now()
	ctx := context.Background()

	var buyer *models.Buyer
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.LaunchPool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}

		var err error
		buyer, err = lockBuyer(tx, pool.ID, buyerAddr)
		if err != nil {
			return err
		}

		var q BuyQuote
		if early {
			staked, err := stakedAmountFor(tx, &pool, buyerAddr)
			if err != nil {
				return err
			}
			q, err = QuoteEarlyBuy(&pool, buyer, staked, amount, now)
			if err != nil {
				return err
			}
		} else {
			q, err = QuoteOpenBuy(&pool, buyer, amount, now)
			if err != nil {
				return err
			}
		}

		purchaseVault := vault.VaultAccount(vault.PurchaseVaultSeed, launchPoolKey(pool.ID))
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      buyerAddr,
			To:        purchaseVault,
			Mint:      pool.PurchaseMint,
			Amount:    q.Net,
			Authority: vault.UserAuthority(buyerAddr),
		}); err != nil {
			return err
		}

		buyer.TotalPurchased += q.Net
		buyer.TotalFee += q.Fee
		buyer.TotalAmount += q.EntitlementDelta
		if early {
			buyer.EarlyPurchased += q.Net
		}
		if err := tx.Save(buyer).Error; err != nil {
			return err
		}

		pool.PurchasedAmount += amount
		if early {
			pool.PurchasedInEarlyAccess += amount
		} else {
			pool.PurchasedInOpenPool += amount
		}
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "launchpad", pool.ID, buyerAddr, pool.PurchaseMint, "in", models.TransferPurposePurchase, q.Net)
	})
	if err != nil {
		return nil, err
	}

	phase := "open"
	if early {
		phase = "early"
	}
	logrus.WithFields(logrus.Fields{
		"pool_id": poolID,
		"buyer":   buyerAddr,
		"amount":  amount,
		"phase":   phase,
	}).Info("Purchase settled")
	publishEvent("pool.purchase", map[string]interface{}{
		"pool_id": poolID, "buyer": buyerAddr, "amount": amount, "phase": phase,
	})
	return buyer, nil
}

// ClaimOffer unlocks the vested portion of the buyer's entitlement: one
// vault-authority transfer out of the offer vault, then the claimed total
// advances. The recipient's asset account is materialized lazily.
func ClaimOffer(poolID uint, buyerAddr string) (uint64, error) {
	now := Now()
	ctx := context.Background()

	var claimed uint64
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.LaunchPool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		var buyer models.Buyer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pool_id = ? AND address = ?", pool.ID, buyerAddr).
			First(&buyer).Error; err != nil {
			return err
		}

		amount, err := QuoteClaim(&pool, &buyer, now)
		if err != nil {
			return err
		}

		if err := Vault.EnsureAccount(ctx, buyerAddr, pool.OfferedMint); err != nil {
			return err
		}
		offerVault := vault.VaultAccount(vault.OfferVaultSeed, launchPoolKey(pool.ID))
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      offerVault,
			To:        buyerAddr,
			Mint:      pool.OfferedMint,
			Amount:    amount,
			Authority: vault.VaultAuthority(vault.OfferVaultSeed, launchPoolKey(pool.ID)),
		}); err != nil {
			return err
		}

		buyer.ClaimedAmount += amount
		if err := tx.Save(&buyer).Error; err != nil {
			return err
		}
		claimed = amount
		return recordTransfer(tx, "launchpad", pool.ID, buyerAddr, pool.OfferedMint, "out", models.TransferPurposeClaim, amount)
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"pool_id": poolID,
		"buyer":   buyerAddr,
		"amount":  claimed,
	}).Info("Vested tokens claimed")
	return claimed, nil
}

// WithdrawOffer refunds offered tokens to the owner on the failure path,
// bounded by what was funded and not yet withdrawn.
func WithdrawOffer(poolID uint, caller string, amount uint64) (*models.LaunchPool, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	ctx := context.Background()

	var pool models.LaunchPool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if pool.Owner != caller {
			return ErrNotOwner
		}
		if !pool.Cancelled {
			return ErrNotCancelled
		}
		if amount > pool.TotalFundedAmount-pool.FundWithdrawnAmount {
			return ErrExceedsWithdrawable
		}

		key := launchPoolKey(pool.ID)
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      vault.VaultAccount(vault.OfferVaultSeed, key),
			To:        caller,
			Mint:      pool.OfferedMint,
			Amount:    amount,
			Authority: vault.VaultAuthority(vault.OfferVaultSeed, key),
		}); err != nil {
			return err
		}

		pool.FundWithdrawnAmount += amount
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "launchpad", pool.ID, caller, pool.OfferedMint, "out", models.TransferPurposeWithdrawOffer, amount)
	})
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// WithdrawPurchase refunds purchase tokens to a buyer on the failure path,
// bounded by the buyer's principal net of earlier refunds.
func WithdrawPurchase(poolID uint, buyerAddr string, amount uint64) (*models.Buyer, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	ctx := context.Background()

	var buyer models.Buyer
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.LaunchPool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if !pool.Cancelled {
			return ErrNotCancelled
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pool_id = ? AND address = ?", pool.ID, buyerAddr).
			First(&buyer).Error; err != nil {
			return err
		}
		if amount > buyer.TotalPurchased-buyer.RefundedAmount {
			return ErrExceedsWithdrawable
		}

		key := launchPoolKey(pool.ID)
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      vault.VaultAccount(vault.PurchaseVaultSeed, key),
			To:        buyerAddr,
			Mint:      pool.PurchaseMint,
			Amount:    amount,
			Authority: vault.VaultAuthority(vault.PurchaseVaultSeed, key),
		}); err != nil {
			return err
		}

		buyer.RefundedAmount += amount
		if err := tx.Save(&buyer).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "launchpad", pool.ID, buyerAddr, pool.PurchaseMint, "out", models.TransferPurposeRefundPurchase, amount)
	})
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}
