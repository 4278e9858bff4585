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

// InitStakePoolParams carries the immutable stake pool configuration.
type InitStakePoolParams struct {
	Owner          string `json:"owner" binding:"required"`
	RewardMint     string `json:"reward_mint" binding:"required"`
	StakeMint      string `json:"stake_mint" binding:"required"`
	RewardPerBlock uint64 `json:"reward_per_block" binding:"required"`
	RewardDecimals uint8  `json:"reward_decimals"`
	StakeDecimals  uint8  `json:"stake_decimals"`
}

// InitStakePool persists a new staking farm. Reward accrual starts per staker
// at their first deposit, not at pool creation.
func InitStakePool(p InitStakePoolParams) (*models.StakePool, error) {
	if p.RewardPerBlock == 0 {
		return nil, ErrInvalidAmount
	}
	pool := models.StakePool{
		Owner:          p.Owner,
		RewardMint:     p.RewardMint,
		StakeMint:      p.StakeMint,
		RewardPerBlock: p.RewardPerBlock,
		RewardDecimals: p.RewardDecimals,
		StakeDecimals:  p.StakeDecimals,
	}
	if err := dbconfig.DB.Create(&pool).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"stake_pool_id": pool.ID,
		"owner":         pool.Owner,
	}).Info("Stake pool created")
	return &pool, nil
}

// FundReward deposits reward tokens into the pool's reward pot and marks the
// pot funded. Cumulative; callable by anyone.
func FundReward(poolID uint, funder string, amount uint64) (*models.StakePool, error) {
	return fundRewardPot(poolID, funder, amount, false)
}

// AddReward tops up the reward pot after the initial funding. Owner-only.
func AddReward(poolID uint, caller string, amount uint64) (*models.StakePool, error) {
	return fundRewardPot(poolID, caller, amount, true)
}

func fundRewardPot(poolID uint, source string, amount uint64, ownerOnly bool) (*models.StakePool, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	ctx := context.Background()

	var pool models.StakePool
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if ownerOnly && pool.Owner != source {
			return ErrNotOwner
		}

		rewardPot := vault.VaultAccount(vault.RewardPotSeed, stakePoolKey(pool.ID))
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      source,
			To:        rewardPot,
			Mint:      pool.RewardMint,
			Amount:    amount,
			Authority: vault.UserAuthority(source),
		}); err != nil {
			return err
		}

		pool.RewardFunded = true
		pool.TotalRewardFunded += amount
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "staking", pool.ID, source, pool.RewardMint, "in", models.TransferPurposeFundReward, amount)
	})
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// lockStaker loads the staker row for update, creating it on first contact.
// A freshly created row checkpoints at now so no reward accrues before the
// first deposit lands.
func lockStaker(tx *gorm.DB, poolID uint, address string, now int64) (*models.Staker, bool, error) {
	var staker models.Staker
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stake_pool_id = ? AND address = ?", poolID, address).
		First(&staker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		staker = models.Staker{StakePoolID: poolID, Address: address, LastUpdate: now}
		if err := tx.Create(&staker).Error; err != nil {
			return nil, false, err
		}
		return &staker, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &staker, false, nil
}

// Stake deposits into the farm. Accrued reward is settled to the pending
// balance first so the checkpoint reset never discards it.
func Stake(poolID uint, stakerAddr string, amount uint64) (*models.Staker, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	now := Now()
	ctx := context.Background()

	var staker *models.Staker
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.StakePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}

		var created bool
		var err error
		staker, created, err = lockStaker(tx, pool.ID, stakerAddr, now)
		if err != nil {
			return err
		}

		SettleReward(staker, &pool, now)

		stakeVault := vault.VaultAccount(vault.StakeVaultSeed, stakePoolKey(pool.ID))
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      stakerAddr,
			To:        stakeVault,
			Mint:      pool.StakeMint,
			Amount:    amount,
			Authority: vault.UserAuthority(stakerAddr),
		}); err != nil {
			return err
		}

		staker.TotalStaked += amount
		if err := tx.Save(staker).Error; err != nil {
			return err
		}

		pool.TotalStaked += amount
		if created {
			pool.StakerCount++
		}
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "staking", pool.ID, stakerAddr, pool.StakeMint, "in", models.TransferPurposeStake, amount)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"stake_pool_id": poolID,
		"staker":        stakerAddr,
		"amount":        amount,
	}).Info("Stake deposited")
	return staker, nil
}

// Unstake returns staked tokens to the staker, up to their staked balance.
// Reward accrued up to now is settled before the balance shrinks.
func Unstake(poolID uint, stakerAddr string, amount uint64) (*models.Staker, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	now := Now()
	ctx := context.Background()

	var staker models.Staker
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.StakePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stake_pool_id = ? AND address = ?", pool.ID, stakerAddr).
			First(&staker).Error; err != nil {
			return err
		}
		if amount > staker.TotalStaked {
			return ErrInsufficientStaked
		}

		SettleReward(&staker, &pool, now)

		key := stakePoolKey(pool.ID)
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      vault.VaultAccount(vault.StakeVaultSeed, key),
			To:        stakerAddr,
			Mint:      pool.StakeMint,
			Amount:    amount,
			Authority: vault.VaultAuthority(vault.StakeVaultSeed, key),
		}); err != nil {
			return err
		}

		staker.TotalStaked -= amount
		if err := tx.Save(&staker).Error; err != nil {
			return err
		}

		pool.TotalStaked -= amount
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return recordTransfer(tx, "staking", pool.ID, stakerAddr, pool.StakeMint, "out", models.TransferPurposeUnstake, amount)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"stake_pool_id": poolID,
		"staker":        stakerAddr,
		"amount":        amount,
	}).Info("Stake withdrawn")
	return &staker, nil
}

// ClaimReward pays out the pending balance plus reward accrued since the last
// checkpoint. A zero reward is a silent no-op that leaves the checkpoint in
// place, so sub-unit accrual is carried forward rather than dropped.
func ClaimReward(poolID uint, stakerAddr string) (uint64, error) {
	now := Now()
	ctx := context.Background()

	var paid uint64
	err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var pool models.StakePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error; err != nil {
			return err
		}
		if !pool.RewardFunded {
			return ErrRewardNotFunded
		}
		var staker models.Staker
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stake_pool_id = ? AND address = ?", pool.ID, stakerAddr).
			First(&staker).Error; err != nil {
			return err
		}

		reward := SettleClaim(&staker, &pool, now)
		if reward == 0 {
			return nil
		}

		if err := Vault.EnsureAccount(ctx, stakerAddr, pool.RewardMint); err != nil {
			return err
		}
		key := stakePoolKey(pool.ID)
		if err := Vault.Transfer(ctx, vault.TransferRequest{
			From:      vault.VaultAccount(vault.RewardPotSeed, key),
			To:        stakerAddr,
			Mint:      pool.RewardMint,
			Amount:    reward,
			Authority: vault.VaultAuthority(vault.RewardPotSeed, key),
		}); err != nil {
			return err
		}

		if err := tx.Save(&staker).Error; err != nil {
			return err
		}
		paid = reward
		return recordTransfer(tx, "staking", pool.ID, stakerAddr, pool.RewardMint, "out", models.TransferPurposeClaimReward, reward)
	})
	if err != nil {
		return 0, err
	}

	if paid > 0 {
		logrus.WithFields(logrus.Fields{
			"stake_pool_id": poolID,
			"staker":        stakerAddr,
			"reward":        paid,
		}).Info("Staking reward claimed")
	}
	return paid, nil
}
