package business

import (
	"testing"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateParams() CreatePoolParams {
	return CreatePoolParams{
		Owner:                        "owner",
		PurchaseMint:                 "USDC",
		OfferedMint:                  "IDO",
		OfferedRate:                  10,
		TotalRaiseAmount:             1_000_000,
		EarlyPoolProportion:          2000,
		OpenPoolProportion:           6000,
		MaxPurchaseForKycUser:        50_000,
		MaxPurchaseForNonKycUser:     10_000,
		EarlyPoolParticipationFeePct: 500,
		OpenPoolParticipationFeePct:  300,
		EarlyPoolOpenTime:            1000,
		EarlyPoolCloseTime:           2000,
		OpenPoolOpenTime:             2000,
		OpenPoolCloseTime:            3000,
		TgeDate:                      4000,
		TgePercentage:                1000,
		VestingCliff:                 0,
		VestingFrequency:             100,
		NumberOfVesting:              9,
	}
}

func TestValidateCreateParams(t *testing.T) {
	t.Run("Valid Params Pass", func(t *testing.T) {
		assert.NoError(t, ValidateCreateParams(validCreateParams()))
	})

	t.Run("Percentage Above Denominator Rejected", func(t *testing.T) {
		p := validCreateParams()
		p.TgePercentage = utils.PercentageDenominator + 1
		assert.ErrorIs(t, ValidateCreateParams(p), ErrInvalidPercentage)
	})

	t.Run("Fee Above Maximum Rejected", func(t *testing.T) {
		p := validCreateParams()
		p.EarlyPoolParticipationFeePct = utils.MaxParticipationFeePct + 1
		assert.ErrorIs(t, ValidateCreateParams(p), ErrInvalidFee)
	})

	t.Run("Phase Times Out Of Order Rejected", func(t *testing.T) {
		p := validCreateParams()
		p.OpenPoolCloseTime = p.OpenPoolOpenTime - 1
		assert.ErrorIs(t, ValidateCreateParams(p), ErrInvalidTimeOrder)
	})

	t.Run("Tge Before Open Close Rejected", func(t *testing.T) {
		p := validCreateParams()
		p.TgeDate = p.OpenPoolCloseTime - 1
		assert.ErrorIs(t, ValidateCreateParams(p), ErrInvalidTimeOrder)
	})

	t.Run("Kyc Cap Below NonKyc Cap Rejected", func(t *testing.T) {
		p := validCreateParams()
		p.MaxPurchaseForKycUser = p.MaxPurchaseForNonKycUser - 1
		assert.ErrorIs(t, ValidateCreateParams(p), ErrInvalidCapOrder)
	})
}

func earlyPhasePool() *models.LaunchPool {
	return &models.LaunchPool{
		ID:                           1,
		Owner:                        "owner",
		PurchaseMint:                 "USDC",
		OfferedMint:                  "IDO",
		OfferedRate:                  10,
		TotalRaiseAmount:             100_000,
		EarlyPoolProportion:          2000,
		OpenPoolProportion:           6000,
		MaxPurchaseForKycUser:        50_000,
		MaxPurchaseForNonKycUser:     10_000,
		EarlyPoolParticipationFeePct: 500,
		OpenPoolParticipationFeePct:  300,
		EarlyPoolOpenTime:            1000,
		EarlyPoolCloseTime:           2000,
		OpenPoolOpenTime:             2000,
		OpenPoolCloseTime:            3000,
		TgeDate:                      4000,
		InitialTgeDate:               4000,
		TgePercentage:                1000,
		Funded:                       true,
	}
}

func TestQuoteEarlyBuy(t *testing.T) {
	t.Run("Fee And Entitlement Arithmetic", func(t *testing.T) {
		pool := earlyPhasePool()
		q, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 10_000, 1500)
		require.NoError(t, err)
		assert.Equal(t, uint64(500), q.Fee)
		assert.Equal(t, uint64(9500), q.Net)
		assert.Equal(t, uint64(95_000), q.EntitlementDelta)
	})

	t.Run("Outside Window Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 999)
		assert.ErrorIs(t, err, ErrPhaseClosed)
		_, err = QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 2001)
		assert.ErrorIs(t, err, ErrPhaseClosed)
	})

	t.Run("Window Boundaries Inclusive", func(t *testing.T) {
		pool := earlyPhasePool()
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 1000)
		assert.NoError(t, err)
		_, err = QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 2000)
		assert.NoError(t, err)
	})

	t.Run("Zero Amount Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 0, 1500)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Unfunded Pool Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		pool.Funded = false
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 1500)
		assert.ErrorIs(t, err, ErrNotFunded)
	})

	t.Run("Stake Gate Enforced When Pool References Farm", func(t *testing.T) {
		pool := earlyPhasePool()
		pool.StakePoolID = 7
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, utils.MinEarlyPoolStake-1, 100, 1500)
		assert.ErrorIs(t, err, ErrInsufficientStake)

		_, err = QuoteEarlyBuy(pool, &models.Buyer{}, utils.MinEarlyPoolStake, 100, 1500)
		assert.NoError(t, err)
	})

	t.Run("No Stake Gate Without Farm Reference", func(t *testing.T) {
		pool := earlyPhasePool()
		_, err := QuoteEarlyBuy(pool, &models.Buyer{}, 0, 100, 1500)
		assert.NoError(t, err)
	})

	t.Run("Early Allocation Cap Enforced", func(t *testing.T) {
		pool := earlyPhasePool()
		// 100000 * (10000-6000)/10000 * 2000/10000 = 8000
		allowed := utils.MaxEarlyPurchaseAmount(pool.TotalRaiseAmount, pool.OpenPoolProportion, pool.EarlyPoolProportion)
		require.Equal(t, uint64(8000), allowed)

		_, err := QuoteEarlyBuy(pool, &models.Buyer{EarlyPurchased: 7000}, 0, 1001, 1500)
		assert.ErrorIs(t, err, ErrExceedsEarlyCap)

		_, err = QuoteEarlyBuy(pool, &models.Buyer{EarlyPurchased: 7000}, 0, 1000, 1500)
		assert.NoError(t, err)
	})
}

func TestQuoteOpenBuy(t *testing.T) {
	t.Run("Open Window And Cap", func(t *testing.T) {
		pool := earlyPhasePool()
		q, err := QuoteOpenBuy(pool, &models.Buyer{}, 10_000, 2500)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), q.Fee)
		assert.Equal(t, uint64(9700), q.Net)
	})

	t.Run("Outside Window Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		_, err := QuoteOpenBuy(pool, &models.Buyer{}, 100, 1999)
		assert.ErrorIs(t, err, ErrPhaseClosed)
		_, err = QuoteOpenBuy(pool, &models.Buyer{}, 100, 3001)
		assert.ErrorIs(t, err, ErrPhaseClosed)
	})

	t.Run("Per User Cap Counts Only Open Purchases", func(t *testing.T) {
		pool := earlyPhasePool()
		// 5000 bought early does not consume the open-pool cap.
		buyer := &models.Buyer{TotalPurchased: 5000, EarlyPurchased: 5000}
		_, err := QuoteOpenBuy(pool, buyer, 10_000, 2500)
		assert.NoError(t, err)

		buyer = &models.Buyer{TotalPurchased: 14_000, EarlyPurchased: 5000}
		_, err = QuoteOpenBuy(pool, buyer, 1001, 2500)
		assert.ErrorIs(t, err, ErrExceedsUserCap)
	})

	t.Run("Unfunded Pool Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		pool.Funded = false
		_, err := QuoteOpenBuy(pool, &models.Buyer{}, 100, 2500)
		assert.ErrorIs(t, err, ErrNotFunded)
	})
}

func TestQuoteClaim(t *testing.T) {
	pool := earlyPhasePool()
	pool.Claimable = true

	t.Run("Not Claimable Rejected", func(t *testing.T) {
		locked := earlyPhasePool()
		buyer := &models.Buyer{TotalAmount: 1000}
		_, err := QuoteClaim(locked, buyer, 5000)
		assert.ErrorIs(t, err, ErrNotClaimable)
	})

	t.Run("Fully Claimed Rejected", func(t *testing.T) {
		buyer := &models.Buyer{TotalAmount: 1000, ClaimedAmount: 1000}
		_, err := QuoteClaim(pool, buyer, 5000)
		assert.ErrorIs(t, err, ErrFullyClaimed)
	})

	t.Run("Tge Unlock At Tge Date", func(t *testing.T) {
		buyer := &models.Buyer{TotalAmount: 1000}
		amount, err := QuoteClaim(pool, buyer, pool.TgeDate)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), amount)
	})

	t.Run("Tge Tranche Available Before Tge Date", func(t *testing.T) {
		// once the pool is claimable the TGE tranche does not wait for the
		// TGE date itself
		buyer := &models.Buyer{TotalAmount: 1000}
		amount, err := QuoteClaim(pool, buyer, pool.TgeDate-1)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), amount)

		buyer.ClaimedAmount = 100
		_, err = QuoteClaim(pool, buyer, pool.TgeDate-1)
		assert.ErrorIs(t, err, ErrNothingToClaim)
	})

	t.Run("Everything After Final Release", func(t *testing.T) {
		buyer := &models.Buyer{TotalAmount: 1000, ClaimedAmount: 300}
		amount, err := QuoteClaim(pool, buyer, pool.TgeDate+100_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(700), amount)
	})
}

func TestValidateTgeUpdate(t *testing.T) {
	t.Run("Valid Move Accepted", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.NoError(t, ValidateTgeUpdate(pool, 5000))
	})

	t.Run("Before Open Close Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.ErrorIs(t, ValidateTgeUpdate(pool, pool.OpenPoolCloseTime-1), ErrInvalidTimeOrder)
	})

	t.Run("Attempts Exhausted", func(t *testing.T) {
		pool := earlyPhasePool()
		pool.TgeUpdateAttempts = utils.MaxTgeDateAdjustmentAttempts
		assert.ErrorIs(t, ValidateTgeUpdate(pool, 5000), ErrTgeAttemptsExhausted)
	})

	t.Run("Window Anchored At Initial Date", func(t *testing.T) {
		pool := earlyPhasePool()
		limit := pool.InitialTgeDate + utils.MaxTgeDateAdjustment
		assert.NoError(t, ValidateTgeUpdate(pool, limit))
		assert.ErrorIs(t, ValidateTgeUpdate(pool, limit+1), ErrTgeOutsideWindow)

		// Moving the date does not widen the window.
		pool.TgeDate = limit
		assert.ErrorIs(t, ValidateTgeUpdate(pool, limit+1), ErrTgeOutsideWindow)
	})
}

func TestValidatePhaseTimes(t *testing.T) {
	t.Run("Valid Move Accepted", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.NoError(t, ValidatePhaseTimes(pool, 2500, 3500))
	})

	t.Run("Early Close Before Early Open Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.ErrorIs(t, ValidatePhaseTimes(pool, pool.EarlyPoolOpenTime-1, 3500), ErrInvalidTimeOrder)
	})

	t.Run("Open Close Before Early Close Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.ErrorIs(t, ValidatePhaseTimes(pool, 2500, 2400), ErrInvalidTimeOrder)
	})

	t.Run("Open Close After Tge Rejected", func(t *testing.T) {
		pool := earlyPhasePool()
		assert.ErrorIs(t, ValidatePhaseTimes(pool, 2500, pool.TgeDate+1), ErrInvalidTimeOrder)
	})
}

func TestSettleReward(t *testing.T) {
	pool := &models.StakePool{RewardPerBlock: 2, StakeDecimals: 2}

	t.Run("Accrual Moves To Pending And Checkpoint Advances", func(t *testing.T) {
		staker := &models.Staker{TotalStaked: 1000, LastUpdate: 100}
		SettleReward(staker, pool, 150)
		// 50 * 2 * 1000 / 10^2 = 1000
		assert.Equal(t, uint64(1000), staker.PendingReward)
		assert.Equal(t, int64(150), staker.LastUpdate)
	})

	t.Run("Settling Twice Adds Nothing", func(t *testing.T) {
		staker := &models.Staker{TotalStaked: 1000, LastUpdate: 100}
		SettleReward(staker, pool, 150)
		SettleReward(staker, pool, 150)
		assert.Equal(t, uint64(1000), staker.PendingReward)
	})

	t.Run("Zero Stake Accrues Nothing", func(t *testing.T) {
		staker := &models.Staker{LastUpdate: 0}
		SettleReward(staker, pool, 500)
		assert.Equal(t, uint64(0), staker.PendingReward)
		assert.Equal(t, int64(500), staker.LastUpdate)
	})
}

func TestSettleClaim(t *testing.T) {
	t.Run("Pays Pending Plus Accrual", func(t *testing.T) {
		pool := &models.StakePool{RewardPerBlock: 2, StakeDecimals: 2}
		staker := &models.Staker{TotalStaked: 1000, LastUpdate: 100, PendingReward: 50}
		reward := SettleClaim(staker, pool, 150)
		// 50 pending + 50*2*1000/10^2 accrued
		assert.Equal(t, uint64(1050), reward)
		assert.Equal(t, uint64(0), staker.PendingReward)
		assert.Equal(t, uint64(1050), staker.Withdrawn)
		assert.Equal(t, int64(150), staker.LastUpdate)
	})

	t.Run("Zero Reward Keeps Checkpoint", func(t *testing.T) {
		// a one-lamport staker earning 1 per block at 6 decimals floors to
		// zero for any window under 10^6 seconds; repeated claims must not
		// reset the accrual basis
		pool := &models.StakePool{RewardPerBlock: 1, StakeDecimals: 6}
		staker := &models.Staker{TotalStaked: 1, LastUpdate: 100}
		for now := int64(101); now <= 200; now++ {
			require.Equal(t, uint64(0), SettleClaim(staker, pool, now))
		}
		assert.Equal(t, int64(100), staker.LastUpdate)
		assert.Equal(t, uint64(0), staker.Withdrawn)

		// after a full accrual window the unit finally pays out
		assert.Equal(t, uint64(1), SettleClaim(staker, pool, 100+1_000_000))
		assert.Equal(t, int64(100+1_000_000), staker.LastUpdate)
	})
}
