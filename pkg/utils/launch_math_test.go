package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateParticipantFee(t *testing.T) {
	t.Run("Zero Percentage", func(t *testing.T) {
		assert.Equal(t, uint64(0), CalculateParticipantFee(1000000, 0))
	})

	t.Run("Basis Point Math", func(t *testing.T) {
		// 2.5% of 100000
		assert.Equal(t, uint64(2500), CalculateParticipantFee(100000, 250))
		// 100% returns the full amount
		assert.Equal(t, uint64(100000), CalculateParticipantFee(100000, 10000))
		// integer division floors
		assert.Equal(t, uint64(0), CalculateParticipantFee(3, 250))
	})

	t.Run("Matches Definition Across Range", func(t *testing.T) {
		for amount := uint64(0); amount <= 10000; amount += 777 {
			for pct := uint64(0); pct <= 10000; pct += 500 {
				expected := amount * pct / 10000
				assert.Equal(t, expected, CalculateParticipantFee(amount, pct))
			}
		}
	})

	t.Run("Large Purchase Does Not Wrap", func(t *testing.T) {
		// 2e18 * 500 exceeds 64 bits before the divide
		assert.Equal(t, uint64(100000000000000000), CalculateParticipantFee(2000000000000000000, 500))
	})
}

func TestMaxEarlyPurchaseAmount(t *testing.T) {
	t.Run("Reference Scenario", func(t *testing.T) {
		// total=100000, open=60%, early=20% => 100000*4000*2000/1e8 = 8000
		assert.Equal(t, uint64(8000), MaxEarlyPurchaseAmount(100000, 6000, 2000))
	})

	t.Run("Monotonic In Early Proportion", func(t *testing.T) {
		prev := uint64(0)
		for early := uint64(0); early <= 10000; early += 250 {
			cap := MaxEarlyPurchaseAmount(100000, 6000, early)
			assert.GreaterOrEqual(t, cap, prev)
			prev = cap
		}
	})

	t.Run("Anti-Monotonic In Open Proportion", func(t *testing.T) {
		prev := MaxEarlyPurchaseAmount(100000, 0, 2000)
		for open := uint64(250); open <= 10000; open += 250 {
			cap := MaxEarlyPurchaseAmount(100000, open, 2000)
			assert.LessOrEqual(t, cap, prev)
			prev = cap
		}
	})

	t.Run("Full Open Proportion Leaves Nothing", func(t *testing.T) {
		assert.Equal(t, uint64(0), MaxEarlyPurchaseAmount(100000, 10000, 10000))
	})

	t.Run("Large Raise Does Not Wrap", func(t *testing.T) {
		// 3e12 * 4000 * 2000 exceeds 64 bits; the cap must still come out
		// as 3e12 * 40% * 20% = 2.4e11
		assert.Equal(t, uint64(240000000000), MaxEarlyPurchaseAmount(3000000000000, 6000, 2000))
	})
}

func TestCalculateClaimableAmount(t *testing.T) {
	schedule := VestingSchedule{
		TgePercentage:    1000, // 10%
		TgeDate:          1000,
		Cliff:            0,
		Frequency:        100,
		NumberOfReleases: 9,
	}

	t.Run("TGE Tranche Before TGE Date", func(t *testing.T) {
		// the TGE tranche is unlocked from the start; only the linear
		// releases wait for the TGE date plus cliff
		assert.Equal(t, uint64(100), CalculateClaimableAmount(1000, 0, schedule, 500))
		assert.Equal(t, uint64(100), CalculateClaimableAmount(1000, 0, schedule, 0))
		assert.Equal(t, uint64(0), CalculateClaimableAmount(1000, 100, schedule, 500))
	})

	t.Run("TGE Tranche At TGE Date", func(t *testing.T) {
		assert.Equal(t, uint64(100), CalculateClaimableAmount(1000, 0, schedule, 1000))
	})

	t.Run("Second Release", func(t *testing.T) {
		// release_index = 150/100 + 1 = 2 => 2*900/9 + 100 = 300
		assert.Equal(t, uint64(300), CalculateClaimableAmount(1000, 0, schedule, 1150))
	})

	t.Run("Fully Vested", func(t *testing.T) {
		assert.Equal(t, uint64(1000), CalculateClaimableAmount(1000, 0, schedule, 1900))
		assert.Equal(t, uint64(1000), CalculateClaimableAmount(1000, 0, schedule, 99999))
	})

	t.Run("Delta Shrinks With Claimed", func(t *testing.T) {
		assert.Equal(t, uint64(200), CalculateClaimableAmount(1000, 100, schedule, 1150))
		assert.Equal(t, uint64(0), CalculateClaimableAmount(1000, 300, schedule, 1150))
	})

	t.Run("No Double Claim", func(t *testing.T) {
		claimed := uint64(0)
		d := CalculateClaimableAmount(1000, claimed, schedule, 1150)
		require.Equal(t, uint64(300), d)
		claimed += d
		assert.Equal(t, uint64(0), CalculateClaimableAmount(1000, claimed, schedule, 1150))
	})

	t.Run("Monotonic In Time", func(t *testing.T) {
		prev := uint64(0)
		for now := int64(900); now <= 2100; now += 10 {
			c := CalculateClaimableAmount(1000, 0, schedule, now)
			assert.GreaterOrEqual(t, c, prev, "claimable decreased at now=%d", now)
			prev = c
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		a := CalculateClaimableAmount(1000, 100, schedule, 1234)
		b := CalculateClaimableAmount(1000, 100, schedule, 1234)
		assert.Equal(t, a, b)
	})

	t.Run("Bounded By Total", func(t *testing.T) {
		for now := int64(900); now <= 2200; now += 37 {
			for claimed := uint64(0); claimed <= 1000; claimed += 100 {
				c := CalculateClaimableAmount(1000, claimed, schedule, now)
				assert.LessOrEqual(t, claimed+c, uint64(1000))
			}
		}
	})

	t.Run("Cliff Holds Back Linear Releases", func(t *testing.T) {
		s := schedule
		s.Cliff = 500
		// inside the cliff only the TGE tranche is claimable
		assert.Equal(t, uint64(100), CalculateClaimableAmount(1000, 0, s, 1400))
		assert.Equal(t, uint64(0), CalculateClaimableAmount(1000, 100, s, 1400))
		// first release strictly after the cliff, second a full period later
		assert.Equal(t, uint64(200), CalculateClaimableAmount(1000, 0, s, 1550))
		assert.Equal(t, uint64(300), CalculateClaimableAmount(1000, 0, s, 1600))
	})

	t.Run("Zero Frequency Vests Everything After Cliff", func(t *testing.T) {
		s := schedule
		s.Frequency = 0
		assert.Equal(t, uint64(100), CalculateClaimableAmount(1000, 0, s, 1000))
		assert.Equal(t, uint64(1000), CalculateClaimableAmount(1000, 0, s, 1001))
	})

	t.Run("Overclaimed TGE Tranche Clamps To Zero", func(t *testing.T) {
		s := schedule
		s.Cliff = 500
		assert.Equal(t, uint64(0), CalculateClaimableAmount(1000, 150, s, 1200))
	})

	t.Run("Large Entitlement Does Not Wrap", func(t *testing.T) {
		// total 9e18: the TGE tranche product and the release-index product
		// both exceed 64 bits. Eighth release of nine: 8*8.1e18/9 + 9e17.
		total := uint64(9000000000000000000)
		assert.Equal(t, uint64(900000000000000000), CalculateClaimableAmount(total, 0, schedule, 1000))
		assert.Equal(t, uint64(8100000000000000000), CalculateClaimableAmount(total, 0, schedule, 1750))
	})
}

func TestCalculateStakingReward(t *testing.T) {
	t.Run("Linear In Time And Stake", func(t *testing.T) {
		// 100 seconds * 5 per block * 2000 staked / 10^3
		assert.Equal(t, uint64(1000), CalculateStakingReward(100, 2000, 5, 3))
		assert.Equal(t, uint64(2000), CalculateStakingReward(200, 2000, 5, 3))
		assert.Equal(t, uint64(2000), CalculateStakingReward(100, 4000, 5, 3))
	})

	t.Run("Zero Cases", func(t *testing.T) {
		assert.Equal(t, uint64(0), CalculateStakingReward(0, 2000, 5, 3))
		assert.Equal(t, uint64(0), CalculateStakingReward(-5, 2000, 5, 3))
		assert.Equal(t, uint64(0), CalculateStakingReward(100, 0, 5, 3))
	})

	t.Run("Decimal Scaling", func(t *testing.T) {
		assert.Equal(t, uint64(100000), CalculateStakingReward(100, 2000, 5, 1))
		assert.Equal(t, uint64(1), CalculateStakingReward(100, 2000, 5, 6))
	})

	t.Run("Year Of Accrual Does Not Wrap", func(t *testing.T) {
		// 31536000s * 1000 per block * 1e12 staked exceeds 64 bits before
		// scaling down by 10^6
		assert.Equal(t, uint64(31536000000000000), CalculateStakingReward(31536000, 1000000000000, 1000, 6))
	})
}
