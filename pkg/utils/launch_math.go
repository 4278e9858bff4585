package utils

import "math/big"

// PercentageDenominator is the fixed-point scale for every percentage field
// (basis points x100, so 10000 == 100%).
const PercentageDenominator uint64 = 10000

// Launchpad limits carried over from the on-chain deployment.
const (
	MaxTgeDateAdjustment         int64  = 86400 * 730 // 730 days from the original TGE date
	MaxTgeDateAdjustmentAttempts uint8  = 2
	MinEarlyPoolStake            uint64 = 100000000
	MaxParticipationFeePct       uint64 = 5000
)

var bigDenominator = new(big.Int).SetUint64(PercentageDenominator)

// mulDiv returns a*b/den through a wide intermediate, so full-range uint64
// amounts never wrap mid-product.
func mulDiv(a, b, den uint64) uint64 {
	p := new(big.Int).SetUint64(a)
	p.Mul(p, new(big.Int).SetUint64(b))
	p.Quo(p, new(big.Int).SetUint64(den))
	return p.Uint64()
}

// CalculateParticipantFee returns the participation fee for a purchase.
// Caller guarantees pct <= PercentageDenominator.
func CalculateParticipantFee(purchaseAmount uint64, pct uint64) uint64 {
	if pct == 0 {
		return 0
	}
	return mulDiv(purchaseAmount, pct, PercentageDenominator)
}

// MaxEarlyPurchaseAmount derives the per-buyer ceiling for the early pool:
// early buyers only share the capacity not reserved for the open pool, scaled
// by the early-pool proportion. Integer division truncates, which biases the
// cap low rather than over-allocating.
func MaxEarlyPurchaseAmount(totalRaise, openPoolProportion, earlyPoolProportion uint64) uint64 {
	p := new(big.Int).SetUint64(totalRaise)
	p.Mul(p, new(big.Int).SetUint64(PercentageDenominator-openPoolProportion))
	p.Mul(p, new(big.Int).SetUint64(earlyPoolProportion))
	p.Quo(p, bigDenominator)
	p.Quo(p, bigDenominator)
	return p.Uint64()
}

// VestingSchedule groups the pool parameters the claim calculator reads.
type VestingSchedule struct {
	TgePercentage    uint64
	TgeDate          int64
	Cliff            int64
	Frequency        int64
	NumberOfReleases int64
}

// CalculateClaimableAmount returns the amount claimable right now, given the
// buyer's total entitlement and what was already claimed. The result is a
// delta: the caller adds it to the claimed total after the transfer commits.
// A zero Frequency means the whole remainder vests as soon as the cliff ends.
func CalculateClaimableAmount(totalAmount, claimedAmount uint64, s VestingSchedule, now int64) uint64 {
	tgeAmount := mulDiv(totalAmount, s.TgePercentage, PercentageDenominator)

	// Up to and including the cliff end only the TGE tranche is unlockable;
	// the first linear release needs a full period after it.
	if now <= s.TgeDate+s.Cliff {
		if claimedAmount >= tgeAmount {
			return 0
		}
		return tgeAmount - claimedAmount
	}

	if s.Frequency <= 0 {
		return totalAmount - claimedAmount
	}

	// Partial periods do not count.
	releaseIndex := (now-s.TgeDate-s.Cliff)/s.Frequency + 1
	if releaseIndex >= s.NumberOfReleases {
		return totalAmount - claimedAmount
	}

	remainder := totalAmount - tgeAmount
	unlocked := mulDiv(remainder, uint64(releaseIndex), uint64(s.NumberOfReleases)) + tgeAmount
	if claimedAmount >= unlocked {
		return 0
	}
	return unlocked - claimedAmount
}

// CalculateStakingReward returns the reward accrued since the staker's last
// checkpoint: linear in elapsed time and staked amount, scaled down by the
// stake token's decimal precision. Accrual is uncapped until a claim advances
// the checkpoint, so the three-factor product is taken wide before scaling.
func CalculateStakingReward(elapsedSeconds int64, totalStaked, rewardPerBlock uint64, stakeDecimals uint8) uint64 {
	if elapsedSeconds <= 0 || totalStaked == 0 {
		return 0
	}
	base := uint64(1)
	for i := uint8(0); i < stakeDecimals; i++ {
		base *= 10
	}

	r := new(big.Int).SetInt64(elapsedSeconds)
	r.Mul(r, new(big.Int).SetUint64(rewardPerBlock))
	r.Mul(r, new(big.Int).SetUint64(totalStaked))
	r.Quo(r, new(big.Int).SetUint64(base))
	return r.Uint64()
}
