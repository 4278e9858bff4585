package business

import (
	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// CreatePoolParams carries everything fixed at pool creation. TGE date and
// phase close times may still move later, within bounds.
type CreatePoolParams struct {
	Owner            string `json:"owner" binding:"required"`
	PurchaseMint     string `json:"purchase_mint" binding:"required"`
	PurchaseDecimals uint8  `json:"purchase_decimals"`
	OfferedMint      string `json:"offered_mint" binding:"required"`
	OfferedDecimals  uint8  `json:"offered_decimals"`
	OfferedRate      uint64 `json:"offered_rate" binding:"required"`

	TotalRaiseAmount    uint64 `json:"total_raise_amount" binding:"required"`
	EarlyPoolProportion uint64 `json:"early_pool_proportion"`
	OpenPoolProportion  uint64 `json:"open_pool_proportion"`

	MaxPurchaseForKycUser    uint64 `json:"max_purchase_for_kyc_user"`
	MaxPurchaseForNonKycUser uint64 `json:"max_purchase_for_non_kyc_user"`

	EarlyPoolParticipationFeePct uint64 `json:"early_pool_participation_fee_pct"`
	OpenPoolParticipationFeePct  uint64 `json:"open_pool_participation_fee_pct"`

	EarlyPoolOpenTime  int64 `json:"early_pool_open_time"`
	EarlyPoolCloseTime int64 `json:"early_pool_close_time"`
	OpenPoolOpenTime   int64 `json:"open_pool_open_time"`
	OpenPoolCloseTime  int64 `json:"open_pool_close_time"`

	TgeDate          int64  `json:"tge_date"`
	TgePercentage    uint64 `json:"tge_percentage"`
	VestingCliff     int64  `json:"vesting_cliff"`
	VestingFrequency int64  `json:"vesting_frequency"`
	NumberOfVesting  int64  `json:"number_of_vesting"`

	StakePoolID uint `json:"stake_pool_id"`
}

// ValidateCreateParams enforces the creation invariants: percentages within
// the denominator, fees within the deployment maximum, phase ordering up to
// the TGE date, and the KYC cap at or above the non-KYC cap.
func ValidateCreateParams(p CreatePoolParams) error {
	for _, pct := range []uint64{
		p.EarlyPoolProportion, p.OpenPoolProportion, p.TgePercentage,
		p.EarlyPoolParticipationFeePct, p.OpenPoolParticipationFeePct,
	} {
		if pct > utils.PercentageDenominator {
			return ErrInvalidPercentage
		}
	}
	if p.EarlyPoolParticipationFeePct > utils.MaxParticipationFeePct ||
		p.OpenPoolParticipationFeePct > utils.MaxParticipationFeePct {
		return ErrInvalidFee
	}
	if p.EarlyPoolOpenTime > p.EarlyPoolCloseTime ||
		p.EarlyPoolCloseTime > p.OpenPoolOpenTime ||
		p.OpenPoolOpenTime > p.OpenPoolCloseTime ||
		p.OpenPoolCloseTime > p.TgeDate {
		return ErrInvalidTimeOrder
	}
	if p.MaxPurchaseForKycUser < p.MaxPurchaseForNonKycUser {
		return ErrInvalidCapOrder
	}
	return nil
}

// BuyQuote is the outcome of the purchase arithmetic: what the buyer pays
// net of fee, the fee itself, and the offered-token entitlement earned.
type BuyQuote struct {
	Fee              uint64
	Net              uint64
	EntitlementDelta uint64
}

func quote(pool *models.LaunchPool, amount, feePct uint64) BuyQuote {
	fee := utils.CalculateParticipantFee(amount, feePct)
	net := amount - fee
	return BuyQuote{
		Fee:              fee,
		Net:              net,
		EntitlementDelta: net * pool.OfferedRate,
	}
}

// QuoteEarlyBuy runs the early-pool guards in order (window, amount, funded,
// stake gate, allocation cap) and returns the purchase arithmetic. stakedAmount
// is the buyer's stake in the gating pool; it is ignored unless the launch
// pool references one.
func QuoteEarlyBuy(pool *models.LaunchPool, buyer *models.Buyer, stakedAmount, amount uint64, now int64) (BuyQuote, error) {
	if now < pool.EarlyPoolOpenTime || now > pool.EarlyPoolCloseTime {
		return BuyQuote{}, ErrPhaseClosed
	}
	if amount == 0 {
		return BuyQuote{}, ErrInvalidAmount
	}
	if !pool.Funded {
		return BuyQuote{}, ErrNotFunded
	}
	if pool.StakePoolID != 0 && stakedAmount < utils.MinEarlyPoolStake {
		return BuyQuote{}, ErrInsufficientStake
	}

	allowed := utils.MaxEarlyPurchaseAmount(pool.TotalRaiseAmount, pool.OpenPoolProportion, pool.EarlyPoolProportion)
	if buyer.EarlyPurchased+amount > allowed {
		return BuyQuote{}, ErrExceedsEarlyCap
	}
	return quote(pool, amount, pool.EarlyPoolParticipationFeePct), nil
}

// QuoteOpenBuy runs the open-pool guards (window, amount, funded, flat
// per-user cap). With the KYC tier out of scope the non-KYC cap applies to
// every buyer.
func QuoteOpenBuy(pool *models.LaunchPool, buyer *models.Buyer, amount uint64, now int64) (BuyQuote, error) {
	if now < pool.OpenPoolOpenTime || now > pool.OpenPoolCloseTime {
		return BuyQuote{}, ErrPhaseClosed
	}
	if amount == 0 {
		return BuyQuote{}, ErrInvalidAmount
	}
	if !pool.Funded {
		return BuyQuote{}, ErrNotFunded
	}

	openPurchased := buyer.TotalPurchased - buyer.EarlyPurchased
	if openPurchased+amount > pool.MaxPurchaseForNonKycUser {
		return BuyQuote{}, ErrExceedsUserCap
	}
	return quote(pool, amount, pool.OpenPoolParticipationFeePct), nil
}

// QuoteClaim returns the vested amount claimable right now, or the state
// error that blocks the claim.
func QuoteClaim(pool *models.LaunchPool, buyer *models.Buyer, now int64) (uint64, error) {
	if !pool.Claimable {
		return 0, ErrNotClaimable
	}
	if buyer.ClaimedAmount >= buyer.TotalAmount {
		return 0, ErrFullyClaimed
	}

	claimable := utils.CalculateClaimableAmount(buyer.TotalAmount, buyer.ClaimedAmount, utils.VestingSchedule{
		TgePercentage:    pool.TgePercentage,
		TgeDate:          pool.TgeDate,
		Cliff:            pool.VestingCliff,
		Frequency:        pool.VestingFrequency,
		NumberOfReleases: pool.NumberOfVesting,
	}, now)
	if claimable == 0 {
		return 0, ErrNothingToClaim
	}
	return claimable, nil
}

// ValidateTgeUpdate checks the bounded TGE adjustment: never before the open
// pool closes, never past the window anchored at the original TGE date, and
// never after the attempt budget is spent.
func ValidateTgeUpdate(pool *models.LaunchPool, newDate int64) error {
	if newDate < pool.OpenPoolCloseTime {
		return ErrInvalidTimeOrder
	}
	if pool.TgeUpdateAttempts >= utils.MaxTgeDateAdjustmentAttempts {
		return ErrTgeAttemptsExhausted
	}
	if newDate > pool.InitialTgeDate+utils.MaxTgeDateAdjustment {
		return ErrTgeOutsideWindow
	}
	return nil
}

// ValidatePhaseTimes checks an update of the two close times against the
// fixed open times and the current TGE date. The open pool reopens where the
// early pool closes.
func ValidatePhaseTimes(pool *models.LaunchPool, earlyClose, openClose int64) error {
	if pool.EarlyPoolOpenTime > earlyClose {
		return ErrInvalidTimeOrder
	}
	if earlyClose > openClose {
		return ErrInvalidTimeOrder
	}
	if openClose > pool.TgeDate {
		return ErrInvalidTimeOrder
	}
	return nil
}

// SettleReward folds the reward accrued since the last checkpoint into the
// staker's pending balance and advances the checkpoint. Called before any
// stake or unstake so a deposit never discards accrued reward.
func SettleReward(staker *models.Staker, pool *models.StakePool, now int64) {
	accrued := utils.CalculateStakingReward(now-staker.LastUpdate, staker.TotalStaked, pool.RewardPerBlock, pool.StakeDecimals)
	staker.PendingReward += accrued
	staker.LastUpdate = now
}

// SettleClaim computes the payable reward (pending balance plus accrual since
// the checkpoint) and books it on the staker. When the reward floors to zero
// the staker is left untouched, so a small stake keeps accruing against the
// old checkpoint instead of losing the fraction on every attempt.
func SettleClaim(staker *models.Staker, pool *models.StakePool, now int64) uint64 {
	accrued := utils.CalculateStakingReward(now-staker.LastUpdate, staker.TotalStaked, pool.RewardPerBlock, pool.StakeDecimals)
	reward := staker.PendingReward + accrued
	if reward == 0 {
		return 0
	}
	staker.PendingReward = 0
	staker.Withdrawn += reward
	staker.LastUpdate = now
	return reward
}
