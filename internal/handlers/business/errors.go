package business

import "errors"

// Guard failures, grouped by how the caller can recover. Every failure aborts
// the whole operation before any ledger mutation or transfer.
var (
	// Validation: retryable with corrected input.
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidPercentage = errors.New("percentage exceeds denominator")
	ErrInvalidFee        = errors.New("participation fee exceeds maximum")
	ErrInvalidTimeOrder  = errors.New("phase times out of order")
	ErrInvalidCapOrder   = errors.New("kyc purchase cap below non-kyc cap")

	// Timing: retryable once the window opens.
	ErrPhaseClosed = errors.New("outside the purchase window")

	// Authorization: non-retryable for this caller.
	ErrNotOwner = errors.New("caller is not the pool owner")

	// Capacity: retryable with a smaller amount.
	ErrExceedsEarlyCap = errors.New("purchase exceeds early access allocation")
	ErrExceedsUserCap  = errors.New("purchase exceeds per-user cap")

	// State: blocked until a precondition changes.
	ErrNotFunded           = errors.New("pool is not funded")
	ErrNotClaimable        = errors.New("pool is not claimable yet")
	ErrNothingToClaim      = errors.New("nothing to claim")
	ErrFullyClaimed        = errors.New("total amount already claimed")
	ErrNotCancelled        = errors.New("pool is not cancelled")
	ErrInsufficientStake   = errors.New("staked amount below early access minimum")
	ErrInsufficientStaked  = errors.New("unstake amount exceeds staked balance")
	ErrExceedsWithdrawable = errors.New("withdrawal exceeds remaining balance")
	ErrRewardNotFunded     = errors.New("reward pot is not funded")

	// Adjustment limits: permanently exhausted for this pool.
	ErrTgeAttemptsExhausted = errors.New("tge date adjustment attempts exhausted")
	ErrTgeOutsideWindow     = errors.New("tge date outside adjustment window")
)
