package models

import (
	"time"
)

// LaunchPool represents one token sale: two sequential purchase windows
// followed by a vesting unlock of the offered token.
//
// All amounts are raw token units (uint64), all timestamps unix seconds,
// all percentages fixed-point with denominator 10000.
type LaunchPool struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Owner string `gorm:"size:100;not null;index" json:"owner"`

	// Purchase currency (what buyers pay with)
	PurchaseMint     string `gorm:"size:100;not null" json:"purchase_mint"`
	PurchaseDecimals uint8  `gorm:"not null" json:"purchase_decimals"`

	// Offered currency (what the pool sells)
	OfferedMint     string `gorm:"size:100;not null" json:"offered_mint"`
	OfferedDecimals uint8  `gorm:"not null" json:"offered_decimals"`
	OfferedRate     uint64 `gorm:"not null" json:"offered_rate"` // offered units per purchase unit

	TotalRaiseAmount    uint64 `gorm:"not null" json:"total_raise_amount"`
	EarlyPoolProportion uint64 `gorm:"not null" json:"early_pool_proportion"`
	OpenPoolProportion  uint64 `gorm:"not null" json:"open_pool_proportion"`

	MaxPurchaseForKycUser    uint64 `gorm:"not null" json:"max_purchase_for_kyc_user"`
	MaxPurchaseForNonKycUser uint64 `gorm:"not null" json:"max_purchase_for_non_kyc_user"`

	EarlyPoolParticipationFeePct uint64 `gorm:"not null" json:"early_pool_participation_fee_pct"`
	OpenPoolParticipationFeePct  uint64 `gorm:"not null" json:"open_pool_participation_fee_pct"`

	EarlyPoolOpenTime  int64 `gorm:"not null" json:"early_pool_open_time"`
	EarlyPoolCloseTime int64 `gorm:"not null" json:"early_pool_close_time"`
	OpenPoolOpenTime   int64 `gorm:"not null" json:"open_pool_open_time"`
	OpenPoolCloseTime  int64 `gorm:"not null" json:"open_pool_close_time"`

	// TgeDate may move (bounded); InitialTgeDate anchors the adjustment window.
	TgeDate           int64  `gorm:"not null" json:"tge_date"`
	InitialTgeDate    int64  `gorm:"not null" json:"initial_tge_date"`
	TgePercentage     uint64 `gorm:"not null" json:"tge_percentage"`
	VestingCliff      int64  `gorm:"not null" json:"vesting_cliff"`
	VestingFrequency  int64  `gorm:"not null" json:"vesting_frequency"`
	NumberOfVesting   int64  `gorm:"not null" json:"number_of_vesting"`
	TgeUpdateAttempts uint8  `gorm:"default:0" json:"tge_update_attempts"`

	// Accounting
	PurchasedAmount        uint64 `gorm:"default:0" json:"purchased_amount"`
	PurchasedInEarlyAccess uint64 `gorm:"default:0" json:"purchased_in_early_access"`
	PurchasedInOpenPool    uint64 `gorm:"default:0" json:"purchased_in_open_pool"`
	TotalFundedAmount      uint64 `gorm:"default:0" json:"total_funded_amount"`
	FundWithdrawnAmount    uint64 `gorm:"default:0" json:"fund_withdrawn_amount"`

	Funded    bool `gorm:"default:false" json:"funded"`
	Claimable bool `gorm:"default:false" json:"claimable"`
	Cancelled bool `gorm:"default:false" json:"cancelled"`

	// Optional staking gate: when set, buying in the early pool requires a
	// minimum stake in this pool.
	StakePoolID uint `gorm:"default:0" json:"stake_pool_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LaunchPool) TableName() string {
	return "launch_pool"
}
