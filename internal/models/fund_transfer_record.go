package models

import (
	"time"
)

// Transfer record purposes.
const (
	TransferPurposePurchase       = "purchase"
	TransferPurposeClaim          = "claim"
	TransferPurposeFundOffer      = "fund_offer"
	TransferPurposeWithdrawOffer  = "withdraw_offer"
	TransferPurposeRefundPurchase = "refund_purchase"
	TransferPurposeStake          = "stake"
	TransferPurposeUnstake        = "unstake"
	TransferPurposeFundReward     = "fund_reward"
	TransferPurposeClaimReward    = "claim_reward"
)

// FundTransferRecord is the audit row written for every vault movement the
// engine authorizes.
type FundTransferRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PoolType    string    `gorm:"size:20;not null" json:"pool_type"` // "launchpad" or "staking"
	PoolID      uint      `gorm:"not null;index" json:"pool_id"`
	Participant string    `gorm:"size:100;not null" json:"participant"`
	Mint        string    `gorm:"size:100;not null" json:"mint"`
	Direction   string    `gorm:"size:20;not null" json:"direction"` // "in" or "out", relative to the vault
	Purpose     string    `gorm:"size:32;not null" json:"purpose"`
	Amount      uint64    `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (FundTransferRecord) TableName() string {
	return "fund_transfer_record"
}
