package models

import (
	"time"
)

// Buyer accumulates one purchaser's position in one launch pool. Created
// lazily on first purchase; only purchase/claim/refund operations on the
// same purchaser mutate it.
type Buyer struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	PoolID  uint   `gorm:"not null;uniqueIndex:idx_buyer_pool_address" json:"pool_id"`
	Address string `gorm:"size:100;not null;uniqueIndex:idx_buyer_pool_address" json:"address"`

	// Principal net of participation fee, cumulative across both phases.
	TotalPurchased uint64 `gorm:"default:0" json:"total_purchased"`
	// Net principal spent inside the early window (checked against the cap).
	EarlyPurchased uint64 `gorm:"default:0" json:"early_purchased"`
	// Participation fees paid, tracked but not separately transferred.
	TotalFee uint64 `gorm:"default:0" json:"total_fee"`
	// Offered-token entitlement accumulated from purchases x rate.
	TotalAmount uint64 `gorm:"default:0" json:"total_amount"`
	// Offered tokens already unlocked to the buyer.
	ClaimedAmount uint64 `gorm:"default:0" json:"claimed_amount"`
	// Purchase tokens refunded on the failure path.
	RefundedAmount uint64 `gorm:"default:0" json:"refunded_amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Buyer) TableName() string {
	return "launch_buyer"
}
