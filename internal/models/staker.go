package models

import (
	"time"
)

// Staker accumulates one user's position in one stake pool. LastUpdate is the
// reward accrual checkpoint; PendingReward holds reward settled at stake or
// unstake time but not yet paid out.
type Staker struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	StakePoolID uint   `gorm:"not null;uniqueIndex:idx_staker_pool_address" json:"stake_pool_id"`
	Address     string `gorm:"size:100;not null;uniqueIndex:idx_staker_pool_address" json:"address"`

	TotalStaked   uint64 `gorm:"default:0" json:"total_staked"`
	Withdrawn     uint64 `gorm:"default:0" json:"withdrawn"`
	PendingReward uint64 `gorm:"default:0" json:"pending_reward"`
	LastUpdate    int64  `gorm:"default:0" json:"last_update"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Staker) TableName() string {
	return "stake_staker"
}
