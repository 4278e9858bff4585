package models

import (
	"time"
)

// StakePool represents one staking farm: users lock the stake token and earn
// the reward token proportionally to stake and elapsed time.
type StakePool struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Owner string `gorm:"size:100;not null;index" json:"owner"`

	RewardMint     string `gorm:"size:100;not null" json:"reward_mint"`
	StakeMint      string `gorm:"size:100;not null" json:"stake_mint"`
	RewardPerBlock uint64 `gorm:"not null" json:"reward_per_block"`
	RewardDecimals uint8  `gorm:"not null" json:"reward_decimals"`
	StakeDecimals  uint8  `gorm:"not null" json:"stake_decimals"`

	TotalStaked       uint64 `gorm:"default:0" json:"total_staked"`
	StakerCount       uint64 `gorm:"default:0" json:"staker_count"`
	TotalRewardFunded uint64 `gorm:"default:0" json:"total_reward_funded"`
	RewardFunded      bool   `gorm:"default:false" json:"reward_funded"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (StakePool) TableName() string {
	return "stake_pool"
}
