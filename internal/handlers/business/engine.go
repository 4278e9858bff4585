package business

import (
	"fmt"
	"time"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/vault"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Vault is the asset-transfer collaborator every settlement step drives.
// Replaced with a Solana-backed vault in production wiring; the in-memory
// ledger serves local mode and tests.
var Vault vault.Transferor = vault.NewMemoryLedger()

// Now is the single wall-clock read an operation takes at entry. Every guard
// inside one call uses the same snapshot.
var Now = func() int64 {
	return time.Now().Unix()
}

// EventPublisher receives settlement events when messaging is configured.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// Events is nil unless RabbitMQ is wired at boot.
var Events EventPublisher

const SettlementEventQueue = "settlement_events"

func publishEvent(event string, fields map[string]interface{}) {
	if Events == nil {
		return
	}
	payload := map[string]interface{}{"event": event}
	for k, v := range fields {
		payload[k] = v
	}
	if err := Events.Publish(SettlementEventQueue, payload); err != nil {
		logrus.Warnf("Failed to publish %s event: %v", event, err)
	}
}

// launchPoolKey seeds the launch pool's vault derivations.
func launchPoolKey(id uint) string {
	return fmt.Sprintf("launch-%d", id)
}

// stakePoolKey seeds the stake pool's vault derivations.
func stakePoolKey(id uint) string {
	return fmt.Sprintf("stake-%d", id)
}

func recordTransfer(tx *gorm.DB, poolType string, poolID uint, participant, mint, direction, purpose string, amount uint64) error {
	return tx.Create(&models.FundTransferRecord{
		PoolType:    poolType,
		PoolID:      poolID,
		Participant: participant,
		Mint:        mint,
		Direction:   direction,
		Purpose:     purpose,
		Amount:      amount,
	}).Error
}

func systemLog(tx *gorm.DB, poolID uint, module, message string, meta models.JSONMap) {
	entry := models.SystemLog{
		PoolID:  poolID,
		Level:   "INFO",
		Message: message,
		Module:  module,
		Meta:    meta,
	}
	if err := tx.Create(&entry).Error; err != nil {
		logrus.Warnf("Failed to write system log (%s): %v", module, err)
	}
}
