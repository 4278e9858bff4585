package main

import (
	"encoding/json"
	"time"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	"launchcontrol/pkg/config"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"
)

const tgeNotificationQueue = "tge_notifications"

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	publisher, err := config.NewPublisher()
	if err != nil {
		logrus.Fatal("Failed to create publisher: ", err)
	}
	defer publisher.Close()

	// Consume settlement events into the audit log
	msgConsumer, err := config.NewConsumer(business.SettlementEventQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	go func() {
		err := msgConsumer.Consume(func(msg []byte) error {
			return recordSettlementEvent(msg)
		})
		if err != nil {
			logrus.Errorf("Settlement event consumer stopped: %v", err)
		}
	}()

	c := cron.New()

	// Announce pools whose TGE date has arrived, once each
	if _, err := c.AddFunc("@every 1m", func() {
		announceTgeReached(publisher)
	}); err != nil {
		logrus.Fatal("Failed to schedule TGE announcement job: ", err)
	}

	// Periodic pool stat snapshot for dashboards
	if _, err := c.AddFunc("@every 10m", snapshotPoolStats); err != nil {
		logrus.Fatal("Failed to schedule stat snapshot job: ", err)
	}

	logrus.Info("Settlement worker started")
	c.Start()

	select {}
}

// recordSettlementEvent writes one settlement event into the system log table.
func recordSettlementEvent(msg []byte) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg, &payload); err != nil {
		logrus.Errorf("Failed to unmarshal settlement event: %v", err)
		return err
	}

	event, _ := payload["event"].(string)
	var poolID uint
	if v, ok := payload["pool_id"].(float64); ok {
		poolID = uint(v)
	}

	entry := models.SystemLog{
		PoolID:  poolID,
		Level:   "INFO",
		Message: "Settlement event received",
		Module:  event,
		Meta:    models.JSONMap(payload),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		logrus.Errorf("Failed to persist settlement event: %v", err)
		return err
	}
	return nil
}

// announceTgeReached publishes a notification for every funded pool whose TGE
// date has passed but that has not been announced yet. The system log doubles
// as the dedup marker.
func announceTgeReached(publisher *config.Publisher) {
	now := time.Now().Unix()

	var pools []models.LaunchPool
	err := config.DB.Where("tge_date <= ? AND funded = ? AND cancelled = ?", now, true, false).Find(&pools).Error
	if err != nil {
		logrus.Errorf("Failed to query pools for TGE announcement: %v", err)
		return
	}

	for i := range pools {
		pool := &pools[i]

		var count int64
		config.DB.Model(&models.SystemLog{}).
			Where("pool_id = ? AND module = ?", pool.ID, "TgeReached").
			Count(&count)
		if count > 0 {
			continue
		}

		if err := publisher.Publish(tgeNotificationQueue, map[string]interface{}{
			"event":    "tge.reached",
			"pool_id":  pool.ID,
			"tge_date": pool.TgeDate,
		}); err != nil {
			logrus.Errorf("Failed to publish TGE notification for pool %d: %v", pool.ID, err)
			continue
		}

		entry := models.SystemLog{
			PoolID:  pool.ID,
			Level:   "INFO",
			Message: "TGE date reached",
			Module:  "TgeReached",
			Meta:    models.JSONMap{"tge_date": pool.TgeDate},
		}
		if err := config.DB.Create(&entry).Error; err != nil {
			logrus.Errorf("Failed to record TGE announcement for pool %d: %v", pool.ID, err)
		}
	}
}

// snapshotPoolStats logs aggregate launchpad and staking totals.
func snapshotPoolStats() {
	var poolCount, stakePoolCount int64
	if err := config.DB.Model(&models.LaunchPool{}).Count(&poolCount).Error; err != nil {
		logrus.Errorf("Failed to count launch pools: %v", err)
		return
	}
	if err := config.DB.Model(&models.StakePool{}).Count(&stakePoolCount).Error; err != nil {
		logrus.Errorf("Failed to count stake pools: %v", err)
		return
	}

	type totals struct {
		Purchased uint64
		Funded    uint64
	}
	var t totals
	config.DB.Model(&models.LaunchPool{}).
		Select("COALESCE(SUM(purchased_amount),0) as purchased, COALESCE(SUM(total_funded_amount),0) as funded").
		Scan(&t)

	logrus.WithFields(logrus.Fields{
		"launch_pools":    poolCount,
		"stake_pools":     stakePoolCount,
		"total_purchased": t.Purchased,
		"total_funded":    t.Funded,
	}).Info("Pool stat snapshot")
}
