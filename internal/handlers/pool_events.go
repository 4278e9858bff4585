package handlers

import (
	"net/http"
	"time"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	poolSnapshotInterval = 3 * time.Second
	writeTimeout         = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin filtering happens in the CORS middleware; the upgrade itself
	// accepts any origin that made it through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PoolSnapshot is one frame of the pool event stream.
type PoolSnapshot struct {
	Pool      *models.LaunchPool `json:"pool"`
	Timestamp int64              `json:"timestamp"`
}

// StreamPoolEvents upgrades the connection and pushes pool snapshots until
// the pool is fully settled or the client disconnects. A frame is sent
// immediately on connect, then on every interval tick.
func StreamPoolEvents(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var pool models.LaunchPool
	if err := dbconfig.DB.First(&pool, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pool not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"pool_id": id,
			"error":   err.Error(),
		}).Error("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	log.WithFields(log.Fields{
		"pool_id": id,
		"remote":  conn.RemoteAddr().String(),
	}).Info("Pool event stream opened")

	// Drain the read side so close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(poolSnapshotInterval)
	defer ticker.Stop()

	for {
		if err := dbconfig.DB.First(&pool, id).Error; err != nil {
			log.WithFields(log.Fields{
				"pool_id": id,
				"error":   err.Error(),
			}).Error("Failed to reload pool for event stream")
			return
		}

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(PoolSnapshot{Pool: &pool, Timestamp: time.Now().Unix()}); err != nil {
			log.WithFields(log.Fields{
				"pool_id": id,
				"error":   err.Error(),
			}).Debug("Pool event stream closed by write error")
			return
		}

		select {
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}
