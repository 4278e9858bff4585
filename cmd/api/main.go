package main

import (
	"log"
	"os"
	"strconv"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/routes"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/vault"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Run SQL migrations when a migrations directory is shipped
	if _, err := os.Stat("migrations"); err == nil {
		config.ExecuteMigrations()
	}

	// Initialize RabbitMQ (optional, settlement events are dropped without it)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		publisher, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer publisher.Close()
		business.Events = publisher
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, settlement events disabled")
	}

	// Back the settlement engine with the on-chain vault when a program is
	// configured; the in-memory ledger stays in place otherwise (local mode).
	if programID := os.Getenv("LAUNCHPAD_PROGRAM_ID"); programID != "" {
		operatorAddr := os.Getenv("VAULT_OPERATOR_ADDRESS")
		operatorPass := os.Getenv("VAULT_OPERATOR_PASSWORD")
		operator, err := vault.NewOperatorKeystore().Load(operatorAddr, operatorPass)
		if err != nil {
			log.Fatal("Failed to load vault operator key:", err)
		}

		rps := 10
		if v := os.Getenv("SOLANA_RPC_RPS"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				rps = parsed
			}
		}

		sv, err := vault.NewSolanaVault(programID, operator, rps)
		if err != nil {
			log.Fatal("Failed to create solana vault:", err)
		}
		business.Vault = sv
		log.Println("Solana vault initialized for program", programID)
	} else {
		log.Println("LAUNCHPAD_PROGRAM_ID not set, using in-memory ledger")
	}

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
