package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"playvault/api"
	"playvault/config"
	"playvault/database"
	"playvault/events"
	"playvault/models"
	"playvault/oracle"
	"playvault/repository"
	"playvault/service"
	"playvault/worker"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting playvault...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Connect to the oracle transport
	log.Println("Connecting to NATS...")
	natsClient := oracle.NewClient(cfg.NatsURL)
	if err := natsClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	natsOracle := oracle.NewNatsOracle(natsClient)

	// Initialize the randomness router
	router := service.NewRandomnessRouter(uowFactory, natsOracle, service.RouterConfig{
		OracleID:    cfg.OracleID,
		DispatchKey: cfg.DispatchKey,
		Request: models.OracleRequest{
			KeyID:          cfg.OracleKeyID,
			SubscriptionID: cfg.OracleSubscriptionID,
			Confirmations:  cfg.OracleConfirmations,
			GasBudget:      cfg.OracleGasBudget,
			WordCount:      1,
			PaymentMode:    cfg.OraclePaymentMode,
		},
	})

	// Initialize services
	log.Println("Initializing services...")
	vaultService := service.NewVaultService(uowFactory, cfg.AdminKey)
	bettingService := service.NewBettingService(uowFactory, router, service.BettingConfig{
		MinStake:      cfg.MinStake,
		MaxStake:      cfg.MaxStake,
		ProviderKey:   cfg.DispatchKey,
		VaultCallerID: "betting-game",
	})
	raffleService := service.NewRaffleService(uowFactory, router, service.RaffleConfig{
		EntranceFee:   cfg.EntranceFee,
		Interval:      cfg.RoundInterval,
		ProviderKey:   cfg.DispatchKey,
		VaultCallerID: "raffle-game",
	})

	router.RegisterConsumer(bettingService)
	router.RegisterConsumer(raffleService)
	log.Println("Services initialized successfully")

	// Start the fulfillment listener
	listener := oracle.NewFulfillmentListener(natsClient, router)
	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start fulfillment listener: %w", err)
	}

	// Start the raffle keeper
	keeper := worker.NewKeeper(raffleService, cfg.KeeperPollInterval, cfg.RoundInterval)
	stopKeeper := keeper.Start(ctx)

	// Start the HTTP API
	betHandler := api.NewBetHandler(bettingService)
	raffleHandler := api.NewRaffleHandler(raffleService)
	vaultHandler := api.NewVaultHandler(vaultService)
	engine := api.SetupRouter(betHandler, raffleHandler, vaultHandler, api.GameParams{
		MinStake:      cfg.MinStake,
		MaxStake:      cfg.MaxStake,
		EntranceFee:   cfg.EntranceFee,
		RoundInterval: cfg.RoundInterval,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Wait for context cancellation
	log.Printf("Playvault is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopKeeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
