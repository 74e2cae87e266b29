package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tamanna-Joshi/habit-tracker/chat"
	"github.com/Tamanna-Joshi/habit-tracker/config"
	"github.com/Tamanna-Joshi/habit-tracker/habits"
	"github.com/Tamanna-Joshi/habit-tracker/queue"
	"github.com/Tamanna-Joshi/habit-tracker/quotes"
	"github.com/Tamanna-Joshi/habit-tracker/server"
	"github.com/Tamanna-Joshi/habit-tracker/storage"
	"github.com/Tamanna-Joshi/habit-tracker/storage/cache"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: MongoDB when configured, otherwise the in-memory store.
	var store storage.StorageInterface
	var err error
	if cfg.MongoURI != "" {
		store, err = storage.NewStorage(cfg.DBName, cfg.MongoURI)
		if err != nil {
			log.Fatalf("error initializing storage: %v", err)
		}
	} else {
		log.Println("MONGODB_URI not set, habits will not survive a restart")
		store = storage.NewMemoryStorage()
	}
	defer store.Disconnect()

	// Cache: quote of the day and event dedupe. Optional.
	var c cache.CacheInterface
	if cfg.RedisURL != "" {
		c, err = cache.NewCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to cache: %v", err)
		}
		defer c.Disconnect()
	}

	// Check-in event queue. Optional.
	var events *queue.Queue
	if cfg.RabbitMQURL != "" {
		events, err = queue.BuildCheckInQueue(cfg.RabbitMQURL, 1, 2, c)
		if err != nil {
			log.Fatalf("error initializing event queue: %v", err)
		}
		if _, err := events.StartConsumers(ctx); err != nil {
			log.Fatalf("error starting queue consumers: %v", err)
		}
	}

	engine := habits.NewEngine(store, events)
	assistant := chat.NewClient(cfg.ChatBackendURL)
	quoteClient := quotes.NewClient(cfg.QuoteProviderURL, c)
	handler := server.NewHandler(engine, assistant, quoteClient)

	go func() {
		if err := server.Start(cfg.ServerAddr, handler); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Printf("received %s, shutting down", sig)
}
