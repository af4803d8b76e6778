// Package config loads environment configuration and owns the MongoDB
// client lifecycle. The Config value is passed explicitly into every
// handler factory; nothing in the application holds a package-level
// database handle.
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ledger "github.com/sow2grow/farm-mall-api/ledger"
	store "github.com/sow2grow/farm-mall-api/store"
)

type Config struct {
	MongoClient *mongo.Client
	DBName      string
	JWTSecret   string
	Port        string

	Store  *store.Mongo
	Ledger *ledger.Ledger
}

// Load reads .env (if present) and the environment, connects to Mongo
// and ensures the indexes the ledger depends on.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	mongoURL := os.Getenv("MONGO_URL")
	if mongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is required")
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "sow2grow"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	st := store.NewMongo(client, dbName)
	if err := st.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &Config{
		MongoClient: client,
		DBName:      dbName,
		JWTSecret:   secret,
		Port:        port,
		Store:       st,
		Ledger:      ledger.New(st),
	}, nil
}

// Close disconnects the Mongo client.
func (c *Config) Close(ctx context.Context) error {
	return c.MongoClient.Disconnect(ctx)
}
