package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	DB     *mongo.Database
	Client *mongo.Client
)

// InitDB initializes the MongoDB connection with Atlas-friendly defaults.
func InitDB() {
	log.Println("Connecting to MongoDB...")

	mongoURI := getEnv("DATABASE_URL", "mongodb://localhost:27017")
	dbName := getEnv("DB_NAME", "swipevault")

	clientOptions := createAtlasClientOptions(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := testConnection(ctx, client, dbName); err != nil {
		log.Fatalf("failed to verify MongoDB connection: %v", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Printf("MongoDB connected: database=%s", dbName)
}

func createAtlasClientOptions(mongoURI string) *options.ClientOptions {
	clientOptions := options.Client().ApplyURI(mongoURI)

	maxPoolSize := getEnvUint64("MONGO_MAX_POOL_SIZE", 50)
	minPoolSize := getEnvUint64("MONGO_MIN_POOL_SIZE", 5)
	maxConnIdleTime := getEnvDuration("MONGO_MAX_CONN_IDLE_TIME", 30*time.Minute)

	clientOptions.SetMaxPoolSize(maxPoolSize)
	clientOptions.SetMinPoolSize(minPoolSize)
	clientOptions.SetMaxConnIdleTime(maxConnIdleTime)

	connectTimeout := getEnvDuration("MONGO_CONNECT_TIMEOUT", 20*time.Second)
	serverSelectionTimeout := getEnvDuration("MONGO_SERVER_TIMEOUT", 20*time.Second)
	heartbeatInterval := getEnvDuration("MONGO_HEARTBEAT_INTERVAL", 10*time.Second)

	clientOptions.SetConnectTimeout(connectTimeout)
	clientOptions.SetServerSelectionTimeout(serverSelectionTimeout)
	clientOptions.SetHeartbeatInterval(heartbeatInterval)

	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	if readPreference, err := readpref.New(readpref.PrimaryMode); err == nil {
		clientOptions.SetReadPreference(readPreference)
	}

	clientOptions.SetCompressors([]string{"snappy", "zlib", "zstd"})
	clientOptions.SetAppName(getEnv("MONGO_APP_NAME", "swipevault"))

	return clientOptions
}

func testConnection(ctx context.Context, client *mongo.Client, dbName string) error {
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("admin ping failed: %w", err)
	}

	targetDB := client.Database(dbName)
	if _, err := targetDB.ListCollectionNames(ctx, bson.D{}); err != nil {
		return fmt.Errorf("cannot access target database '%s': %w", dbName, err)
	}
	return nil
}

// Disconnect closes the MongoDB connection.
func Disconnect() {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Client.Disconnect(ctx)
	}
}
