package main

import (
	"context"
	"time"

	mongomigration "mentorhub/internal/migrations/mongo"
	"mentorhub/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)

	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongomigration.RunMigration(ctx, db); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	cfg.Log.Info("Migration completed successfully")
}
