package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinhub/kinhub/internal/config"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/utils"
	"github.com/kinhub/kinhub/internal/website"
)

// legacySite is the shape of website documents from before the Postgres
// store existed.
type legacySite struct {
	FamilyID string `bson:"family_id"`
	Title    string `bson:"title"`
	Theme    string `bson:"theme"`
	HTML     string `bson:"html"`
	CSS      string `bson:"css"`
	Status   string `bson:"status"`
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env overrides)")
	dryRun := flag.Bool("dry-run", false, "report what would be migrated without writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := utils.NewLogger(true)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Postgres.DSN == "" {
		logger.Fatal("postgres.dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mongoClient, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatalw("mongo connect failed", "error", err)
	}
	defer mongoClient.Disconnect(ctx)

	store, err := website.Open(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalw("postgres connect failed", "error", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		logger.Fatalw("postgres migrate failed", "error", err)
	}

	col := mongoClient.Database(cfg.Mongo.Database).Collection("websites")
	cur, err := col.Find(ctx, bson.M{})
	if err != nil {
		logger.Fatalw("mongo read failed", "error", err)
	}
	defer cur.Close(ctx)

	moved, skipped := 0, 0
	for cur.Next(ctx) {
		var legacy legacySite
		if err := cur.Decode(&legacy); err != nil {
			logger.Warnw("undecodable website document, skipping", "error", err)
			skipped++
			continue
		}
		if legacy.FamilyID == "" || legacy.HTML == "" {
			skipped++
			continue
		}
		site := &website.Site{
			FamilyID: legacy.FamilyID,
			Title:    legacy.Title,
			Theme:    legacy.Theme,
			HTML:     legacy.HTML,
			CSS:      legacy.CSS,
			Status:   legacy.Status,
		}
		if site.Status == "" {
			site.Status = "draft"
		}
		if *dryRun {
			logger.Infow("would migrate", "family", legacy.FamilyID)
			moved++
			continue
		}
		if err := store.Upsert(ctx, site); err != nil {
			logger.Errorw("upsert failed", "family", legacy.FamilyID, "error", err)
			skipped++
			continue
		}
		moved++
	}
	if err := cur.Err(); err != nil {
		logger.Fatalw("mongo cursor failed", "error", err)
	}
	logger.Infow("migration finished", "moved", moved, "skipped", skipped, "dryRun", *dryRun)
}
