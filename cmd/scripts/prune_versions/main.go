package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/huangang/bizboard/internal/config"
	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/services"
	"github.com/huangang/bizboard/internal/store"
)

// One-off retention sweep. Runs every prune in-process, so it works with
// Redis down and with the server stopped.
func main() {
	keep := flag.Int("keep", 0, "versions to keep per config (default: versions.retention)")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	retention := cfg.Versions.Retention
	if *keep > 0 {
		retention = *keep
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Println("Connected to database successfully!")

	s := store.NewGormStore(models.GetDB())
	queue := services.NewSyncQueue()
	janitor := services.NewVersionJanitor(s, queue, retention, nil)
	queue.SetProcessor(janitor.Process)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var before int64
	models.GetDB().Model(&models.ConfigVersion{}).Count(&before)

	queued, err := janitor.Sweep(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	if err := queue.Close(); err != nil {
		log.Fatalf("Prune failed: %v", err)
	}

	var after int64
	models.GetDB().Model(&models.ConfigVersion{}).Count(&after)

	fmt.Printf("%-24s %d\n", "Configs over retention:", queued)
	fmt.Printf("%-24s %d\n", "Versions kept per config:", retention)
	fmt.Printf("%-24s %d -> %d\n", "Version rows:", before, after)
}
