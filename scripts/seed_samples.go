//go:build ignore

// Seeds the all_type_fields table with a handful of sample records so the
// admin list and detail pages have something to show.
//
//	go run scripts/seed_samples.go -n 25
package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignite/coreapp/internal/app"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/repository/postgres"
	"github.com/ignite/coreapp/internal/service/sample"
)

var statuses = []domain.Status{domain.StatusActive, domain.StatusInactive, domain.StatusPending}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	n := flag.Int("n", 10, "number of records to create")
	prefix := flag.String("prefix", "Seed", "title prefix")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()

	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	svc := sample.NewService(postgres.NewSampleRepo(db))
	base := time.Now().UTC()

	fmt.Printf("Seeding %d sample records...\n", *n)
	created := 0
	for i := 0; i < *n; i++ {
		rec := seedRecord(*prefix, i, base)
		if err := svc.Create(ctx, rec); err != nil {
			if postgres.IsUniqueViolation(err) {
				fmt.Printf("   - skipped %q: %s already taken\n", rec.Title, postgres.ConstraintField(err))
				continue
			}
			log.Fatalf("Failed to create %q: %v", rec.Title, err)
		}
		created++
		fmt.Printf("   ✓ %s (ID: %s)\n", rec, rec.ID)
	}
	fmt.Printf("\nDone: %d created, %d skipped\n", created, *n-created)
	if created == 0 && *n > 0 {
		os.Exit(1)
	}
}

func seedRecord(prefix string, i int, base time.Time) *domain.SampleRecord {
	title := fmt.Sprintf("%s record %03d", prefix, i)
	sum := md5.Sum([]byte(title))
	desc := fmt.Sprintf("Seeded record number %d", i)
	optional := i%2 == 0
	day := base.AddDate(0, 0, -i)

	return &domain.SampleRecord{
		Title:        title,
		Description:  &desc,
		Email:        fmt.Sprintf("seed%03d@example.com", i),
		URL:          fmt.Sprintf("https://example.com/seed/%d", i),
		Code:         string(rune('A'+i%26)) + string(rune('A'+(i/26)%26)),
		IntegerNum:   int32(i),
		BigNumber:    int64(i) << 32,
		DecimalNum:   decimal.New(int64(i*125), -2),
		FloatNum:     float64(i % 101),
		PositiveNum:  int64(i),
		SmallNum:     int16(-i),
		OnlyDate:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		OnlyTime:     time.Date(0, 1, 1, i%24, (i*7)%60, 0, 0, time.UTC),
		Duration:     time.Duration(i+1) * 15 * time.Minute,
		IsActive:     i%5 != 0,
		IsOptional:   &optional,
		IPAddress:    fmt.Sprintf("10.0.%d.%d", i/250, i%250+1),
		JSONData:     map[string]any{"seed": true, "index": i},
		ArrayField:   []any{"seed", i},
		MACAddress:   fmt.Sprintf("00:1A:2B:3C:%02X:%02X", i/256, i%256),
		Status:       statuses[i%len(statuses)],
		SearchVector: title,
		HashField:    hex.EncodeToString(sum[:]),
	}
}
