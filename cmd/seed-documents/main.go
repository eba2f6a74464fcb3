// Command seed-documents loads records from a JSON file into the document store.
//
// The file maps collection names to arrays of records:
//
//	{"Team": [{"id": "t1", "name": "acme"}], "User": [{"id": "u1", "team_id": "t1"}]}
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/emergent-company/emergent.relations/internal/config"
	"github.com/emergent-company/emergent.relations/internal/docstore"
	"github.com/emergent-company/emergent.relations/internal/migrate"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	file := flag.String("file", "", "JSON file of records keyed by collection (required)")
	backend := flag.String("backend", "", "Document store backend (postgres or s3, default from DOCSTORE_BACKEND)")
	runMigrations := flag.Bool("migrate", false, "Apply pending migrations first (postgres only)")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: seed-documents -file <records.json> [-backend postgres|s3] [-migrate]")
		os.Exit(1)
	}
	if *backend == "" {
		*backend = os.Getenv("DOCSTORE_BACKEND")
	}
	if *backend == "" {
		*backend = config.BackendPostgres
	}
	if *backend == config.BackendMemory {
		fmt.Println("Error: the memory backend does not outlive this process")
		os.Exit(1)
	}

	seed, err := readSeed(*file)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var (
		store    docstore.Store
		log      *slog.Logger
		migrator *migrate.Migrator
	)
	opts := []fx.Option{
		fx.NopLogger,
		logger.Module,
		config.Module,
		docstore.BackendModule(*backend),
		fx.Populate(&store, &log),
	}
	if *runMigrations && *backend == config.BackendPostgres {
		opts = append(opts, migrate.Module, fx.Populate(&migrator))
	}
	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Printf("Error: start: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	if migrator != nil {
		if err := migrator.Up(ctx); err != nil {
			log.Error("migrations failed", logger.Error(err))
			os.Exit(1)
		}
	}

	written, err := seedStore(ctx, store, seed, log)
	if err != nil {
		log.Error("seeding failed", slog.Int("written", written), logger.Error(err))
		os.Exit(1)
	}
	log.Info("seeding complete", slog.String("backend", *backend), slog.Int("written", written))
}

func readSeed(path string) (map[string][]docstore.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var seed map[string][]docstore.Record
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

// seedStore writes collections in name order and stops at the first failure.
func seedStore(ctx context.Context, store docstore.Store, seed map[string][]docstore.Record, log *slog.Logger) (int, error) {
	collections := make([]string, 0, len(seed))
	for c := range seed {
		collections = append(collections, c)
	}
	slices.Sort(collections)

	written := 0
	for _, collection := range collections {
		for i, rec := range seed[collection] {
			if _, err := store.Put(ctx, collection, rec); err != nil {
				return written, fmt.Errorf("%s[%d]: %w", collection, i, err)
			}
			written++
		}
		log.Info("collection seeded",
			slog.String("collection", collection),
			slog.Int("records", len(seed[collection])),
		)
	}
	return written, nil
}
