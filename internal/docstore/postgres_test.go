package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/emergent-company/emergent.relations/internal/migrate"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database integration test in short mode")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, migrate.RunWithDB(ctx, sqldb))

	collection := fmt.Sprintf("Team_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.NewDelete().Model((*Document)(nil)).Where("collection = ?", collection).Exec(context.Background())
	})

	storeContract(t, NewPostgresStore(db, testLogger()), collection)
}
