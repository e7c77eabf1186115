//go:build integration

package integration

import (
	"bytes"
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/sponsorwatch/internal/testutil"
	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
	"github.com/Sternrassler/sponsorwatch/pkg/poller"
	"github.com/Sternrassler/sponsorwatch/pkg/sink"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newCatalogClient(t *testing.T, mock *testutil.MockCatalog) *catalog.Client {
	t.Helper()

	cfg := catalog.DefaultConfig("integration-cookie")
	cfg.BaseURL = mock.URL()
	client, err := catalog.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create catalog client: %v", err)
	}
	return client
}

// TestPollToRedisStream runs the full flow: sorts → pages → dedup →
// terminal and Redis stream.
func TestPollToRedisStream(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetSorts("page-1", testutil.MockSort{Token: "T1", ContextCountryRegionID: 7, Name: "Sponsored"})
	mock.SetPages(
		[]testutil.MockGame{{Name: "A", PlaceID: 1}, {Name: "B", PlaceID: 2}},
		[]testutil.MockGame{{Name: "B", PlaceID: 2}, {Name: "C", PlaceID: 3}},
	)

	stream, err := sink.NewRedisStream(redisClient, "it:discoveries", 0)
	if err != nil {
		t.Fatalf("Failed to create stream sink: %v", err)
	}

	var stdout bytes.Buffer
	out := sink.Multi{sink.NewTerminal(&stdout, nil), stream}

	limit := 3
	p, err := poller.New(newCatalogClient(t, mock), out, poller.Config{Limit: &limit})
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}

	ctx := context.Background()
	stats, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Pages != 2 || stats.Emitted != 3 {
		t.Errorf("stats = %+v, want 2 pages and 3 emitted", stats)
	}
	if want := "A > 1\nB > 2\nC > 3\n"; stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}

	entries, err := redisClient.XRange(ctx, "it:discoveries", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("stream entries = %d, want 3", len(entries))
	}
	for i, id := range []string{"1", "2", "3"} {
		if entries[i].Values["place_id"] != id {
			t.Errorf("entry %d place_id = %v, want %s", i, entries[i].Values["place_id"], id)
		}
	}
}

// TestRedisStream_MaxLen checks the approximate length cap is passed through.
func TestRedisStream_MaxLen(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	stream, err := sink.NewRedisStream(redisClient, "it:capped", 1000)
	if err != nil {
		t.Fatalf("Failed to create stream sink: %v", err)
	}

	ctx := context.Background()
	for i := uint64(1); i <= 50; i++ {
		if err := stream.Emit(ctx, catalog.Place{Name: "P", PlaceID: i}); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	n, err := redisClient.XLen(ctx, "it:capped").Result()
	if err != nil {
		t.Fatalf("XLen() error = %v", err)
	}
	if n != 50 {
		t.Errorf("stream length = %d, want 50 (below the cap)", n)
	}
}
