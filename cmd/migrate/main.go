package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS events CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		// Create events table. thread_id is NULL for root events of a
		// conversation; follow-ups point at their root event id.
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			thread_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Indexes matched to the paginated range scan and the per-subject lookups
		`CREATE INDEX IF NOT EXISTS idx_events_created_at_id ON events(created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_subject_id ON events(subject_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ip_address ON events(ip_address)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  Created: %s\n", getTableName(query))
	}

	return nil
}

// seedData inserts a couple of weeks of synthetic traffic: a mix of guest
// and authenticated subjects, bursty sessions, and a handful of IPs so the
// analytics endpoints return something worth looking at in development.
func seedData(ctx context.Context, conn *pgx.Conn) error {
	rng := rand.New(rand.NewSource(42))

	subjects := []string{
		"anon-7f3a", "anon-22b1", "anon-c904", "anon-d1e8",
		"user-alice", "user-bob", "user-carol",
	}
	ips := []string{
		"203.0.113.10", "203.0.113.10", "198.51.100.7",
		"192.0.2.44", "2001:db8::1a2b",
	}

	now := time.Now().UTC().Truncate(time.Hour)
	inserted := 0

	for day := 0; day < 14; day++ {
		sessionsToday := 2 + rng.Intn(4)
		for s := 0; s < sessionsToday; s++ {
			subject := subjects[rng.Intn(len(subjects))]
			ip := ips[rng.Intn(len(ips))]
			start := now.AddDate(0, 0, -day).Add(-time.Duration(rng.Intn(12)) * time.Hour)

			rootID := fmt.Sprintf("evt-%d-%d-root", day, s)
			if err := insertEvent(ctx, conn, rootID, subject, ip, nil, start); err != nil {
				return err
			}
			inserted++

			followups := rng.Intn(5)
			at := start
			for f := 0; f < followups; f++ {
				at = at.Add(time.Duration(30+rng.Intn(600)) * time.Second)
				id := fmt.Sprintf("evt-%d-%d-%d", day, s, f)
				if err := insertEvent(ctx, conn, id, subject, ip, &rootID, at); err != nil {
					return err
				}
				inserted++
			}
		}
	}

	fmt.Printf("  Seeded %d events\n", inserted)
	return nil
}

func insertEvent(ctx context.Context, conn *pgx.Conn, id, subject, ip string, threadID *string, at time.Time) error {
	query := `
		INSERT INTO events (id, subject_id, ip_address, thread_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := conn.Exec(ctx, query, id, subject, ip, threadID, at); err != nil {
		return fmt.Errorf("failed to insert event %s: %w", id, err)
	}

	return nil
}

func getTableName(query string) string {
	if len(query) > 50 {
		return query[:50] + "..."
	}
	return query
}
