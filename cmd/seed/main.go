package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// Seeds load-test users with bearer sessions plus one stocked item, and
// prints the sessions as JSON for the load tooling.
const (
	defaultDSN      = "root:root@tcp(localhost:3306)/digistall?parseTime=true"
	loadTestUsers   = 50
	sessionLifetime = 7 * 24 * time.Hour
)

type seededSession struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func main() {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	ctx := context.Background()
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	expires := time.Now().Add(sessionLifetime)
	sessions := make([]seededSession, 0, loadTestUsers)

	for n := 0; n < loadTestUsers; n++ {
		email := fmt.Sprintf("loaduser%d@test.com", n)
		name := fmt.Sprintf("load-user-%d", n)
		userID := uuid.New().String()

		_, err := db.ExecContext(ctx, `
			INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, NOW())
			ON DUPLICATE KEY UPDATE id = id`, userID, email, name)
		if err != nil {
			log.Fatalf("failed to upsert user %s: %v", email, err)
		}

		// The insert may have hit an existing row; read the canonical id.
		if err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&userID); err != nil {
			log.Fatalf("failed to read user %s: %v", email, err)
		}

		token := uuid.New().String()
		if _, err := db.ExecContext(ctx, `
			INSERT INTO sessions (token, user_id, expires) VALUES (?, ?, ?)`,
			token, userID, expires); err != nil {
			log.Fatalf("failed to create session for %s: %v", email, err)
		}

		sessions = append(sessions, seededSession{Email: email, Token: token})
	}

	itemID := uuid.New().String()
	_, err = db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, price, quantity, created_at, updated_at)
		VALUES (?, 'Load Test Product', 'Load test', 1.00, 10, NOW(), NOW())`, itemID)
	if err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}

	out := map[string]any{"item_id": itemID, "sessions": sessions}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}

	log.Printf("created %d users with sessions and 1 load test item", len(sessions))
}
